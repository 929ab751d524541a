package main

import (
	"context"
	"fmt"
	"image/color"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/device"
	"github.com/itohio/lpsense/pkg/report"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/itohio/lpsense/pkg/scope"
)

var (
	ledOff = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	ledOn  = color.RGBA{R: 80, G: 220, B: 80, A: 255}
)

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	device      device.Device
	sinks       *sinks
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	status      *widget.Label
	led         *canvas.Circle
	useMock     bool

	// Closed when the forwarding goroutine of the current connection exits.
	forwardDone chan struct{}
}

// createToolbar creates the toolbar with Connect and Settings on the left and
// the indicator mirror with the latest report on the right.
func createToolbar(state *appState) fyne.CanvasObject {
	state.connectBtn = widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	state.status = widget.NewLabel("Disconnected")

	state.led = canvas.NewCircle(ledOff)
	led := container.NewGridWrap(fyne.NewSize(20, 20), state.led)

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(state.connectBtn, settingsBtn),
		container.NewHBox(state.status, container.NewCenter(led)),
		nil,
	)
}

// handleConnect toggles the connection.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		disconnect(state)
		return
	}

	dev := newDevice(state.cfg, state.useMock)
	if err := dev.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to start simulator: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = dev
	if state.useMock {
		log.Println("Connected to simulator")
	} else {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
	}

	state.scopeWidget.Clear()
	state.connectBtn.SetIcon(theme.LogoutIcon())
	state.status.SetText("Waiting for report")

	done := make(chan struct{})
	state.forwardDone = done
	go func() {
		defer close(done)
		forward(context.Background(), dev.Samples(), state.sinks, func(s sample.Sample) {
			fyne.Do(func() {
				showSample(state, s)
			})
		})
	}()
}

// disconnect closes the device and waits for the forwarder to drain.
func disconnect(state *appState) {
	if state.device == nil {
		return
	}

	state.device.Close()
	if state.forwardDone != nil {
		<-state.forwardDone
		state.forwardDone = nil
	}
	state.device = nil

	if state.connectBtn != nil {
		state.connectBtn.SetIcon(theme.LoginIcon())
		state.status.SetText("Disconnected")
		setLED(state, false)
	}
	if state.useMock {
		log.Println("Disconnected from simulator")
	} else {
		log.Println("Disconnected from serial port")
	}
}

func showSample(state *appState, s sample.Sample) {
	state.scopeWidget.Add(s)
	state.status.SetText(report.Format(s))
	setLED(state, s.Indicator)
}

func setLED(state *appState, on bool) {
	if on {
		state.led.FillColor = ledOn
	} else {
		state.led.FillColor = ledOff
	}
	state.led.Refresh()
}
