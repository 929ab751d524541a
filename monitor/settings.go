package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/lpsense/pkg/device"
	"github.com/itohio/lpsense/pkg/filter"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createLightTab(state),
		createFilterTab(state),
		createSimulatorTab(state),
		createTelemetryTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

func saveConfig(state *appState) {
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
	}
}

// reconnect restarts a live connection so new settings take effect.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	disconnect(state)
	handleConnect(state)
}

func createSerialTab(state *appState) *container.TabItem {
	ports, err := device.Ports()
	portOptions := []string{}
	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			changed := false
			if portSelect.Selected != "" && portSelect.Selected != state.cfg.Serial.Port {
				state.cfg.Serial.Port = portSelect.Selected
				changed = true
			}
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 && baud != state.cfg.Serial.BaudRate {
				state.cfg.Serial.BaudRate = baud
				changed = true
			}
			saveConfig(state)
			if changed && !state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

func createLightTab(state *appState) *container.TabItem {
	lowEntry := widget.NewEntry()
	lowEntry.SetText(strconv.Itoa(int(state.cfg.Light.LowThreshold)))

	highEntry := widget.NewEntry()
	highEntry.SetText(strconv.Itoa(int(state.cfg.Light.HighThreshold)))

	offsetEntry := widget.NewEntry()
	offsetEntry.SetText(strconv.Itoa(int(state.cfg.Light.Offset)))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Indicator on below (%)", Widget: lowEntry},
			{Text: "Indicator off above (%)", Widget: highEntry},
			{Text: "Dark offset (%)", Widget: offsetEntry},
		},
		OnSubmit: func() {
			low, errLow := strconv.ParseUint(lowEntry.Text, 10, 8)
			high, errHigh := strconv.ParseUint(highEntry.Text, 10, 8)
			if errLow != nil || errHigh != nil || low > high || high > 100 {
				dialog.ShowError(fmt.Errorf("thresholds must satisfy 0 <= low <= high <= 100"), state.window)
				return
			}
			state.cfg.Light.LowThreshold = uint8(low)
			state.cfg.Light.HighThreshold = uint8(high)
			if off, err := strconv.ParseInt(offsetEntry.Text, 10, 16); err == nil {
				state.cfg.Light.Offset = int16(off)
			}
			saveConfig(state)
			reconnect(state)
		},
	}

	return container.NewTabItem("Light", form)
}

func createFilterTab(state *appState) *container.TabItem {
	entries := make([]*widget.Entry, 0, 3)
	gains := []*int32{&state.cfg.Filter.Reference, &state.cfg.Filter.Thermistor, &state.cfg.Filter.Light}
	for _, g := range gains {
		e := widget.NewEntry()
		e.SetText(strconv.Itoa(int(*g)))
		entries = append(entries, e)
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: fmt.Sprintf("Reference gain (1..%d)", filter.MaxGain), Widget: entries[0]},
			{Text: fmt.Sprintf("Thermistor gain (1..%d)", filter.MaxGain), Widget: entries[1]},
			{Text: fmt.Sprintf("Light gain (1..%d)", filter.MaxGain), Widget: entries[2]},
		},
		OnSubmit: func() {
			next := state.cfg.Filter
			targets := []*int32{&next.Reference, &next.Thermistor, &next.Light}
			for i, e := range entries {
				v, err := strconv.ParseInt(e.Text, 10, 32)
				if err != nil {
					dialog.ShowError(fmt.Errorf("invalid gain %q: %w", e.Text, err), state.window)
					return
				}
				*targets[i] = int32(v)
			}
			if err := next.Validate(); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			state.cfg.Filter = next
			saveConfig(state)
			if state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Filter", form)
}

// createSimulatorTab drives the simulated scene. Changes apply live.
func createSimulatorTab(state *appState) *container.TabItem {
	tempLabel := widget.NewLabel(fmt.Sprintf("%.1f C", state.cfg.Mock.Temperature))
	tempSlider := widget.NewSlider(-20, 80)
	tempSlider.Step = 0.5
	tempSlider.SetValue(state.cfg.Mock.Temperature)
	tempSlider.OnChanged = func(v float64) {
		state.cfg.Mock.Temperature = v
		tempLabel.SetText(fmt.Sprintf("%.1f C", v))
		if sim, ok := state.device.(*device.Simulator); ok {
			_ = sim.SetTemperature(v)
		}
	}

	lightLabel := widget.NewLabel(fmt.Sprintf("%d %%", state.cfg.Mock.Light))
	lightSlider := widget.NewSlider(-1, 100)
	lightSlider.SetValue(float64(state.cfg.Mock.Light))
	lightSlider.OnChanged = func(v float64) {
		state.cfg.Mock.Light = int(v)
		if v < 0 {
			lightLabel.SetText("dark")
		} else {
			lightLabel.SetText(fmt.Sprintf("%d %%", int(v)))
		}
		if sim, ok := state.device.(*device.Simulator); ok {
			_ = sim.SetLight(int(v))
		}
	}

	saveBtn := widget.NewButton("Save", func() {
		saveConfig(state)
	})

	content := container.NewVBox(
		widget.NewLabel("Temperature"),
		container.NewBorder(nil, nil, nil, tempLabel, tempSlider),
		widget.NewLabel("Ambient light"),
		container.NewBorder(nil, nil, nil, lightLabel, lightSlider),
		saveBtn,
	)
	if !state.useMock {
		content.Add(widget.NewLabel("Start with -mock to drive the simulator."))
	}

	return container.NewTabItem("Simulator", content)
}

// createTelemetryTab edits sink settings. They apply on the next start.
func createTelemetryTab(state *appState) *container.TabItem {
	brokerEntry := widget.NewEntry()
	brokerEntry.SetText(state.cfg.MQTT.Broker)
	brokerEntry.SetPlaceHolder("tcp://localhost:1883")

	topicEntry := widget.NewEntry()
	topicEntry.SetText(state.cfg.MQTT.Topic)

	influxEntry := widget.NewEntry()
	influxEntry.SetText(state.cfg.Influx.URL)
	influxEntry.SetPlaceHolder("http://localhost:8086")

	bucketEntry := widget.NewEntry()
	bucketEntry.SetText(state.cfg.Influx.Bucket)

	metricsEntry := widget.NewEntry()
	metricsEntry.SetText(state.cfg.Metrics.Listen)
	metricsEntry.SetPlaceHolder(":9100")

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "MQTT Broker", Widget: brokerEntry},
			{Text: "MQTT Topic", Widget: topicEntry},
			{Text: "InfluxDB URL", Widget: influxEntry},
			{Text: "InfluxDB Bucket", Widget: bucketEntry},
			{Text: "Metrics Listen", Widget: metricsEntry},
		},
		OnSubmit: func() {
			state.cfg.MQTT.Broker = brokerEntry.Text
			state.cfg.MQTT.Topic = topicEntry.Text
			state.cfg.Influx.URL = influxEntry.Text
			state.cfg.Influx.Bucket = bucketEntry.Text
			state.cfg.Metrics.Listen = metricsEntry.Text
			saveConfig(state)
			dialog.ShowInformation("Telemetry", "Restart the monitor to apply telemetry settings.", state.window)
		},
	}

	return container.NewTabItem("Telemetry", form)
}
