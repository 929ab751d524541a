package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/scope"
)

func main() {
	var (
		portFlag     = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag   = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag     = flag.Bool("mock", false, "Run the sampling core against the simulated converter instead of a board")
		headlessFlag = flag.Bool("headless", false, "Log reports and publish telemetry without opening a window")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, err := newSinks(ctx, cfg, sourceName(*mockFlag, cfg))
	if err != nil {
		log.Fatalf("Failed to set up telemetry: %v", err)
	}
	defer sinks.Close()

	if *headlessFlag {
		if err := runHeadless(ctx, newDevice(cfg, *mockFlag), sinks); err != nil {
			log.Fatalf("Monitor stopped: %v", err)
		}
		return
	}

	application := app.NewWithID("com.itohio.lpsense")

	window := application.NewWindow("Ambient Sense Monitor")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		useMock:    *mockFlag,
		sinks:      sinks,
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(cfg)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	))
	window.SetOnClosed(func() {
		disconnect(state)
	})
	window.ShowAndRun()
}
