//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"context"
	"machine"
	"time"

	"github.com/itohio/lpsense/pkg/acq"
	"github.com/itohio/lpsense/pkg/filter"
	"github.com/itohio/lpsense/pkg/report"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/itohio/lpsense/pkg/sampler"
	"github.com/itohio/lpsense/pkg/sar"
)

var serial = machine.Serial

// led drives the indicator pin.
type led struct {
	pin machine.Pin
}

func (l led) Set(on bool) {
	l.pin.Set(on != LED_ACTIVE_LOW)
}

func main() {
	// Bring-up failures are unrecoverable.
	if err := serial.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE}); err != nil {
		panic(err)
	}

	PIN_LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	indicator := led{pin: PIN_LED}
	indicator.Set(false)

	machine.InitADC()
	adcs := [sar.NumChannels]machine.ADC{
		sar.Reference:  {Pin: PIN_REFERENCE},
		sar.Thermistor: {Pin: PIN_THERMISTOR},
		sar.Light:      {Pin: PIN_LIGHT},
	}
	for i := range adcs {
		adcs[i].Configure(machine.ADCConfig{
			Reference:  ADC_REFERENCE_MV,
			Resolution: ADC_RESOLUTION,
		})
	}

	acqCfg := sar.DefaultConfig()
	fifo := sar.NewFIFO(sar.DefaultFIFODepth, acqCfg.Watermark)

	bank, err := filter.NewBank(filter.DefaultConfig())
	if err != nil {
		panic(err)
	}

	light := sample.DefaultLightConfig()
	bridge := acq.New(bank, sar.NewSignal(), light)
	fifo.SetLevelHandler(bridge.OnWatermark)

	if err := report.Banner(serial); err != nil {
		panic(err)
	}

	loop := sampler.New(
		sampler.DefaultConfig(),
		sample.DefaultThermistorConfig(),
		light,
		bridge,
		fifo,
		indicator,
		report.NewWriter(serial),
	)

	go scan(&adcs, fifo, acqCfg.TriggerInterval)

	// Run returns only on a data-integrity fault.
	if err := loop.Run(context.Background()); err != nil {
		panic(err)
	}
}

// scan converts every channel once per trigger period and queues the results.
func scan(adcs *[sar.NumChannels]machine.ADC, fifo *sar.FIFO, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		for c := range adcs {
			// A full FIFO drops the scan and counts the overflow.
			_ = fifo.Push(sar.RawSample{
				Channel: sar.Channel(c),
				Value:   adcs[c].Get() >> ADC_SHIFT,
			})
		}
	}
}
