package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/device"
	"github.com/itohio/lpsense/pkg/publish"
	"github.com/itohio/lpsense/pkg/report"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/sony/gobreaker"
)

// publishTimeout bounds a single delivery to all sinks.
const publishTimeout = 2 * time.Second

// sinks bundles the telemetry publishers with the metrics endpoint.
type sinks struct {
	publish.Publisher
	cancel context.CancelFunc
	done   chan struct{}
}

// newSinks connects every configured sink. Unconfigured sinks are skipped.
func newSinks(ctx context.Context, cfg *config.Config, source string) (*sinks, error) {
	var ps []publish.Publisher

	if cfg.MQTT.Broker != "" {
		m, err := publish.NewMQTT(ctx, cfg.MQTT)
		if err != nil {
			return nil, err
		}
		ps = append(ps, publish.WithBreaker("mqtt", m, cfg.Breaker))
	}

	if cfg.Influx.URL != "" {
		i, err := publish.NewInflux(cfg.Influx, source)
		if err != nil {
			return nil, err
		}
		ps = append(ps, publish.WithBreaker("influx", i, cfg.Breaker))
	}

	s := &sinks{done: make(chan struct{})}
	if cfg.Metrics.Listen != "" {
		metrics := publish.NewMetrics()
		ps = append(ps, metrics)

		mctx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		go func() {
			defer close(s.done)
			if err := metrics.Serve(mctx, cfg.Metrics); err != nil {
				log.Printf("Metrics endpoint stopped: %v", err)
			}
		}()
	} else {
		close(s.done)
	}

	s.Publisher = publish.Multi(ps...)
	return s, nil
}

func (s *sinks) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
	return s.Publisher.Close()
}

func sourceName(mock bool, cfg *config.Config) string {
	if mock {
		return "simulator"
	}
	return cfg.Serial.Port
}

func newDevice(cfg *config.Config, mock bool) device.Device {
	if mock {
		return device.NewSimulator(cfg, device.DefaultBufferSize)
	}
	return device.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, device.DefaultBufferSize, cfg.Light)
}

// forward publishes each sample and hands it to onSample until the channel
// closes. Sink failures are logged and never stop the stream.
func forward(ctx context.Context, samples <-chan sample.Sample, pub publish.Publisher, onSample func(sample.Sample)) int {
	n := 0
	for s := range samples {
		n++
		pctx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := pub.Publish(pctx, s)
		cancel()
		switch {
		case err == nil:
		case errors.Is(err, gobreaker.ErrOpenState):
			// Already reported when the breaker tripped.
		default:
			log.Printf("Failed to publish sample: %v", err)
		}

		if onSample != nil {
			onSample(s)
		}
	}
	return n
}

// runHeadless streams samples from dev into the sinks until ctx is done.
func runHeadless(ctx context.Context, dev device.Device, pub publish.Publisher) error {
	if err := dev.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	done := make(chan int)
	go func() {
		done <- forward(ctx, dev.Samples(), pub, func(s sample.Sample) {
			log.Print(report.Format(s))
		})
	}()

	select {
	case <-ctx.Done():
		dev.Close()
		n := <-done
		log.Printf("Stopped after %d reports", n)
		return nil
	case n := <-done:
		dev.Close()
		return fmt.Errorf("device stream ended after %d reports", n)
	}
}
