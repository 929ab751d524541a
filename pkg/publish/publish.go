// Package publish forwards monitor samples to telemetry sinks: an MQTT broker,
// an InfluxDB bucket and a Prometheus endpoint.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/itohio/lpsense/pkg/sample"
)

// Publisher delivers one sample to a sink.
type Publisher interface {
	Publish(ctx context.Context, s sample.Sample) error
	Close() error
}

// Payload is the JSON document published for each sample.
type Payload struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature *float64  `json:"temperature,omitempty"` // nil when the conversion failed
	Light       uint8     `json:"light"`
	Indicator   bool      `json:"indicator"`
}

// NewPayload converts a sample into its wire form.
func NewPayload(s sample.Sample) Payload {
	p := Payload{
		Timestamp: s.Timestamp.UTC(),
		Light:     s.Light,
		Indicator: s.Indicator,
	}
	if s.TemperatureValid {
		t := s.Temperature
		p.Temperature = &t
	}
	return p
}

// Encode marshals the payload of s.
func Encode(s sample.Sample) ([]byte, error) {
	return json.Marshal(NewPayload(s))
}

type multi []Publisher

// Multi fans a sample out to every publisher. A failing sink does not stop
// delivery to the others.
func Multi(ps ...Publisher) Publisher {
	out := make(multi, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (m multi) Publish(ctx context.Context, s sample.Sample) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
