package publish

import (
	"context"
	"errors"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/sample"
)

var ErrInfluxConfig = errors.New("influx config incomplete")

// Influx writes samples as points into a bucket.
type Influx struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
	source      string
}

// NewInflux creates a blocking writer for cfg.Bucket. source tags every point.
func NewInflux(cfg config.InfluxConfig, source string) (*Influx, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, ErrInfluxConfig
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Influx{
		client:      client,
		writeAPI:    client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: cfg.Measurement,
		source:      source,
	}, nil
}

// Point builds the point written for s. Temperature is omitted when invalid.
func Point(measurement, source string, s sample.Sample) *write.Point {
	tags := map[string]string{
		"source": source,
	}
	fields := map[string]interface{}{
		"light":     int64(s.Light),
		"indicator": s.Indicator,
	}
	if s.TemperatureValid {
		fields["temperature"] = s.Temperature
	}
	return influxdb2.NewPoint(measurement, tags, fields, s.Timestamp)
}

func (i *Influx) Publish(ctx context.Context, s sample.Sample) error {
	if err := i.writeAPI.WritePoint(ctx, Point(i.measurement, i.source, s)); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}

func (i *Influx) Close() error {
	if i.client != nil {
		i.client.Close()
	}
	return nil
}
