package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/sample"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the latest sample as Prometheus gauges.
type Metrics struct {
	registry *prometheus.Registry

	temperature prometheus.Gauge
	light       prometheus.Gauge
	indicator   prometheus.Gauge
	samples     prometheus.Counter
	faults      prometheus.Counter

	server *http.Server
}

// NewMetrics registers the gauges on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lpsense",
			Name:      "temperature_celsius",
			Help:      "Latest reported thermistor temperature.",
		}),
		light: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lpsense",
			Name:      "ambient_light_percent",
			Help:      "Latest reported ambient light intensity.",
		}),
		indicator: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lpsense",
			Name:      "indicator_on",
			Help:      "1 when the low-light indicator is lit.",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lpsense",
			Name:      "samples_total",
			Help:      "Number of received samples.",
		}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lpsense",
			Name:      "temperature_faults_total",
			Help:      "Number of samples without a valid temperature.",
		}),
	}
	m.registry.MustRegister(m.temperature, m.light, m.indicator, m.samples, m.faults)
	return m
}

func (m *Metrics) Publish(_ context.Context, s sample.Sample) error {
	m.samples.Inc()
	if s.TemperatureValid {
		m.temperature.Set(s.Temperature)
	} else {
		m.faults.Inc()
	}
	m.light.Set(float64(s.Light))
	if s.Indicator {
		m.indicator.Set(1)
	} else {
		m.indicator.Set(0)
	}
	return nil
}

// Handler returns the scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve listens on cfg.Listen until ctx is done.
func (m *Metrics) Serve(ctx context.Context, cfg config.MetricsConfig) error {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	m.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving metrics on %s%s", cfg.Listen, cfg.Path)
		errCh <- m.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return m.server.Shutdown(shutdownCtx)
	}
}

func (m *Metrics) Close() error {
	return nil
}
