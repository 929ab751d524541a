package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/lpsense/pkg/config"
	"github.com/itohio/lpsense/pkg/sample"
)

// ScopeWidget is a Fyne widget that plots the temperature and ambient light
// trends with the indicator state underneath.
type ScopeWidget struct {
	widget.BaseWidget

	window time.Duration
	light  sample.LightConfig

	// Data (protected by mu)
	mu      sync.RWMutex
	samples []sample.Sample
	display []sample.Sample
	spans   []span

	tMin, tMax float64
	xMin, xMax time.Time

	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		window:           time.Duration(cfg.Display.WindowSeconds * float64(time.Second)),
		light:            cfg.Light,
		display:          make([]sample.Sample, 0, 1000),
		maxDisplayPoints: 1000,
	}
	s.rescale()
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// Add appends a sample and drops history outside the display window.
// Call it on the UI goroutine (fyne.Do).
func (s *ScopeWidget) Add(smp sample.Sample) {
	s.mu.Lock()
	s.samples = sample.Trim(append(s.samples, smp), s.window)
	s.display = sample.Downsample(s.display, s.samples, s.maxDisplayPoints)
	s.spans = indicatorSpans(s.display)
	s.rescale()
	s.mu.Unlock()

	s.Refresh()
}

// Clear removes all history.
func (s *ScopeWidget) Clear() {
	s.mu.Lock()
	s.samples = nil
	s.display = s.display[:0]
	s.spans = nil
	s.rescale()
	s.mu.Unlock()

	s.Refresh()
}

// Len returns the number of samples held in the window.
func (s *ScopeWidget) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.samples)
}

func (s *ScopeWidget) rescale() {
	s.tMin, s.tMax = temperatureRange(s.display)
	s.xMin, s.xMax = timeRange(s.display, s.window, time.Now())
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &scopeRenderer{
		scope:   s,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
