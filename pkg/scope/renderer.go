package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/lpsense/pkg/sample"
)

var (
	gridColor        = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor       = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	temperatureColor = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	lightColor       = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	thresholdColor   = color.RGBA{R: 60, G: 90, B: 120, A: 255}
	indicatorColor   = color.RGBA{R: 80, G: 200, B: 80, A: 60}
)

const (
	marginLeft   = float32(60)
	marginRight  = float32(50)
	marginTop    = float32(20)
	marginBottom = float32(40)
)

type scopeRenderer struct {
	scope *ScopeWidget

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

type plot struct {
	x, y, w, h float32
	xMin, xMax time.Time
}

func (p plot) px(t time.Time) float32 {
	return p.x + projectTime(t, p.xMin, p.xMax, p.w)
}

func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

func (r *scopeRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.display
	spans := r.scope.spans
	tMin, tMax := r.scope.tMin, r.scope.tMax
	xMin, xMax := r.scope.xMin, r.scope.xMax
	light := r.scope.light
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}

	p := plot{
		x:    marginLeft,
		y:    marginTop,
		w:    size.Width - marginLeft - marginRight,
		h:    size.Height - marginTop - marginBottom,
		xMin: xMin,
		xMax: xMax,
	}

	r.drawIndicator(p, spans)
	r.drawGrid(p, tMin, tMax)
	r.drawThreshold(p, float64(light.LowThreshold))
	r.drawThreshold(p, float64(light.HighThreshold))

	if len(samples) > 1 {
		r.drawTrace(p, samples, temperatureColor, tMin, tMax, func(s sample.Sample) (float64, bool) {
			return s.Temperature, s.TemperatureValid
		})
		r.drawTrace(p, samples, lightColor, 0, 100, func(s sample.Sample) (float64, bool) {
			return float64(s.Light), true
		})
	}

	if len(samples) > 0 {
		r.drawLatest(p, samples[len(samples)-1])
	}
}

// drawGrid draws the grid with temperature on the left axis and light on the right.
func (r *scopeRenderer) drawGrid(p plot, tMin, tMax float64) {
	const rows = 5
	for i := range rows + 1 {
		y := p.y + float32(i)*p.h/rows
		r.line(gridColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))

		t := tMax - float64(i)*(tMax-tMin)/rows
		r.text(fmt.Sprintf("%.1fC", t), labelColor, 10, fyne.TextAlignTrailing, fyne.NewPos(p.x-5, y-6))

		l := 100 - i*100/rows
		r.text(fmt.Sprintf("%d%%", l), labelColor, 10, fyne.TextAlignLeading, fyne.NewPos(p.x+p.w+5, y-6))
	}

	const cols = 10
	span := p.xMax.Sub(p.xMin)
	for i := range cols + 1 {
		x := p.x + float32(i)*p.w/cols
		r.line(gridColor, 1, fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h))

		offset := time.Duration(float64(span) * float64(i) / cols)
		r.text(fmt.Sprintf("%.0fs", offset.Seconds()), labelColor, 10, fyne.TextAlignCenter, fyne.NewPos(x-20, p.y+p.h+5))
	}
}

func (r *scopeRenderer) drawThreshold(p plot, percent float64) {
	y := p.y + project(percent, 0, 100, p.h)
	r.line(thresholdColor, 1, fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y))
}

// drawIndicator shades the intervals when the indicator was lit.
func (r *scopeRenderer) drawIndicator(p plot, spans []span) {
	for _, sp := range spans {
		x0 := p.px(sp.from)
		x1 := p.px(sp.to)
		rect := canvas.NewRectangle(indicatorColor)
		rect.Move(fyne.NewPos(x0, p.y))
		rect.Resize(fyne.NewSize(max(x1-x0, 1), p.h))
		r.objects = append(r.objects, rect)
	}
}

// drawTrace connects consecutive valid points. Invalid points break the trace.
func (r *scopeRenderer) drawTrace(p plot, samples []sample.Sample, c color.Color, lo, hi float64, value func(sample.Sample) (float64, bool)) {
	var prev *fyne.Position
	for _, s := range samples {
		v, ok := value(s)
		if !ok {
			prev = nil
			continue
		}
		pos := fyne.NewPos(p.px(s.Timestamp), p.y+project(v, lo, hi, p.h))
		if prev != nil {
			r.line(c, 1.5, *prev, pos)
		}
		prev = &pos
	}
}

func (r *scopeRenderer) drawLatest(p plot, s sample.Sample) {
	temp := "--.-C"
	if s.TemperatureValid {
		temp = fmt.Sprintf("%.1fC", s.Temperature)
	}
	r.text(temp, temperatureColor, 12, fyne.TextAlignLeading, fyne.NewPos(p.x+10, p.y+5))
	r.text(fmt.Sprintf("%d%%", s.Light), lightColor, 12, fyne.TextAlignLeading, fyne.NewPos(p.x+80, p.y+5))
}

func (r *scopeRenderer) line(c color.Color, width float32, from, to fyne.Position) {
	l := canvas.NewLine(c)
	l.Position1 = from
	l.Position2 = to
	l.StrokeWidth = width
	r.objects = append(r.objects, l)
}

func (r *scopeRenderer) text(s string, c color.Color, size float32, align fyne.TextAlign, pos fyne.Position) {
	t := canvas.NewText(s, c)
	t.TextSize = size
	t.Alignment = align
	t.Move(pos)
	r.objects = append(r.objects, t)
}

func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *scopeRenderer) Destroy() {}
