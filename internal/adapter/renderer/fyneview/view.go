// Package fyneview renders the harmonic waveform as a Fyne raster widget and
// feeds pointer gestures back into the engine.
package fyneview

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// surfaceMarginRatio leaves a border between the drawing and the widget edge.
const surfaceMarginRatio = 0.9

// waveformRingRatio places the polar waveform's zero line inside the outer ring.
const waveformRingRatio = 0.7

// DataSource supplies the artifacts the view draws. Satisfied by the engine
// facade.
type DataSource interface {
	State() domain.State
	Waveform() domain.SampleBuffer
	Angles() []domain.AngleSample
	ReferenceRadius() float64
	OnResize(width, height float64)
}

// Gestures receives pointer input mapped by the view. Satisfied by the
// engine's interaction controller.
type Gestures interface {
	Drag(dx, dy float64)
	Wheel(delta float64)
}

// View is the engine's renderer module and a Fyne widget at the same time.
// Render snapshots the current artifacts and refreshes the raster; the
// raster callback then draws purely from that snapshot.
type View struct {
	widget.BaseWidget

	logger   *slog.Logger
	source   DataSource
	gestures Gestures
	toggle   func()
	raster   *canvas.Raster
	draw     drawKit

	mu       sync.Mutex
	state    domain.State
	waveform domain.SampleBuffer
	angles   []domain.AngleSample
	refR     float64
}

// NewView creates the waveform view. The toggle callback runs on tap and may
// be nil.
func NewView(logger *slog.Logger, source DataSource, gestures Gestures, toggle func()) *View {
	v := &View{
		logger:   logger,
		source:   source,
		gestures: gestures,
		toggle:   toggle,
		state:    source.State(),
		refR:     source.ReferenceRadius(),
	}
	v.raster = canvas.NewRaster(v.render)
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *View) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns the minimum size of the view.
func (v *View) MinSize() fyne.Size {
	return fyne.NewSize(0, 0)
}

// Resize propagates the new surface size to the engine so the waveform
// amplitude follows the window.
func (v *View) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	v.source.OnResize(float64(size.Width), float64(size.Height))
}

// OnStateUpdate caches the latest configuration snapshot.
func (v *View) OnStateUpdate(state domain.State, _ domain.ChangeSet) {
	v.mu.Lock()
	v.state = state
	v.mu.Unlock()
}

// Render pulls the current artifacts and repaints. Invoked once per engine
// tick, after stale caches were recomputed.
func (v *View) Render() {
	waveform := v.source.Waveform()
	angles := v.source.Angles()
	refR := v.source.ReferenceRadius()
	state := v.source.State()

	v.mu.Lock()
	v.waveform = waveform
	v.angles = angles
	v.refR = refR
	v.state = state
	v.mu.Unlock()

	v.raster.Refresh()
}

// Dragged implements fyne.Draggable.
func (v *View) Dragged(e *fyne.DragEvent) {
	v.gestures.Drag(float64(e.Dragged.DX), float64(e.Dragged.DY))
}

// DragEnd implements fyne.Draggable.
func (v *View) DragEnd() {}

// Scrolled implements fyne.Scrollable.
func (v *View) Scrolled(e *fyne.ScrollEvent) {
	v.gestures.Wheel(float64(e.Scrolled.DY))
}

// Tapped implements fyne.Tappable.
func (v *View) Tapped(_ *fyne.PointEvent) {
	if v.toggle != nil {
		v.toggle()
	}
}

// render draws the current snapshot. Runs inside the raster's paint path.
func (v *View) render(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.draw.fill(img, color.Black)

	v.mu.Lock()
	state := v.state
	waveform := v.waveform
	angles := v.angles
	refR := v.refR
	v.mu.Unlock()

	if w == 0 || h == 0 {
		return img
	}

	centerX := float64(w) / 2
	centerY := float64(h) / 2
	base := math.Min(float64(w), float64(h)) / 2 * surfaceMarginRatio

	// Waveform samples are normalized against the engine's reference
	// radius; rescale them to raster pixels.
	ampScale := 1.0
	if refR > 0 {
		ampScale = base / refR
	}

	if state.CoordinateSystem == domain.CoordCartesian {
		v.renderCartesian(img, state, waveform, angles, centerX, centerY, float64(w), ampScale)
		return img
	}
	v.renderPolar(img, state, waveform, angles, centerX, centerY, base, ampScale)
	return img
}

func (v *View) renderPolar(img *image.RGBA, state domain.State, waveform domain.SampleBuffer, angles []domain.AngleSample, centerX, centerY, base, ampScale float64) {
	zoom := state.Zoom
	ringRadius := base * zoom
	waveRadius := base * waveformRingRatio * zoom

	if state.Shapes.Axes.Visible {
		col := parseHexColor(state.Shapes.Axes.Color)
		v.draw.line(img, centerX-ringRadius, centerY, centerX+ringRadius, centerY, 1, col)
		v.draw.line(img, centerX, centerY-ringRadius, centerX, centerY+ringRadius, 1, col)
	}

	if state.Shapes.Spokes.Visible {
		col := parseHexColor(state.Shapes.Spokes.Color)
		for _, a := range angles {
			angle := a.Angle + state.Rotation
			endX := centerX + math.Cos(angle)*ringRadius
			endY := centerY + math.Sin(angle)*ringRadius
			v.draw.line(img, centerX, centerY, endX, endY, 1, col)
		}
	}

	if state.Shapes.OuterRing.Visible {
		v.draw.circle(img, centerX, centerY, ringRadius, parseHexColor(state.Shapes.OuterRing.Color))
	}

	if state.Shapes.Waveform.Visible && len(waveform) > 1 {
		col := parseHexColor(state.Shapes.Waveform.Color)
		n := len(waveform)

		pointAt := func(i int) (float64, float64) {
			angle := 2*math.Pi*float64(i)/float64(n) - math.Pi/2 + state.Rotation
			r := waveRadius + waveform[i]*ampScale*zoom
			return centerX + math.Cos(angle)*r, centerY + math.Sin(angle)*r
		}

		prevX, prevY := pointAt(0)
		for i := 1; i <= n; i++ {
			x, y := pointAt(i % n) // close the loop back to sample zero
			v.draw.line(img, prevX, prevY, x, y, 2, col)
			prevX, prevY = x, y
		}
	}
}

func (v *View) renderCartesian(img *image.RGBA, state domain.State, waveform domain.SampleBuffer, angles []domain.AngleSample, centerX, centerY, width, ampScale float64) {
	zoom := state.Zoom
	height := float64(img.Bounds().Dy())

	if state.Shapes.Axes.Visible {
		col := parseHexColor(state.Shapes.Axes.Color)
		v.draw.line(img, 0, centerY, width, centerY, 1, col)
		v.draw.line(img, centerX, 0, centerX, height, 1, col)
	}

	// Spokes become vertical gridlines at the axis angles' fractional turn.
	if state.Shapes.Spokes.Visible {
		col := parseHexColor(state.Shapes.Spokes.Color)
		for _, a := range angles {
			x := a.Angle / (2 * math.Pi) * width
			v.draw.line(img, x, 0, x, height, 1, col)
		}
	}

	if state.Shapes.Waveform.Visible && len(waveform) > 1 {
		col := parseHexColor(state.Shapes.Waveform.Color)
		n := len(waveform)

		// Rotation shifts the sampled window so the trace scrolls while
		// the animation runs.
		shift := int(state.Rotation / (2 * math.Pi) * float64(n))
		pointAt := func(i int) (float64, float64) {
			s := waveform[(i+shift)%n]
			return float64(i) / float64(n-1) * width, centerY - s*ampScale*zoom
		}

		prevX, prevY := pointAt(0)
		for i := 1; i < n; i++ {
			x, y := pointAt(i)
			v.draw.line(img, prevX, prevY, x, y, 2, col)
			prevX, prevY = x, y
		}
	}
}

// Verify interface implementations at compile time.
var (
	_ fyne.Widget     = (*View)(nil)
	_ fyne.Draggable  = (*View)(nil)
	_ fyne.Scrollable = (*View)(nil)
	_ fyne.Tappable   = (*View)(nil)
)
