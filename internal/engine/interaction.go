package engine

import (
	"log/slog"

	"github.com/tejashwikalptaru/harmonia/internal/domain"
)

// Gesture-to-delta factors. Drag distances arrive in pixels, wheel deltas
// in host scroll units, pinch factors as a scale ratio.
const (
	dragSpeedFactor    = 0.01  // rad/s per horizontal pixel while running
	dragRotationFactor = 0.005 // rad per horizontal pixel while stopped
	wheelZoomRate      = 0.05  // fraction of current zoom per scroll unit
)

// InteractionController maps pointer and wheel/pinch gestures into bounded
// state deltas. It never mutates state directly: every result goes through
// Store.Update, where clamping to the declared bounds happens.
type InteractionController struct {
	logger *slog.Logger
	store  *Store
}

// NewInteractionController creates an interaction controller bound to a store.
func NewInteractionController(logger *slog.Logger, store *Store) *InteractionController {
	return &InteractionController{logger: logger, store: store}
}

// Drag maps a pointer drag delta to an angular-speed delta while the
// animation runs, or a direct rotation delta while it is stopped.
func (c *InteractionController) Drag(dx, dy float64) {
	_ = dy // vertical drag is reserved; only horizontal movement steers

	st := c.store.State()
	if st.IsRunning {
		speed := st.AngularSpeed + dx*dragSpeedFactor
		c.store.Update(domain.Patch{AngularSpeed: &speed})
		return
	}
	rotation := st.Rotation + dx*dragRotationFactor
	c.store.Update(domain.Patch{Rotation: &rotation})
}

// Wheel maps a scroll delta to a zoom delta with an accelerating step: the
// step grows proportionally to the current zoom so zooming feels uniform
// across the whole range.
func (c *InteractionController) Wheel(delta float64) {
	st := c.store.State()
	zoom := st.Zoom + delta*wheelZoomRate*st.Zoom
	c.store.Update(domain.Patch{Zoom: &zoom})
}

// Pinch maps a pinch scale factor to a multiplicative zoom change.
func (c *InteractionController) Pinch(scale float64) {
	if scale <= 0 {
		c.logger.Warn("ignoring non-positive pinch scale", slog.Float64("scale", scale))
		return
	}
	st := c.store.State()
	zoom := st.Zoom * scale
	c.store.Update(domain.Patch{Zoom: &zoom})
}
