package toast

import (
	"time"

	"github.com/Zachkp/rest-portfolio/internal/clock"
)

// ExitAnimation is how long a dismissed toast stays in its container while
// the exit animation plays. The stylesheet reads the same value.
const ExitAnimation = 300 * time.Millisecond

// DefaultDuration is the auto-dismiss delay used when Show gets no duration.
const DefaultDuration = 5 * time.Second

// Toast is one notification card. The pointer is the handle: there is no
// other identity inside the manager. ID only addresses the close affordance
// from outside the process.
type Toast struct {
	ID       string
	Title    string
	Message  string
	Kind     Kind
	Duration time.Duration
	Created  time.Time

	// guarded by mgr.mu
	mgr       *Manager
	container Container
	auto      clock.Timer
	exit      clock.Timer
	leaving   bool
	detached  bool
}

// Icon is the glyph shown on the card.
func (t *Toast) Icon() string { return t.Kind.Icon() }

// Persistent reports whether the toast stays until closed by hand.
func (t *Toast) Persistent() bool { return t.Duration <= 0 }

// Close is the close affordance. Activating it more than once, or after the
// toast expired, does nothing.
func (t *Toast) Close() {
	if t == nil || t.mgr == nil {
		return
	}
	t.mgr.remove(t, Closed)
}
