package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/rest-portfolio/internal/clock"
)

// Container is the page region toasts are stacked in, in arrival order.
type Container interface {
	Append(t *Toast)
	// Animate starts the exit animation of a toast that is about to leave.
	Animate(t *Toast)
	Detach(t *Toast)
}

// Locator finds the page's container. It may return nil when the page has no
// container region.
type Locator func() Container

// Reason tells an Observer why a toast left.
type Reason string

const (
	Expired Reason = "expired"
	Closed  Reason = "closed"
)

// Observer receives lifecycle notifications, typically for metrics.
type Observer interface {
	Shown(kind Kind)
	Removed(kind Kind, reason Reason)
}

type nopObserver struct{}

func (nopObserver) Shown(Kind)           {}
func (nopObserver) Removed(Kind, Reason) {}

// Manager posts toasts into a single container.
type Manager struct {
	locate   Locator
	clock    clock.Clock
	observer Observer
	newID    func() string

	mu        sync.Mutex
	container Container
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used for auto-dismiss and exit timers.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithObserver registers lifecycle callbacks.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithIDs overrides toast ID generation.
func WithIDs(f func() string) Option {
	return func(m *Manager) { m.newID = f }
}

// NewManager returns an unbound Manager. Init, or the first Show, binds it.
func NewManager(locate Locator, opts ...Option) *Manager {
	m := &Manager{
		locate:   locate,
		clock:    clock.Real(),
		observer: nopObserver{},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init binds the manager to its container. Once bound, later calls do
// nothing. A missing container leaves the manager unbound.
func (m *Manager) Init() {
	m.bind()
}

// Bound reports whether a container has been found.
func (m *Manager) Bound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.container != nil
}

func (m *Manager) bind() Container {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.container == nil && m.locate != nil {
		m.container = m.locate()
	}
	return m.container
}

type showConfig struct {
	kind     Kind
	duration time.Duration
}

// ShowOption customizes a single toast.
type ShowOption func(*showConfig)

// WithKind sets the toast kind. The default is Info.
func WithKind(k Kind) ShowOption {
	return func(c *showConfig) { c.kind = k }
}

// WithDuration sets the auto-dismiss delay. Zero or negative keeps the toast
// until it is closed by hand. The default is DefaultDuration.
func WithDuration(d time.Duration) ShowOption {
	return func(c *showConfig) { c.duration = d }
}

// Show appends a toast to the container and schedules its auto-dismiss.
// message is inserted as markup. It returns the handle, or nil when there is
// no container to show it in.
func (m *Manager) Show(title, message string, opts ...ShowOption) *Toast {
	cfg := showConfig{kind: Info, duration: DefaultDuration}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.kind == "" {
		cfg.kind = Info
	}

	c := m.bind()
	if c == nil {
		return nil
	}

	t := &Toast{
		ID:        m.newID(),
		Title:     title,
		Message:   message,
		Kind:      cfg.kind,
		Duration:  cfg.duration,
		Created:   m.clock.Now(),
		mgr:       m,
		container: c,
	}
	c.Append(t)
	m.observer.Shown(t.Kind)

	if t.Duration > 0 {
		m.mu.Lock()
		t.auto = m.clock.AfterFunc(t.Duration, func() { m.remove(t, Expired) })
		m.mu.Unlock()
	}
	return t
}

// Remove starts the exit animation of t and detaches it ExitAnimation later.
// Calls after the first are no-ops.
func (m *Manager) Remove(t *Toast) {
	m.remove(t, Closed)
}

func (m *Manager) remove(t *Toast, reason Reason) {
	if t == nil || t.mgr != m {
		return
	}

	m.mu.Lock()
	if t.leaving {
		m.mu.Unlock()
		return
	}
	t.leaving = true
	if t.auto != nil {
		t.auto.Stop()
		t.auto = nil
	}
	c := t.container
	m.mu.Unlock()

	c.Animate(t)

	m.mu.Lock()
	t.exit = m.clock.AfterFunc(ExitAnimation, func() { m.detach(t, reason) })
	m.mu.Unlock()
}

func (m *Manager) detach(t *Toast, reason Reason) {
	m.mu.Lock()
	if t.detached {
		m.mu.Unlock()
		return
	}
	t.detached = true
	t.exit = nil
	c := t.container
	m.mu.Unlock()

	c.Detach(t)
	m.observer.Removed(t.Kind, reason)
}

// Shutdown cancels every pending timer of the given toasts. Used when a page
// goes away so no callback outlives it.
func (m *Manager) Shutdown(toasts []*Toast) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range toasts {
		if t == nil || t.mgr != m {
			continue
		}
		if t.auto != nil {
			t.auto.Stop()
			t.auto = nil
		}
		if t.exit != nil {
			t.exit.Stop()
			t.exit = nil
		}
	}
}
