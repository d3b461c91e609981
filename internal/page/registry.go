package page

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Zachkp/rest-portfolio/internal/clock"
)

// Registry tracks live page instances by session id.
type Registry struct {
	idle    time.Duration
	clock   clock.Clock
	opts    []Option
	onOpen  func()
	onClose func()

	mu    sync.Mutex
	pages map[string]*Page
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPageOptions applies opts to every page the registry creates.
func WithPageOptions(opts ...Option) RegistryOption {
	return func(r *Registry) { r.opts = append(r.opts, opts...) }
}

// WithRegistryClock sets the clock used for idle tracking and page timers.
func WithRegistryClock(c clock.Clock) RegistryOption {
	return func(r *Registry) { r.clock = c }
}

// WithHooks is called when pages open and close.
func WithHooks(onOpen, onClose func()) RegistryOption {
	return func(r *Registry) {
		r.onOpen, r.onClose = onOpen, onClose
	}
}

// NewRegistry expires pages after idle without activity.
func NewRegistry(idle time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		idle:    idle,
		clock:   clock.Real(),
		onOpen:  func() {},
		onClose: func() {},
		pages:   make(map[string]*Page),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open returns the page for id, creating a fresh one under a new id when id
// is unknown. The returned page has been touched.
func (r *Registry) Open(id string) (*Page, bool) {
	r.mu.Lock()
	if p, ok := r.pages[id]; ok && id != "" {
		r.mu.Unlock()
		p.Touch()
		return p, false
	}
	p := New(uuid.NewString(), append([]Option{WithClock(r.clock)}, r.opts...)...)
	r.pages[p.ID] = p
	r.mu.Unlock()

	r.onOpen()
	return p, true
}

// Get returns an existing page and touches it.
func (r *Registry) Get(id string) (*Page, bool) {
	r.mu.Lock()
	p, ok := r.pages[id]
	r.mu.Unlock()
	if ok {
		p.Touch()
	}
	return p, ok
}

// Len is the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep drops pages idle for longer than the timeout and returns how many.
func (r *Registry) Sweep() int {
	cutoff := r.clock.Now().Add(-r.idle)

	r.mu.Lock()
	var expired []*Page
	for id, p := range r.pages {
		if p.IdleSince().Before(cutoff) {
			expired = append(expired, p)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for _, p := range expired {
		p.Shutdown()
		r.onClose()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
