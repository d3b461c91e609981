// Package page holds the server side of one visitor's page: its toast region,
// the widgets that post into it, and the page-load lifecycle.
package page

import (
	"sync"
	"time"

	"github.com/Zachkp/rest-portfolio/internal/clock"
	"github.com/Zachkp/rest-portfolio/internal/contact"
	"github.com/Zachkp/rest-portfolio/internal/nav"
	"github.com/Zachkp/rest-portfolio/internal/toast"
)

// WelcomeDelay is how long after load the welcome toast appears.
const WelcomeDelay = 1500 * time.Millisecond

const (
	WelcomeTitle   = "👋 Bienvenido!"
	WelcomeMessage = "Gracias por visitar mi portfolio."
)

// Page is one visitor's page instance.
type Page struct {
	ID     string
	Board  *toast.Board
	Toasts *toast.Manager
	Menu   *nav.Menu
	Submit *contact.Button

	clock clock.Clock

	mu       sync.Mutex
	loaded   bool
	welcome  clock.Timer
	lastSeen time.Time
}

type options struct {
	clock    clock.Clock
	observer toast.Observer
	noToasts bool
}

// Option configures a Page.
type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithObserver forwards toast lifecycle events, e.g. to metrics.
func WithObserver(obs toast.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithoutToastRegion builds a page that has no toast container, as a page
// template without one would.
func WithoutToastRegion() Option {
	return func(o *options) { o.noToasts = true }
}

// New builds an unloaded page.
func New(id string, opts ...Option) *Page {
	o := options{clock: clock.Real()}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Page{
		ID:     id,
		Board:  toast.NewBoard(),
		Menu:   &nav.Menu{},
		Submit: &contact.Button{},
		clock:  o.clock,
	}
	p.lastSeen = o.clock.Now()

	locate := func() toast.Container { return p.Board }
	if o.noToasts {
		locate = func() toast.Container { return nil }
	}
	toastOpts := []toast.Option{toast.WithClock(o.clock)}
	if o.observer != nil {
		toastOpts = append(toastOpts, toast.WithObserver(o.observer))
	}
	p.Toasts = toast.NewManager(locate, toastOpts...)
	return p
}

// Load runs the page-load initialization. It runs on every full load of the
// page, reloads included: the mobile menu starts closed and a fresh welcome
// toast is scheduled, replacing one still pending from an earlier load. The
// toast manager binds first because the other widgets post into it.
func (p *Page) Load() {
	p.Toasts.Init()
	p.Menu.Close()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded = true
	if p.welcome != nil {
		p.welcome.Stop()
	}
	p.welcome = p.clock.AfterFunc(WelcomeDelay, func() {
		p.Toasts.Show(WelcomeTitle, WelcomeMessage, toast.WithKind(toast.Info), toast.WithDuration(5000*time.Millisecond))
	})
}

// Loaded reports whether Load has run at least once.
func (p *Page) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// CloseToast activates the close affordance of the toast with the given id.
// It reports whether such a toast was on the page.
func (p *Page) CloseToast(id string) bool {
	t := p.Board.Find(id)
	if t == nil {
		return false
	}
	t.Close()
	return true
}

// Touch records activity on the page.
func (p *Page) Touch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = p.clock.Now()
}

// IdleSince reports the last activity time.
func (p *Page) IdleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Shutdown cancels every timer the page owns.
func (p *Page) Shutdown() {
	p.mu.Lock()
	if p.welcome != nil {
		p.welcome.Stop()
		p.welcome = nil
	}
	p.mu.Unlock()
	p.Toasts.Shutdown(p.Board.Children())
}
