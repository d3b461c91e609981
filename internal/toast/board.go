package toast

import (
	"html/template"
	"io"
	"sync"
)

// Op is the kind of change a Board reports to its subscribers.
type Op string

const (
	OpAppend Op = "append"
	OpLeave  Op = "leave"
	OpDetach Op = "detach"
)

// View is a read-only snapshot of a toast as the board shows it.
type View struct {
	ID      string
	Kind    Kind
	Icon    string
	Title   string
	Message template.HTML
	Leaving bool
}

// Event is one change on a Board.
type Event struct {
	Op    Op
	Toast View
}

type entry struct {
	t       *Toast
	leaving bool
}

// Board is the page's toast container region. It keeps children in arrival
// order and fans changes out to subscribers.
type Board struct {
	mu       sync.Mutex
	children []*entry
	subs     map[chan Event]struct{}
}

var _ Container = (*Board)(nil)

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{subs: make(map[chan Event]struct{})}
}

func (b *Board) Append(t *Toast) {
	b.mu.Lock()
	e := &entry{t: t}
	b.children = append(b.children, e)
	v := e.view()
	b.mu.Unlock()
	b.publish(Event{Op: OpAppend, Toast: v})
}

func (b *Board) Animate(t *Toast) {
	b.mu.Lock()
	e := b.lookup(t)
	if e == nil {
		b.mu.Unlock()
		return
	}
	e.leaving = true
	v := e.view()
	b.mu.Unlock()
	b.publish(Event{Op: OpLeave, Toast: v})
}

func (b *Board) Detach(t *Toast) {
	b.mu.Lock()
	var removed *entry
	for i, e := range b.children {
		if e.t == t {
			removed = e
			b.children = append(b.children[:i], b.children[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	if removed != nil {
		b.publish(Event{Op: OpDetach, Toast: removed.view()})
	}
}

// Len is the number of toasts currently in the board, leaving ones included.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.children)
}

// Contains reports whether t is still attached.
func (b *Board) Contains(t *Toast) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lookup(t) != nil
}

// Children returns the attached toasts in stacking order.
func (b *Board) Children() []*Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Toast, 0, len(b.children))
	for _, e := range b.children {
		out = append(out, e.t)
	}
	return out
}

// Find returns the attached toast with the given ID.
func (b *Board) Find(id string) *Toast {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.children {
		if e.t.ID == id {
			return e.t
		}
	}
	return nil
}

// Views snapshots the board in stacking order.
func (b *Board) Views() []View {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]View, 0, len(b.children))
	for _, e := range b.children {
		out = append(out, e.view())
	}
	return out
}

// Subscribe returns a feed of board changes and a func that ends it. Events
// are dropped for subscribers that fall behind.
func (b *Board) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Board) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *Board) lookup(t *Toast) *entry {
	for _, e := range b.children {
		if e.t == t {
			return e
		}
	}
	return nil
}

func (e *entry) view() View {
	return View{
		ID:      e.t.ID,
		Kind:    e.t.Kind,
		Icon:    e.t.Icon(),
		Title:   e.t.Title,
		Message: template.HTML(e.t.Message),
		Leaving: e.leaving,
	}
}

var boardTmpl = template.Must(template.New("toasts").Parse(`<div id="toast-container" class="toast-container">
{{- range . }}
  <div class="toast toast-{{ .Kind }}{{ if .Leaving }} toast-leaving{{ end }}" id="toast-{{ .ID }}">
    <span class="toast-icon">{{ .Icon }}</span>
    <div class="toast-msg"><strong>{{ .Title }}</strong>{{ .Message }}</div>
    <button class="toast-close" aria-label="Close" hx-post="/toasts/{{ .ID }}/close" hx-swap="none">✕</button>
  </div>
{{- end }}
</div>`))

// Render writes the container markup for the current children.
func (b *Board) Render(w io.Writer) error {
	return boardTmpl.Execute(w, b.Views())
}
