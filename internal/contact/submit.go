package contact

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Zachkp/rest-portfolio/internal/clock"
	"github.com/Zachkp/rest-portfolio/internal/toast"
)

// SendDelay is the pause between pressing send and the delivery result.
const SendDelay = 1500 * time.Millisecond

// Toast copy.
const (
	InvalidTitle   = "Error"
	InvalidMessage = "Rellena todos los campos."
	SentTitle      = "✓ Enviado!"
	SentMessage    = "Gracias por tu mensaje. Te respondere pronto."
	FailedTitle    = "Error"
	FailedMessage  = "No se pudo enviar el mensaje. Intentalo mas tarde."
)

// Submit button labels.
const (
	LabelIdle = "Enviar Mensaje"
	LabelBusy = "Enviando..."
)

// Notifier posts toasts. *toast.Manager satisfies it.
type Notifier interface {
	Show(title, message string, opts ...toast.ShowOption) *toast.Toast
}

// Button is the submit button of one page's form.
type Button struct {
	mu   sync.Mutex
	busy bool
}

func (b *Button) Busy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

// Label is the text the button shows.
func (b *Button) Label() string {
	if b.Busy() {
		return LabelBusy
	}
	return LabelIdle
}

func (b *Button) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return false
	}
	b.busy = true
	return true
}

func (b *Button) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = false
}

// Sender processes submissions.
type Sender struct {
	mailer   Mailer
	clock    clock.Clock
	log      zerolog.Logger
	onResult func(result string)
}

// SenderOption configures a Sender.
type SenderOption func(*Sender)

func WithClock(c clock.Clock) SenderOption {
	return func(s *Sender) { s.clock = c }
}

func WithLogger(l zerolog.Logger) SenderOption {
	return func(s *Sender) { s.log = l }
}

// WithResultHook is called with "invalid", "sent" or "failed".
func WithResultHook(f func(result string)) SenderOption {
	return func(s *Sender) { s.onResult = f }
}

// NewSender delivers through m.
func NewSender(m Mailer, opts ...SenderOption) *Sender {
	s := &Sender{
		mailer:   m,
		clock:    clock.Real(),
		log:      zerolog.Nop(),
		onResult: func(string) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates f and, when complete, marks btn busy and delivers it
// after SendDelay. The outcome is reported to n as a toast; Submit itself
// returns as soon as the work is scheduled.
func (s *Sender) Submit(n Notifier, btn *Button, f Form) error {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		s.onResult("invalid")
		n.Show(InvalidTitle, InvalidMessage, toast.WithKind(toast.Warning), toast.WithDuration(4000*time.Millisecond))
		return err
	}
	if !btn.acquire() {
		return ErrBusy
	}

	s.clock.AfterFunc(SendDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := s.mailer.Send(ctx, f)
		cancel()

		// the button is idle again before the outcome toast goes up, so a
		// form refresh triggered by that toast renders it enabled
		btn.release()
		if err != nil {
			s.log.Error().Err(err).Str("email", f.Email).Msg("contact delivery failed")
			s.onResult("failed")
			n.Show(FailedTitle, FailedMessage, toast.WithKind(toast.Error), toast.WithDuration(toast.DefaultDuration))
			return
		}
		s.log.Info().Str("name", f.Name).Msg("contact message delivered")
		s.onResult("sent")
		n.Show(SentTitle, SentMessage, toast.WithKind(toast.Success), toast.WithDuration(5000*time.Millisecond))
	})
	return nil
}
