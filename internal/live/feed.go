// Package live pushes a page's toast board to the browser over a websocket,
// and takes close commands back.
package live

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Zachkp/rest-portfolio/internal/toast"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	pongWait   = pingPeriod + 10*time.Second
)

// Message is one board change as sent to the browser.
type Message struct {
	Op      toast.Op   `json:"op"`
	ID      string     `json:"id"`
	Kind    toast.Kind `json:"kind"`
	Icon    string     `json:"icon"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Leaving bool       `json:"leaving"`
}

// Command is sent by the browser.
type Command struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// ActionClose activates a toast's close affordance.
const ActionClose = "close"

func newMessage(op toast.Op, v toast.View) Message {
	return Message{
		Op:      op,
		ID:      v.ID,
		Kind:    v.Kind,
		Icon:    v.Icon,
		Title:   v.Title,
		Message: string(v.Message),
		Leaving: v.Leaving,
	}
}

// Feed upgrades requests and streams boards.
type Feed struct {
	upgrader     websocket.Upgrader
	log          zerolog.Logger
	onConnect    func()
	onDisconnect func()
}

// Option configures a Feed.
type Option func(*Feed)

func WithLogger(l zerolog.Logger) Option {
	return func(f *Feed) { f.log = l }
}

// WithHooks is called as connections open and close.
func WithHooks(onConnect, onDisconnect func()) Option {
	return func(f *Feed) { f.onConnect, f.onDisconnect = onConnect, onDisconnect }
}

func NewFeed(opts ...Option) *Feed {
	f := &Feed{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log:          zerolog.Nop(),
		onConnect:    func() {},
		onDisconnect: func() {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Serve upgrades the request and streams board until either side hangs up.
// Commands from the browser go to onCommand.
func (f *Feed) Serve(w http.ResponseWriter, r *http.Request, board *toast.Board, onCommand func(Command)) error {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.onConnect()
	defer f.onDisconnect()

	events, cancel := board.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go f.readCommands(conn, onCommand, done)

	for _, v := range board.Views() {
		if err := f.write(conn, newMessage(toast.OpAppend, v)); err != nil {
			return nil
		}
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return nil
		case <-r.Context().Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := f.write(conn, newMessage(ev.Op, ev.Toast)); err != nil {
				f.log.Debug().Err(err).Msg("live feed write failed")
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

func (f *Feed) write(conn *websocket.Conn, m Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(m)
}

func (f *Feed) readCommands(conn *websocket.Conn, onCommand func(Command), done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		if onCommand != nil {
			onCommand(cmd)
		}
	}
}
