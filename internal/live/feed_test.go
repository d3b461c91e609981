package live

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/rest-portfolio/internal/toast"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

func TestFeed_SnapshotEventsAndClose(t *testing.T) {
	board := toast.NewBoard()
	mgr := toast.NewManager(func() toast.Container { return board })
	existing := mgr.Show("Hola", "<b>ya</b>", toast.WithDuration(0))

	connected := make(chan struct{}, 1)
	feed := NewFeed(WithHooks(func() { connected <- struct{}{} }, func() {}))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = feed.Serve(w, r, board, func(c Command) {
			if c.Action == ActionClose {
				if tt := board.Find(c.ID); tt != nil {
					tt.Close()
				}
			}
		})
	}))
	defer srv.Close()

	conn := dial(t, srv)
	<-connected

	first := read(t, conn)
	assert.Equal(t, toast.OpAppend, first.Op)
	assert.Equal(t, existing.ID, first.ID)
	assert.Equal(t, "<b>ya</b>", first.Message)
	assert.Equal(t, "ℹ", first.Icon)

	fresh := mgr.Show("Error", "algo", toast.WithKind(toast.Error), toast.WithDuration(0))
	m := read(t, conn)
	assert.Equal(t, fresh.ID, m.ID)
	assert.Equal(t, toast.Error, m.Kind)

	require.NoError(t, conn.WriteJSON(Command{Action: ActionClose, ID: fresh.ID}))
	leave := read(t, conn)
	assert.Equal(t, toast.OpLeave, leave.Op)
	assert.True(t, leave.Leaving)

	detach := read(t, conn)
	assert.Equal(t, toast.OpDetach, detach.Op)
	assert.Equal(t, fresh.ID, detach.ID)
	assert.True(t, board.Contains(existing))
}

func TestFeed_RejectsPlainHTTP(t *testing.T) {
	feed := NewFeed()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	err := feed.Serve(rec, req, toast.NewBoard(), nil)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
