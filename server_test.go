package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/rest-portfolio/internal/clock"
	"github.com/Zachkp/rest-portfolio/internal/config"
	"github.com/Zachkp/rest-portfolio/internal/contact"
	"github.com/Zachkp/rest-portfolio/internal/page"
	"github.com/Zachkp/rest-portfolio/internal/toast"
	"github.com/Zachkp/rest-portfolio/internal/visitor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	srv    *server
	router *gin.Engine
	clock  *clock.Fake
	store  *visitor.Store
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.GinMode = gin.TestMode
	for _, m := range mutate {
		m(&cfg)
	}

	store, err := visitor.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	fake := clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s := newServer(cfg, store, zerolog.Nop(), withClock(fake))
	return &testEnv{srv: s, router: s.routes(), clock: fake, store: store}
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// open loads the index page and returns the session cookie.
func (e *testEnv) open(t *testing.T) *http.Cookie {
	t.Helper()
	w := e.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == pageCookie {
			return c
		}
	}
	t.Fatal("no page cookie set")
	return nil
}

func (e *testEnv) page(t *testing.T, cookie *http.Cookie) *page.Page {
	t.Helper()
	p, ok := e.srv.pages.Get(cookie.Value)
	require.True(t, ok)
	return p
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestIndex(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `id="toast-container"`)
	assert.Contains(t, body, "300ms")
	assert.Contains(t, body, contact.LabelIdle)
	assert.Contains(t, body, "Proyectos")

	cookie := env.open(t)
	p := env.page(t, cookie)
	assert.True(t, p.Loaded())
	assert.Equal(t, 2, env.srv.pages.Len())
}

func TestIndexReusesPage(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, 1, env.srv.pages.Len())
}

func TestWelcomeToast(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/toasts", nil), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), page.WelcomeTitle)

	env.clock.Advance(page.WelcomeDelay)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/toasts", nil), cookie)
	assert.Contains(t, w.Body.String(), page.WelcomeTitle)
	assert.Contains(t, w.Body.String(), "toast-info")

	env.clock.Advance(5*time.Second + toast.ExitAnimation)
	w = env.do(t, httptest.NewRequest(http.MethodGet, "/toasts", nil), cookie)
	assert.NotContains(t, w.Body.String(), page.WelcomeTitle)
}

func TestCloseToast(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)
	env.clock.Advance(page.WelcomeDelay)

	p := env.page(t, cookie)
	children := p.Board.Children()
	require.Len(t, children, 1)
	id := children[0].ID

	w := env.do(t, httptest.NewRequest(http.MethodPost, "/toasts/"+id+"/close", nil), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "toast-leaving")

	env.clock.Advance(toast.ExitAnimation)
	assert.Equal(t, 0, p.Board.Len())

	// closing again, or closing something unknown, is harmless
	w = env.do(t, httptest.NewRequest(http.MethodPost, "/toasts/"+id+"/close", nil), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, httptest.NewRequest(http.MethodPost, "/toasts/nope/close", nil), cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestContactMissingFields(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)

	w := env.do(t, postForm("/contact", url.Values{"name": {"Ana"}, "email": {"ana@example.com"}}), cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `value="Ana"`)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/toasts", nil), cookie)
	assert.Contains(t, w.Body.String(), contact.InvalidMessage)
	assert.Contains(t, w.Body.String(), "toast-warning")
}

func TestContactSend(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)

	form := url.Values{
		"name":    {"Ana"},
		"email":   {"ana@example.com"},
		"subject": {"Hola"},
		"message": {"Me gusta tu portfolio"},
	}
	w := env.do(t, postForm("/contact", form), cookie)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), contact.LabelBusy)
	assert.Contains(t, w.Body.String(), "disabled")

	w = env.do(t, postForm("/contact", form), cookie)
	assert.Equal(t, http.StatusConflict, w.Code)

	// the busy form polls for its refresh; once sent it is usable again
	env.clock.Advance(contact.SendDelay)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/toasts", nil), cookie)
	assert.Contains(t, w.Body.String(), contact.SentMessage)
	assert.Contains(t, w.Body.String(), "toast-success")

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/contact-form", nil), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), contact.LabelIdle)
	assert.NotContains(t, w.Body.String(), "disabled")
	assert.NotContains(t, w.Body.String(), "hx-trigger")

	w = env.do(t, postForm("/contact", form), cookie)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestContactBusyFormRefreshes(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)

	w := env.do(t, postForm("/contact", url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"}, "subject": {"Hola"}, "message": {"Hola"},
	}), cookie)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), `hx-get="/contact-form"`)
	assert.Contains(t, w.Body.String(), `hx-trigger="toast-refresh from:body"`)
}

func TestReloadRerunsPageLoad(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)
	env.clock.Advance(page.WelcomeDelay + 5*time.Second + toast.ExitAnimation)

	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/menu/toggle", nil), cookie)
	require.Contains(t, w.Body.String(), `"open":true`)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<nav id="mobile-nav">`)

	w = env.do(t, httptest.NewRequest(http.MethodPost, "/api/menu/toggle", nil), cookie)
	assert.Contains(t, w.Body.String(), `"open":true`)

	env.clock.Advance(page.WelcomeDelay)
	w = env.do(t, httptest.NewRequest(http.MethodGet, "/toasts", nil), cookie)
	assert.Contains(t, w.Body.String(), page.WelcomeTitle)
}

func TestPageRoutesNeedSession(t *testing.T) {
	env := newTestEnv(t)

	requests := []*http.Request{
		httptest.NewRequest(http.MethodGet, "/toasts", nil),
		httptest.NewRequest(http.MethodGet, "/ws", nil),
		httptest.NewRequest(http.MethodGet, "/contact-form", nil),
		postForm("/contact", url.Values{"name": {"Ana"}}),
		httptest.NewRequest(http.MethodPost, "/api/menu/toggle", nil),
	}
	for _, req := range requests {
		w := env.do(t, req)
		assert.Equal(t, http.StatusNotFound, w.Code, req.URL.Path)
	}

	stale := &http.Cookie{Name: pageCookie, Value: "gone"}
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/toasts", nil), stale)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Zero(t, env.srv.pages.Len())
}

func TestMenuToggle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.open(t)

	var resp struct {
		Open bool `json:"open"`
	}
	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/menu/toggle", nil), cookie)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Open)

	w = env.do(t, httptest.NewRequest(http.MethodPost, "/api/menu/follow", nil), cookie)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Open)
}

func TestTypewriterAPI(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/typewriter", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Words []string `json:"words"`
		Steps []struct {
			Text    string `json:"text"`
			DelayMS int64  `json:"delay_ms"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Rest", "Hacker", "Developer", "Security"}, resp.Words)
	require.NotEmpty(t, resp.Steps)
	assert.Equal(t, "R", resp.Steps[0].Text)
	assert.Equal(t, int64(100), resp.Steps[0].DelayMS)
}

func TestNavActiveAPI(t *testing.T) {
	env := newTestEnv(t)

	body := `{"scroll_y": 700, "section": "projects", "sections": [
		{"id": "home", "top": 0, "height": 600},
		{"id": "about", "top": 600, "height": 600},
		{"id": "projects", "top": 1200, "height": 800}
	]}`
	w := env.do(t, postJSON("/api/nav/active", body))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Active   string `json:"active"`
		ScrollTo *int   `json:"scroll_to"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "about", resp.Active)
	require.NotNil(t, resp.ScrollTo)
	assert.Equal(t, 1120, *resp.ScrollTo)

	w = env.do(t, postJSON("/api/nav/active", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRainAPI(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/rain", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 14, resp["font_size"])
	assert.EqualValues(t, 50, resp["interval_ms"])
}

func TestVisitorAPI(t *testing.T) {
	ipapi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"203.0.113.7","city":"Madrid","country_name":"Spain","org":"Example ISP"}`))
	}))
	defer ipapi.Close()

	env := newTestEnv(t, func(c *config.Config) { c.IPAPIURL = ipapi.URL })

	req := httptest.NewRequest(http.MethodGet, "/api/visitor?tz=Europe/Madrid", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0")
	w := env.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var report visitor.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "203.0.113.7", report.IP)
	assert.Equal(t, "Firefox", report.Browser)
	assert.Equal(t, "Linux", report.OS)
	assert.Equal(t, "Europe/Madrid", report.Timezone)
	assert.Equal(t, visitor.StatusConnected, report.Status)
}

func TestVisitorAPILookupFailure(t *testing.T) {
	ipapi := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ipapi.Close()

	env := newTestEnv(t, func(c *config.Config) { c.IPAPIURL = ipapi.URL })

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/visitor", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var report visitor.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, visitor.StatusError, report.Status)
	assert.Equal(t, "Error", report.IP)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.open(t)
	env.clock.Advance(page.WelcomeDelay)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portfolio_active_pages 1")
	assert.Contains(t, w.Body.String(), `portfolio_toasts_shown_total{kind="info"} 1`)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
