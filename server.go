package main

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Zachkp/rest-portfolio/internal/clock"
	"github.com/Zachkp/rest-portfolio/internal/config"
	"github.com/Zachkp/rest-portfolio/internal/contact"
	"github.com/Zachkp/rest-portfolio/internal/effects"
	"github.com/Zachkp/rest-portfolio/internal/live"
	"github.com/Zachkp/rest-portfolio/internal/logging"
	"github.com/Zachkp/rest-portfolio/internal/metrics"
	"github.com/Zachkp/rest-portfolio/internal/nav"
	"github.com/Zachkp/rest-portfolio/internal/page"
	"github.com/Zachkp/rest-portfolio/internal/toast"
	"github.com/Zachkp/rest-portfolio/internal/visitor"
)

const pageCookie = "page_id"

// server wires the page widgets to HTTP.
type server struct {
	cfg      config.Config
	log      zerolog.Logger
	pages    *page.Registry
	sender   *contact.Sender
	lookup   *visitor.Client
	store    *visitor.Store
	feed     *live.Feed
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	admin    *adminAuth
}

type serverOption func(*serverOptions)

type serverOptions struct {
	clock clock.Clock
}

// withClock drives page timers and the contact send delay.
func withClock(c clock.Clock) serverOption {
	return func(o *serverOptions) { o.clock = c }
}

func newServer(cfg config.Config, store *visitor.Store, log zerolog.Logger, opts ...serverOption) *server {
	o := serverOptions{clock: clock.Real()}
	for _, opt := range opts {
		opt(&o)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	s := &server{
		cfg:      cfg,
		log:      log,
		store:    store,
		metrics:  m,
		registry: reg,
		lookup:   visitor.NewClient(cfg.IPAPIURL, cfg.LookupTimeout),
		admin:    newAdminAuth(cfg.Admin, log),
	}
	s.pages = page.NewRegistry(cfg.PageIdleTimeout,
		page.WithRegistryClock(o.clock),
		page.WithPageOptions(page.WithObserver(m)),
		page.WithHooks(m.PageOpened, m.PageClosed))
	s.sender = contact.NewSender(contact.NewMailer(cfg.SMTP),
		contact.WithClock(o.clock),
		contact.WithLogger(logging.Component(log, "contact")),
		contact.WithResultHook(m.Contact))
	s.feed = live.NewFeed(
		live.WithLogger(logging.Component(log, "live")),
		live.WithHooks(m.LiveConnected, m.LiveDisconnected))
	return s
}

func (s *server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	r.SetFuncMap(template.FuncMap{"safe": func(s string) template.HTML { return template.HTML(s) }})
	r.LoadHTMLGlob("templates/*")

	r.Static("/static", "./static")

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	tracked := r.Group("/")
	if s.store != nil {
		tracked.Use(visitorTrackingMiddleware(s.store, s.log))
	}
	tracked.GET("/", s.openPage, s.handleIndex)

	pg := r.Group("/", s.requirePage)
	pg.GET("/toasts", s.handleToasts)
	pg.POST("/toasts/:id/close", s.handleCloseToast)
	pg.GET("/ws", s.handleLive)
	pg.GET("/contact-form", s.handleContactForm)
	pg.POST("/contact", s.handleContact)
	pg.POST("/api/menu/toggle", s.handleMenuToggle)
	pg.POST("/api/menu/follow", s.handleMenuFollow)

	api := r.Group("/api")
	api.GET("/visitor", s.handleVisitor)
	api.GET("/typewriter", s.handleTypewriter)
	api.POST("/nav/active", s.handleNavActive)
	api.GET("/rain", s.handleRain)

	setupAdminRoutes(r, s)
	return r
}

// openPage attaches the visitor's page instance, opening one when the
// cookie is missing or stale. Only the page route opens pages.
func (s *server) openPage(c *gin.Context) {
	id, _ := c.Cookie(pageCookie)
	p, created := s.pages.Open(id)
	if created {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(pageCookie, p.ID, int(s.cfg.PageIdleTimeout.Seconds()), "/", "", false, true)
	}
	c.Set("page", p)
	c.Next()
}

// requirePage attaches an existing page instance and rejects requests
// that have none.
func (s *server) requirePage(c *gin.Context) {
	id, err := c.Cookie(pageCookie)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no page session"})
		return
	}
	p, ok := s.pages.Get(id)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "page session expired"})
		return
	}
	c.Set("page", p)
	c.Next()
}

func pageFrom(c *gin.Context) *page.Page {
	return c.MustGet("page").(*page.Page)
}

func (s *server) handleIndex(c *gin.Context) {
	p := pageFrom(c)
	p.Load()

	var board bytes.Buffer
	if err := p.Board.Render(&board); err != nil {
		s.log.Error().Err(err).Msg("render toast board")
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"aboutMeContent": AboutMe,
		"projects":       Projects,
		"links":          nav.Links,
		"typewriter":     s.cfg.TypewriterWords[0],
		"map":            s.cfg.Map,
		"toasts":         template.HTML(board.String()),
		"toastExitMS":    toast.ExitAnimation.Milliseconds(),
		"submitLabel":    p.Submit.Label(),
		"busy":           p.Submit.Busy(),
		"menuOpen":       p.Menu.Open(),
		"year":           time.Now().Year(),
	})
}

func (s *server) renderBoard(c *gin.Context, p *page.Page) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := p.Board.Render(c.Writer); err != nil {
		s.log.Error().Err(err).Msg("render toast board")
	}
}

func (s *server) handleToasts(c *gin.Context) {
	s.renderBoard(c, pageFrom(c))
}

func (s *server) handleCloseToast(c *gin.Context) {
	p := pageFrom(c)
	// closing an unknown or already removed toast is not an error
	p.CloseToast(c.Param("id"))
	s.renderBoard(c, p)
}

func (s *server) handleLive(c *gin.Context) {
	p := pageFrom(c)
	err := s.feed.Serve(c.Writer, c.Request, p.Board, func(cmd live.Command) {
		if cmd.Action == live.ActionClose {
			p.CloseToast(cmd.ID)
		}
	})
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade failed")
	}
}

func (s *server) handleContactForm(c *gin.Context) {
	p := pageFrom(c)
	c.HTML(http.StatusOK, "contact.html", gin.H{
		"title":       "Contacto",
		"submitLabel": p.Submit.Label(),
		"busy":        p.Submit.Busy(),
	})
}

func (s *server) handleContact(c *gin.Context) {
	p := pageFrom(c)

	var form contact.Form
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "contact-error.html", gin.H{"error": "Formulario no valido."})
		return
	}

	err := s.sender.Submit(p.Toasts, p.Submit, form)
	switch {
	case errors.Is(err, contact.ErrMissingFields):
		c.HTML(http.StatusUnprocessableEntity, "contact.html", gin.H{
			"title":       "Contacto",
			"form":        form,
			"submitLabel": p.Submit.Label(),
		})
	case errors.Is(err, contact.ErrBusy):
		c.HTML(http.StatusConflict, "contact-error.html", gin.H{"error": "Ya hay un mensaje enviandose."})
	default:
		// the form is reset; the outcome arrives as a toast
		c.HTML(http.StatusAccepted, "contact.html", gin.H{
			"title":       "Contacto",
			"submitLabel": p.Submit.Label(),
			"busy":        p.Submit.Busy(),
		})
	}
}

func (s *server) handleMenuToggle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"open": pageFrom(c).Menu.Toggle()})
}

func (s *server) handleMenuFollow(c *gin.Context) {
	p := pageFrom(c)
	p.Menu.Follow()
	c.JSON(http.StatusOK, gin.H{"open": p.Menu.Open()})
}

func (s *server) handleVisitor(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.LookupTimeout)
	defer cancel()

	info, err := s.lookup.Lookup(ctx, c.ClientIP())
	if err != nil {
		s.metrics.Lookup("error")
		s.log.Warn().Err(err).Msg("visitor lookup failed")
	} else {
		s.metrics.Lookup("ok")
	}
	c.JSON(http.StatusOK, visitor.NewReport(c.GetHeader("User-Agent"), c.Query("tz"), info, err))
}

func (s *server) handleTypewriter(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"words": s.cfg.TypewriterWords,
		"steps": effects.Cycle(s.cfg.TypewriterWords),
	})
}

type navRequest struct {
	ScrollY  int           `json:"scroll_y"`
	Sections []nav.Section `json:"sections" binding:"required"`
	Section  string        `json:"section"`
}

func (s *server) handleNavActive(c *gin.Context) {
	var req navRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	resp := gin.H{"active": nav.Active(req.ScrollY, req.Sections)}
	if req.Section != "" {
		if top, ok := nav.ScrollTarget(req.Sections, req.Section); ok {
			resp["scroll_to"] = top
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *server) handleRain(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"font_size":   effects.FontSize,
		"interval_ms": effects.FrameInterval.Milliseconds(),
		"glyphs":      string(effects.Glyphs),
		"background":  effects.Background.CSS(),
		"white":       effects.White.CSS(),
		"bright":      effects.Bright.CSS(),
	})
}
