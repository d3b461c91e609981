// admin.go - privacy-conscious admin dashboard over the visitor log
package main

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Zachkp/rest-portfolio/internal/config"
)

const adminCookie = "admin_token"

type adminAuth struct {
	token string
	creds config.AdminConfig
	log   zerolog.Logger
}

func newAdminAuth(creds config.AdminConfig, log zerolog.Logger) *adminAuth {
	a := &adminAuth{token: generateAdminToken(), creds: creds, log: log}

	log.Info().Msg("Admin access available at: /admin/login")
	if gin.Mode() == gin.DebugMode {
		log.Debug().Str("token", a.token).Msg("Admin token (dev only)")
	}
	if creds.Password == config.Default().Admin.Password {
		log.Warn().Msg("Using default admin password. Set ADMIN_PASSWORD environment variable.")
	}
	return a
}

func generateAdminToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic("failed to generate admin token: " + err.Error())
	}
	return hex.EncodeToString(bytes)
}

func (a *adminAuth) valid(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(a.creds.Username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(a.creds.Password))
	return u&p == 1
}

// middleware checks the admin cookie.
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Setup all admin routes
func setupAdminRoutes(r *gin.Engine, s *server) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacidad",
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		hashed := s.hashClient(c)
		if s.admin.valid(c.PostForm("username"), c.PostForm("password")) {
			c.SetCookie(adminCookie, s.admin.token, 3600*24, "/admin", "", false, true)
			s.log.Info().Str("from", hashed).Msg("Admin login successful")
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
		s.log.Warn().Str("from", hashed).Msg("Failed admin login attempt")
		c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
			"error": "Invalid credentials",
		})
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(s.admin.middleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		if s.store == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{"error": "Visitor tracking disabled"})
			return
		}
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			s.log.Error().Err(err).Msg("Error loading admin stats")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
			"pages": s.pages.Len(),
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		if s.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visitor tracking disabled"})
			return
		}
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		if s.store == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{"error": "Visitor tracking disabled"})
			return
		}
		visits, err := s.store.Recent(c.Request.Context(), 200)
		if err != nil {
			s.log.Error().Err(err).Msg("Error loading visitors")
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visits,
		})
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visitor tracking disabled"})
			return
		}
		n, err := s.store.Cleanup(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		if s.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "visitor tracking disabled"})
			return
		}
		stats, err := s.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		s.log.Info().Str("by", s.hashClient(c)).Msg("Admin stats exported")
		c.JSON(http.StatusOK, stats)
	})
}

// hashClient is the loggable form of the caller's address.
func (s *server) hashClient(c *gin.Context) string {
	if s.store == nil {
		return "-"
	}
	return s.store.HashIP(c.ClientIP())
}
