// Package server exposes the site's JSON API: the now-playing widget feed,
// the aggregated repository collection and its CORS relay, the socials
// directory with per-platform stats, Discord presence, theme selection, and
// the static reference data.
package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	clog "github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdwk/pdwk-dev/internal/content"
	"github.com/pdwk/pdwk-dev/internal/gitrepos"
	"github.com/pdwk/pdwk-dev/internal/lanyard"
	"github.com/pdwk/pdwk-dev/internal/nowplaying"
	"github.com/pdwk/pdwk-dev/internal/socials"
	"github.com/pdwk/pdwk-dev/internal/theme"
)

// Deps collects everything the API serves from.
type Deps struct {
	Log        *clog.Logger
	NowPlaying *nowplaying.Store
	Repos      *gitrepos.Aggregator
	Sources    []gitrepos.Source
	Socials    *socials.Registry
	Lanyard    *lanyard.Client
	Themes     *theme.Store
	Catalog    *content.Catalog
	Tracker    *Tracker
	AdminToken string
}

// Server wires the handlers onto a gin engine.
type Server struct {
	deps    Deps
	sources map[gitrepos.Platform]gitrepos.Source
}

func New(deps Deps) *Server {
	byPlatform := make(map[gitrepos.Platform]gitrepos.Source, len(deps.Sources))
	for _, src := range deps.Sources {
		byPlatform[src.Platform()] = src
	}
	return &Server{deps: deps, sources: byPlatform}
}

// Router builds the engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	if s.deps.Tracker != nil {
		r.Use(s.deps.Tracker.Middleware())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/now-playing", s.handleNowPlaying)
		api.GET("/repos", s.handleRepos)
		api.POST("/repos", s.handleRepoRelay)
		api.GET("/socials", s.handleSocials)
		api.GET("/socials/:platform/stats", s.handleSocialStats)
		api.GET("/presence", s.handlePresence)
		api.GET("/theme", s.handleGetTheme)
		api.PUT("/theme", s.handleSetTheme)
		api.GET("/themes", s.handleListThemes)
		api.GET("/links", s.handleLinks)
		api.GET("/interests", s.handleInterests)
		api.GET("/workspace", s.handleWorkspace)
		api.GET("/profile", s.handleProfile)
		api.GET("/admin/stats", s.requireAdmin, s.handleAdminStats)
	}
	return r
}

func (s *Server) handleNowPlaying(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.NowPlaying.View())
}

func (s *Server) handleRepos(c *gin.Context) {
	s.deps.Repos.EnsureLoaded(c.Request.Context())

	q := gitrepos.Query{
		Account:  c.Query("account"),
		Language: c.Query("language"),
		Sort:     gitrepos.SortKey(c.Query("sort")),
	}
	if sortParam := c.Query("sort"); sortParam != "" && !q.Sort.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key: " + sortParam})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"repos":     s.deps.Repos.Query(q),
		"accounts":  s.deps.Repos.Accounts(),
		"languages": s.deps.Repos.Languages(),
	})
}

type relayRequest struct {
	Platform string `json:"platform" binding:"required"`
	Username string `json:"username" binding:"required"`
}

// handleRepoRelay forwards a platform listing request and returns the
// upstream body untouched. It exists so browsers can reach APIs that do not
// send CORS headers.
func (s *Server) handleRepoRelay(c *gin.Context) {
	var req relayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform and username are required"})
		return
	}

	platform := gitrepos.Platform(req.Platform)
	src, ok := s.sources[platform]
	if !platform.IsValid() || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported platform: " + req.Platform})
		return
	}

	body, err := src.RawUserRepos(c.Request.Context(), req.Username)
	if err != nil {
		s.deps.Log.Warn("repo relay failed", "platform", req.Platform, "username", req.Username, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

type socialEntry struct {
	content.SocialAccount
	DisplayName string `json:"displayName"`
	ShowStats   bool   `json:"showStats"`
}

func (s *Server) handleSocials(c *gin.Context) {
	accounts := s.deps.Catalog.Socials()
	out := make([]socialEntry, 0, len(accounts))
	for _, acc := range accounts {
		p := socials.Platform(acc.Platform)
		out = append(out, socialEntry{
			SocialAccount: acc,
			DisplayName:   s.deps.Socials.DisplayName(p),
			ShowStats:     s.deps.Socials.ShouldFetch(p),
		})
	}
	c.JSON(http.StatusOK, gin.H{"socials": out})
}

func (s *Server) handleSocialStats(c *gin.Context) {
	p := socials.Platform(c.Param("platform"))
	if !p.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + c.Param("platform")})
		return
	}

	acc, ok := s.deps.Catalog.SocialByPlatform(string(p))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no account configured for platform: " + string(p)})
		return
	}

	stats := s.deps.Socials.Fetch(c.Request.Context(), p, acc.Name)
	c.JSON(http.StatusOK, gin.H{
		"platform": p,
		"username": acc.Name,
		"stats":    stats,
	})
}

// handlePresence serves the Discord presence. An unreachable presence API
// degrades to an offline view rather than an error.
func (s *Server) handlePresence(c *gin.Context) {
	p, err := s.deps.Lanyard.Fetch(c.Request.Context())
	if err != nil {
		s.deps.Log.Warn("presence fetch failed", "err", err)
		c.JSON(http.StatusOK, lanyard.Presence{Status: "offline"})
		return
	}
	c.JSON(http.StatusOK, p)
}

type themeView struct {
	Theme       theme.Theme `json:"theme"`
	MarkerClass string      `json:"markerClass"`
	Chrome      string      `json:"chrome"`
}

func (s *Server) handleGetTheme(c *gin.Context) {
	current := s.deps.Themes.Current()
	c.JSON(http.StatusOK, themeView{
		Theme:       current,
		MarkerClass: current.MarkerClass(),
		Chrome:      current.ChromeColor(),
	})
}

func (s *Server) handleSetTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "theme is required"})
		return
	}

	tr, err := s.deps.Themes.Set(theme.Theme(req.Theme))
	if err != nil {
		if errors.Is(err, theme.ErrUnknownTheme) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.deps.Log.Error("persisting theme failed", "theme", req.Theme, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist theme"})
		return
	}
	c.JSON(http.StatusOK, tr)
}

func (s *Server) handleListThemes(c *gin.Context) {
	all := theme.All()
	out := make([]themeView, 0, len(all))
	for _, t := range all {
		out = append(out, themeView{Theme: t, MarkerClass: t.MarkerClass(), Chrome: t.ChromeColor()})
	}
	c.JSON(http.StatusOK, gin.H{"themes": out})
}

func (s *Server) handleLinks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"links": s.deps.Catalog.Links()})
}

func (s *Server) handleInterests(c *gin.Context) {
	kind := content.Kind(c.DefaultQuery("kind", string(content.KindGames)))
	if !kind.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind: " + string(kind)})
		return
	}

	sortBy := content.SortBy(c.DefaultQuery("sort", string(content.SortByName)))
	if !sortBy.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key: " + string(sortBy)})
		return
	}
	order := content.SortOrder(c.DefaultQuery("order", string(content.OrderAsc)))
	if !order.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort order: " + string(order)})
		return
	}

	items := content.FilterInterests(s.deps.Catalog.Interests(kind), c.Query("q"))
	items = content.SortInterests(items, sortBy, order)
	c.JSON(http.StatusOK, gin.H{"kind": kind, "items": items})
}

func (s *Server) handleWorkspace(c *gin.Context) {
	q := c.Query("q")
	c.JSON(http.StatusOK, gin.H{
		"hardware": content.SearchHardware(s.deps.Catalog.Hardware(), q),
		"software": content.SearchSoftware(s.deps.Catalog.Software(), q),
	})
}

func (s *Server) handleProfile(c *gin.Context) {
	c.JSON(http.StatusOK, content.SiteProfile())
}

// requireAdmin guards the admin endpoints with the configured bearer token.
// When no token is configured the endpoints are disabled entirely.
func (s *Server) requireAdmin(c *gin.Context) {
	if s.deps.AdminToken == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "admin endpoints disabled"})
		return
	}

	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.deps.AdminToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) handleAdminStats(c *gin.Context) {
	stats, err := s.deps.Tracker.Stats()
	if err != nil {
		s.deps.Log.Error("loading visitor stats failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// corsMiddleware lets the browser frontend call the API cross-origin; the
// relay role requires it.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
