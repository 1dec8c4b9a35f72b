// Package inspectsrv exposes a read-only JSON view of a specstore.Store
// over HTTP: a debug/introspection surface only, never part of the storage
// semantics (spec.md §1 excludes GUIs and higher-level tooling; this is
// neither — it's a thin reflector over the already-public Store API).
// Grounded on the teacher's cmd/zmux-server/main.go gin+cors+zap wiring,
// generalized from the teacher's mutable channel-CRUD API surface to a
// strictly read-only one: every route here is a GET.
package inspectsrv

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edirooss/scenecore/pkg/crate"
	"github.com/edirooss/scenecore/pkg/sdfpath"
	"github.com/edirooss/scenecore/pkg/specstore"
)

// Server wraps an *http.Server bound to gin routes over one Store. The
// wrapped Store may be swapped out from under a running Server by Swap, so
// a pkg/crate.WatchReload callback can hot-reload the introspected store
// without tearing the HTTP listener down.
type Server struct {
	log  *zap.Logger
	http *http.Server

	mu    sync.RWMutex // guards store
	store *specstore.Store
}

// New builds a Server bound to addr, serving store until the returned
// Server's Shutdown is called. log is named the way the teacher names its
// per-subsystem loggers; nil selects zap.NewNop().
func New(addr string, store *specstore.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("inspectsrv")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(zapLogger(log))

	s := &Server{
		log:   log,
		store: store,
	}
	registerRoutes(r, s)

	s.http = &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 15,
		ErrorLog:       zap.NewStdLog(log.Named("http").WithOptions(zap.AddCallerSkip(1))),
	}
	return s
}

// Swap replaces the Store a running Server answers queries against,
// intended to be passed directly as a crate.WatchReload onReload-adjacent
// callback once the caller has rebuilt a Store from the reloaded Document.
func (s *Server) Swap(store *specstore.Store) {
	s.mu.Lock()
	s.store = store
	s.mu.Unlock()
}

func (s *Server) current() *specstore.Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// ListenAndServe blocks serving HTTP until Shutdown is called or an
// unrecoverable listener error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("inspectsrv listening", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown() error {
	return s.http.Close()
}

// zapLogger mirrors the teacher's cmd/zmux-server/main.go ZapLogger
// middleware: one structured access-log line per request, status-bucketed
// into Info/Warn/Error.
func zapLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func registerRoutes(r *gin.Engine, s *Server) {
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/specs", s.handleListSpecs)
	r.GET("/specs/*path", s.handleGetSpec)
	r.GET("/timesamples/*path", s.handleTimeSamples)
}

type specSummary struct {
	Path     string `json:"path"`
	SpecType string `json:"specType"`
}

func (s *Server) handleListSpecs(c *gin.Context) {
	st := s.current()
	out := make([]specSummary, 0)
	st.Visit(func(p sdfpath.Path, t crate.SpecType) bool {
		out = append(out, specSummary{Path: p.String(), SpecType: t.String()})
		return true
	})
	c.Header("X-Total-Count", strconv.Itoa(len(out)))
	c.JSON(http.StatusOK, out)
}

// pathParam decodes the gin wildcard match for "/specs/*path" back into a
// scene path string. gin's *path wildcard always includes the leading "/",
// which sdfpath.Parse expects for an absolute path, so no trimming is
// needed for the common case; relative paths are reached by an explicit
// leading "./" in the URL.
func pathParam(c *gin.Context) (sdfpath.Path, error) {
	raw := c.Param("path")
	if after, ok := strings.CutPrefix(raw, "/./"); ok {
		raw = after
	}
	return sdfpath.Parse(raw)
}

func (s *Server) handleGetSpec(c *gin.Context) {
	p, err := pathParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	st := s.current()
	specType, ok := st.GetSpecType(p)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "no spec at " + p.String()})
		return
	}
	names, _ := st.List(p)
	fields := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := st.Get(p, name); ok {
			fields[name] = v.Interface()
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"path":     p.String(),
		"specType": specType.String(),
		"fields":   fields,
	})
}

func (s *Server) handleTimeSamples(c *gin.Context) {
	p, err := pathParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	st := s.current()
	times := st.ListTimeSamplesForPath(p)
	samples := make([]gin.H, 0, len(times))
	for _, t := range times {
		v, _ := st.QueryTimeSample(p, t)
		samples = append(samples, gin.H{"time": t, "value": v.Interface()})
	}
	c.Header("X-Total-Count", strconv.Itoa(len(samples)))
	c.JSON(http.StatusOK, samples)
}
