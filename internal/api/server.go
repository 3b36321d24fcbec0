// Package api serves the optional metrics and health listener.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oremus-labs/exaroton-console/internal/logutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP server wiring.
type Options struct {
	Server  string
	Session string
}

// Server wraps the Gin engine.
type Server struct {
	engine *gin.Engine
}

// NewServer exposes /healthz and /metrics.
func NewServer(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), metricsMiddleware())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"server":  opts.Server,
			"session": opts.Session,
		})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{engine: engine}
}

// Engine exposes the underlying Gin engine for testing.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start launches the listener in the background. Listen failures are logged
// and do not affect the console session.
func (s *Server) Start(addr string) *http.Server {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutil.Error("metrics listener stopped", err, map[string]interface{}{"addr": addr})
		}
	}()
	return srv
}
