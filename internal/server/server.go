// Package server exposes the local record store and sync operations as
// a JSON API for the browser UI and CI jobs.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/metastore-labs/metasync/internal/store"
	"github.com/metastore-labs/metasync/internal/syncer"
	"github.com/metastore-labs/metasync/pkg/logging"
)

// Options configures the API server.
type Options struct {
	// Token guards /api routes when non-empty. Health probes are always
	// open.
	Token string
	// AllowedOrigins for browser requests. Empty allows none.
	AllowedOrigins []string
	// Mutation applied when generating URNs for created records.
	Mutation string
}

// Server serves the metadata management API.
type Server struct {
	engine *gin.Engine
	cors   *cors.Cors

	records *store.Store
	sync    *syncer.Syncer
	opts    Options
}

// New builds the API server and its routes.
func New(records *store.Store, sync *syncer.Syncer, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		cors: cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}),
		records: records,
		sync:    sync,
		opts:    opts,
	}

	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/readyz", s.ready)

	api := s.engine.Group("/api/v1", tokenAuth(s.opts.Token))
	api.GET("/kinds", s.listKinds)
	api.GET("/records", s.listRecords)
	api.POST("/records", s.createRecord)
	api.GET("/records/:urn", s.getRecord)
	api.PUT("/records/:urn", s.updateRecord)
	api.DELETE("/records/:urn", s.deleteRecord)
	api.POST("/diff", s.diff)
	api.POST("/pull", s.pull)
	api.POST("/push", s.push)
}

// Handler returns the full middleware chain, CORS outermost.
func (s *Server) Handler() http.Handler {
	return s.cors.Handler(s.engine)
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("API server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
