package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shpitdev/vc-enricher/internal/enrich"
)

const shutdownTimeout = 10 * time.Second

// NewRouter wires the routes and middleware.
func NewRouter(enricher enrich.Enricher, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	h := NewHandler(enricher, log)

	r := gin.New()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/healthz", h.Health)
	r.POST("/enrich", h.Enrich)
	return r
}

// Server is the HTTP front end of the pipeline.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

func NewServer(addr string, enricher enrich.Enricher, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(enricher, log),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
