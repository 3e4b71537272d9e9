package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter builds the REST router.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Post("/upload", h.Upload)
		r.Post("/load-sample", h.LoadSample)
		r.Get("/summary", h.DataSummary)

		r.Post("/process", h.Process)
		r.Get("/status", h.Status)
		r.Get("/results", h.Results)

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", h.Quotations)
			r.Post("/batch-approve", h.BatchApprove)
			r.Put("/{id}", h.UpdateQuotation)
			r.Post("/{id}/approve", h.Approve)
		})

		r.Get("/export", h.Export)
		r.Get("/emails", h.Emails)
		r.Get("/llm-logs", h.PricingLog)
	})

	return r
}

// Server wraps the HTTP server with graceful shutdown.
type Server struct {
	srv *http.Server
}

// NewServer binds the router to the configured port.
func NewServer(h *Handler, port int) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("api: listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	zap.L().Info("api: shutting down")
	return s.srv.Shutdown(shutdownCtx)
}
