package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Router builds the HTTP routes. Everything under /api except logout
// requires a session whose user exists.
func Router(logger zerolog.Logger, h *Handler, authn Authenticator, users UserLookup) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireSession(authn, users))
			r.Post("/reports", h.CreateReport)
			r.Get("/reports/summary", h.ReportSummary)
			r.Post("/tasks", h.CreateTask)
			r.Get("/tasks", h.ListTasks)
		})
	})

	return router
}

// HTTPServer returns a server exposing the application's endpoints.
func (a *App) HTTPServer() *http.Server {
	h := NewHandler(a.Reports, a.Tasks, a.Sessions)
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           Router(a.log, h, a.Sessions, a.Store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info().Str("addr", srv.Addr).Msg("http server configured")
	return srv
}

// Serve runs srv until ctx is cancelled, then shuts it down, giving
// outstanding requests up to timeout to finish.
func Serve(ctx context.Context, srv *http.Server, timeout time.Duration, log zerolog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("shutdown initiated")
	}

	sctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return srv.Close()
	}
	return nil
}
