package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"timesheet/internal/auth"
	"timesheet/internal/domain"
)

// requestLogger attaches a request-scoped logger to the context and logs one
// line per request once the handler returns.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_ip", r.RemoteAddr).
				Logger()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))

			reqLogger.Info().
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (int64, error)
}

// UserLookup resolves the user a session belongs to.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (domain.User, error)
}

// requireSession rejects requests without a valid session or whose user no
// longer exists, before any request input is looked at. The caller's id is
// stored in the context otherwise.
func requireSession(a Authenticator, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("session rejected")
				writeError(w, r, err)
				return
			}
			if _, err := users.GetUser(r.Context(), id); err != nil {
				writeError(w, r, err)
				return
			}
			ctx := auth.WithUserID(r.Context(), id)
			l := zerolog.Ctx(ctx).With().Int64("user_id", id).Logger()
			next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
		})
	}
}
