package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/foodie/internal/app"
	"go.uber.org/zap"
)

const SessionCookie = "foodie_session"

type sessionKey struct{}

// SessionMiddleware attaches the caller's App to the request context, creating a session
// (and its cookie) when the cookie is missing or unknown.
func SessionMiddleware(sessions *Sessions, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				if a, ok := sessions.Get(cookie.Value); ok {
					next.ServeHTTP(w, r.WithContext(withSession(r.Context(), a)))
					return
				}
			}

			a, err := sessions.Create(r.Context())
			if errors.Is(err, ErrSessionLimit) {
				respondError(w, logger, http.StatusServiceUnavailable, "session_limit", "too many active sessions, try again later")
				return
			}
			if err != nil {
				logger.Error("session create failed", zap.Error(err))
				respondError(w, logger, http.StatusInternalServerError, "internal_error", "could not start session")
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    a.ID(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), a)))
		})
	}
}

// RequireAuth rejects requests whose session has no logged-in user.
func RequireAuth(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a := sessionFromContext(r.Context())
			if a == nil || !a.IsAuthenticated(r.Context()) {
				respondError(w, logger, http.StatusUnauthorized, "unauthorized", "login required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request with its status and latency.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

func withSession(ctx context.Context, a *app.App) context.Context {
	return context.WithValue(ctx, sessionKey{}, a)
}

func sessionFromContext(ctx context.Context) *app.App {
	a, _ := ctx.Value(sessionKey{}).(*app.App)
	return a
}
