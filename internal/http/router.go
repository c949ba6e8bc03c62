package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
}

func NewRouter(sessions *Sessions, cfg RouterConfig, logger *zap.Logger) http.Handler {
	h := NewHandler(logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(sessions, logger))

		r.Get("/order-now", h.OrderNow)

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Get("/menu", h.GetMenu)
			r.Post("/menu/reload", h.ReloadMenu)
			r.Get("/notifications", h.Notifications)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth(logger))

				r.Post("/logout", h.Logout)
				r.Get("/me", h.Me)

				r.Route("/cart", func(r chi.Router) {
					r.Get("/", h.GetCart)
					r.Post("/items", h.AddItem)
					r.Patch("/items/{item_id}", h.ChangeQuantity)
					r.Delete("/items/{item_id}", h.RemoveItem)
				})

				r.Route("/checkout", func(r chi.Router) {
					r.Get("/", h.GetCheckout)
					r.Post("/", h.OpenCheckout)
					r.Delete("/", h.CancelCheckout)
					r.Post("/submit", h.SubmitCheckout)
					r.Post("/dismiss", h.DismissConfirmation)
				})

				r.Get("/orders/last", h.LastOrder)
			})
		})
	})

	return r
}
