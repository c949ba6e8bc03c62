package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/foodie/internal/app"
	"github.com/nikolayk812/foodie/internal/checkout"
	"github.com/nikolayk812/foodie/internal/domain"
	"go.uber.org/zap"
)

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := sessionFromContext(r.Context()).Dispatch(r.Context(), app.Login{Email: req.Email, Password: req.Password})
	if err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapUserToDTO(res.User))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := sessionFromContext(r.Context()).Dispatch(r.Context(), app.Logout{}); err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := sessionFromContext(r.Context()).CurrentUser(r.Context())
	if !ok {
		respondError(w, h.logger, http.StatusUnauthorized, "unauthorized", "login required")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapUserToDTO(user))
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_category", err.Error())
		return
	}

	a := sessionFromContext(r.Context())
	items := a.Menu(category, r.URL.Query().Get("q"))

	respondJSON(w, h.logger, http.StatusOK, mapMenuToDTO(items, a.OrderingEnabled()))
}

func (h *Handler) ReloadMenu(w http.ResponseWriter, r *http.Request) {
	a := sessionFromContext(r.Context())
	if _, err := a.Dispatch(r.Context(), app.ReloadMenu{}); err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapMenuToDTO(a.Menu(domain.CategoryAll, ""), a.OrderingEnabled()))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, mapCartToDTO(sessionFromContext(r.Context()).Cart()))
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ItemID <= 0 {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_item_id", "item_id must be positive")
		return
	}

	a := sessionFromContext(r.Context())
	if _, err := a.Dispatch(r.Context(), app.AddItem{ItemID: req.ItemID}); err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, mapCartToDTO(a.Cart()))
}

func (h *Handler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemIDParam(w, r)
	if !ok {
		return
	}

	var req ChangeQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a := sessionFromContext(r.Context())
	if _, err := a.Dispatch(r.Context(), app.ChangeQuantity{ItemID: itemID, Delta: req.Delta}); err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapCartToDTO(a.Cart()))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := h.itemIDParam(w, r)
	if !ok {
		return
	}

	a := sessionFromContext(r.Context())
	if _, err := a.Dispatch(r.Context(), app.RemoveItem{ItemID: itemID}); err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapCartToDTO(a.Cart()))
}

func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	a := sessionFromContext(r.Context())

	var confirmation *checkout.Confirmation
	if c, ok := a.Confirmation(); ok {
		confirmation = &c
	}

	respondJSON(w, h.logger, http.StatusOK, mapCheckoutToDTO(a.CheckoutState(), confirmation))
}

func (h *Handler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	a := sessionFromContext(r.Context())

	res, err := a.Dispatch(r.Context(), app.OpenCheckout{})
	if err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	dto := mapCheckoutToDTO(a.CheckoutState(), nil)
	dto.Form = &FormDTO{Name: res.Form.Name}
	respondJSON(w, h.logger, http.StatusOK, dto)
}

func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	a := sessionFromContext(r.Context())
	if _, err := a.Dispatch(r.Context(), app.CancelCheckout{}); err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapCheckoutToDTO(a.CheckoutState(), nil))
}

func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	a := sessionFromContext(r.Context())
	res, err := a.Dispatch(r.Context(), app.SubmitCheckout{
		Form: checkout.Form{
			Name:    req.Name,
			Phone:   req.Phone,
			Email:   req.Email,
			Address: req.Address,
			Payment: domain.PaymentMethod(req.Payment),
		},
		Async: req.Async,
	})
	if err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	if req.Async {
		respondJSON(w, h.logger, http.StatusAccepted, mapCheckoutToDTO(a.CheckoutState(), nil))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapCheckoutToDTO(a.CheckoutState(), &res.Confirmation))
}

func (h *Handler) DismissConfirmation(w http.ResponseWriter, r *http.Request) {
	a := sessionFromContext(r.Context())
	if _, err := a.Dispatch(r.Context(), app.DismissConfirmation{}); err != nil {
		handleAppError(w, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapCheckoutToDTO(a.CheckoutState(), nil))
}

func (h *Handler) LastOrder(w http.ResponseWriter, r *http.Request) {
	order, found, err := sessionFromContext(r.Context()).LastOrder(r.Context())
	if err != nil {
		handleAppError(w, h.logger, err)
		return
	}
	if !found {
		respondError(w, h.logger, http.StatusNotFound, "not_found", "no orders yet")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, mapOrderToDTO(order))
}

func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, mapToastsToDTO(sessionFromContext(r.Context()).Notifications()))
}

// OrderNow sends logged-in users to the dashboard and everyone else to the login page.
func (h *Handler) OrderNow(w http.ResponseWriter, r *http.Request) {
	target := "/login"
	if sessionFromContext(r.Context()).IsAuthenticated(r.Context()) {
		target = "/dashboard"
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) itemIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_item_id", "item_id must be a positive integer")
		return 0, false
	}
	return itemID, true
}
