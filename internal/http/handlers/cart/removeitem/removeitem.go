// Package removeitem drops one line from the caller's cart.
package removeitem

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	RemoveItem(ctx context.Context, userID, itemID string) (*models.Cart, error)
}

type Handler struct {
	log   *slog.Logger
	carts Service
}

func New(log *slog.Logger, carts Service) *Handler {
	return &Handler{log: log, carts: carts}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.cart.removeitem"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	cart, err := h.carts.RemoveItem(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("failed to remove cart item", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(cart))
}
