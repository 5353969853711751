// Package read returns one order. Customers see only their own,
// admins see any.
package read

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
	Get(ctx context.Context, id, userID string, isAdmin bool) (*models.Order, error)
}

type Handler struct {
	log    *slog.Logger
	orders Service
}

func New(log *slog.Logger, orders Service) *Handler {
	return &Handler{log: log, orders: orders}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	role, _ := middlewarectx.RoleFromContext(r.Context())

	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"), userID, role == models.RoleAdmin)
	if err != nil {
		log.Warn("failed to get order", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(order))
}
