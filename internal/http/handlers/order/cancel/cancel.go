// Package cancel lets a customer cancel an order that is still
// pending and unpaid.
package cancel

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
	Cancel(ctx context.Context, id, userID string) (*models.Order, error)
}

type Handler struct {
	log    *slog.Logger
	orders Service
}

func New(log *slog.Logger, orders Service) *Handler {
	return &Handler{log: log, orders: orders}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	order, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		log.Warn("failed to cancel order", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("cancelled order", slog.String("order_id", order.ID))
	render.JSON(w, r, response.OKWithData(order))
}
