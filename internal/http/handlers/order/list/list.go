// Package list returns the caller's order history.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/pagination"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	ListMine(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error)
}

type Handler struct {
	log    *slog.Logger
	orders Service
}

func New(log *slog.Logger, orders Service) *Handler {
	return &Handler{log: log, orders: orders}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	page, limit := pagination.FromRequest(r)
	orders, total, err := h.orders.ListMine(r.Context(), userID, page, limit)
	if err != nil {
		log.Error("failed to list orders", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(pagination.Listing{
		Items: orders, Total: total, Page: page, Limit: limit,
	}))
}
