// Package adminlist is the admin order listing with a status filter.
package adminlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/pagination"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	ListAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
}

type Handler struct {
	log    *slog.Logger
	orders Service
}

func New(log *slog.Logger, orders Service) *Handler {
	return &Handler{log: log, orders: orders}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.adminlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := pagination.FromRequest(r)
	filter := models.OrderFilter{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}

	orders, total, err := h.orders.ListAll(r.Context(), filter)
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
