// Package customers serves the admin customer roster with spend totals.
package customers

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
	Customers(ctx context.Context, page, limit int) ([]models.CustomerSummary, int64, error)
}

type Handler struct {
	log       *slog.Logger
	analytics Service
}

func New(log *slog.Logger, analytics Service) *Handler {
	return &Handler{log: log, analytics: analytics}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.customers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := pagination.FromRequest(r)
	customers, total, err := h.analytics.Customers(r.Context(), page, limit)
	if err != nil {
		log.Error("failed to list customers", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(pagination.Listing{
		Items: customers,
		Total: total,
		Page:  page,
		Limit: limit,
	}))
}
