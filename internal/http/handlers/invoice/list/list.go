// Package list is the admin invoice listing.
package list

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
	List(ctx context.Context, page, limit int) ([]models.Invoice, int64, error)
}

type Handler struct {
	log      *slog.Logger
	invoices Service
}

func New(log *slog.Logger, invoices Service) *Handler {
	return &Handler{log: log, invoices: invoices}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := pagination.FromRequest(r)
	invoices, total, err := h.invoices.List(r.Context(), page, limit)
	if err != nil {
		log.Error("failed to list invoices", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(pagination.Listing{
		Items: invoices, Total: total, Page: page, Limit: limit,
	}))
}
