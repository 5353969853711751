// Package inventory serves the stock report for every product.
package inventory

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	Inventory(ctx context.Context) ([]models.InventoryItem, *models.InventoryStats, error)
}

type Handler struct {
	log       *slog.Logger
	analytics Service
}

func New(log *slog.Logger, analytics Service) *Handler {
	return &Handler{log: log, analytics: analytics}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.inventory"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, stats, err := h.analytics.Inventory(r.Context())
	if err != nil {
		log.Error("failed to build inventory report", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"items": items,
		"stats": stats,
	}))
}
