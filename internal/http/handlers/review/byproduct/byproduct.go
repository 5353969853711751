// Package byproduct lists a product's reviews with rating stats.
package byproduct

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	ListByProduct(ctx context.Context, productID string) ([]models.Review, *models.ReviewStats, error)
}

type Handler struct {
	log     *slog.Logger
	reviews Service
}

func New(log *slog.Logger, reviews Service) *Handler {
	return &Handler{log: log, reviews: reviews}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.byproduct"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	reviews, stats, err := h.reviews.ListByProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to list reviews", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"reviews": reviews,
		"stats":   stats,
	}))
}
