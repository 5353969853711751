// Package read serves one catalog product in the requested language.
package read

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
	Get(ctx context.Context, id, language string) (*models.Product, error)
}

type Handler struct {
	log     *slog.Logger
	catalog Service
}

func New(log *slog.Logger, catalog Service) *Handler {
	return &Handler{log: log, catalog: catalog}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("language"))
	if err != nil {
		log.Warn("failed to get product", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(product))
}
