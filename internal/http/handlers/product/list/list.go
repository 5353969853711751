// Package list serves the public catalog listing with category,
// featured and stock filters. Names come back in the requested
// language.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/pagination"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
}

type Handler struct {
	log     *slog.Logger
	catalog Service
}

func New(log *slog.Logger, catalog Service) *Handler {
	return &Handler{log: log, catalog: catalog}
}

func boolParam(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := pagination.FromRequest(r)
	filter := models.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Featured: boolParam(r, "featured"),
		InStock:  boolParam(r, "inStock"),
		Language: r.URL.Query().Get("language"),
		SortBy:   r.URL.Query().Get("sortBy"),
		Page:     page,
		Limit:    limit,
	}

	products, total, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list products", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(pagination.Listing{
		Items: products, Total: total, Page: page, Limit: limit,
	}))
}
