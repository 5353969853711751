// Package adminlist is the admin subscription listing with a status
// filter.
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
	ListAll(ctx context.Context, status string, page, limit int) ([]models.Subscription, int64, error)
}

type Handler struct {
	log           *slog.Logger
	subscriptions Service
}

func New(log *slog.Logger, subscriptions Service) *Handler {
	return &Handler{log: log, subscriptions: subscriptions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.adminlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := pagination.FromRequest(r)
	subs, total, err := h.subscriptions.ListAll(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(pagination.Listing{
		Items: subs, Total: total, Page: page, Limit: limit,
	}))
}
