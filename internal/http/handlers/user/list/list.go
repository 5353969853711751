// Package list is the admin user listing.
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
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
}

type Handler struct {
	log   *slog.Logger
	users Service
}

func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, limit := pagination.FromRequest(r)
	users, total, err := h.users.List(r.Context(), page, limit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(pagination.Listing{
		Items: users, Total: total, Page: page, Limit: limit,
	}))
}
