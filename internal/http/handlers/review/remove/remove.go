// Package remove deletes a review, by its author or an admin.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	Delete(ctx context.Context, id, userID string, isAdmin bool) error
}

type Handler struct {
	log     *slog.Logger
	reviews Service
}

func New(log *slog.Logger, reviews Service) *Handler {
	return &Handler{log: log, reviews: reviews}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	role, _ := middlewarectx.RoleFromContext(r.Context())

	if err := h.reviews.Delete(r.Context(), chi.URLParam(r, "id"), userID, role == models.RoleAdmin); err != nil {
		log.Warn("failed to delete review", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OK())
}
