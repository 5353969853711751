// Package remove deletes one of the caller's addresses.
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
)

type Service interface {
	DeleteAddress(ctx context.Context, userID, addressID string) error
}

type Handler struct {
	log      *slog.Logger
	profiles Service
}

func New(log *slog.Logger, profiles Service) *Handler {
	return &Handler{log: log, profiles: profiles}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.address.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	if err := h.profiles.DeleteAddress(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		log.Warn("failed to delete address", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OK())
}
