// Package list returns the caller's address book.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	ListAddresses(ctx context.Context, userID string) ([]models.Address, error)
}

type Handler struct {
	log      *slog.Logger
	profiles Service
}

func New(log *slog.Logger, profiles Service) *Handler {
	return &Handler{log: log, profiles: profiles}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.address.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	addresses, err := h.profiles.ListAddresses(r.Context(), userID)
	if err != nil {
		log.Error("failed to list addresses", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(addresses))
}
