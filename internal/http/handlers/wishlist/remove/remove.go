// Package remove takes a product off the caller's wishlist.
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
	Remove(ctx context.Context, userID, productID string) error
}

type Handler struct {
	log       *slog.Logger
	wishlists Service
}

func New(log *slog.Logger, wishlists Service) *Handler {
	return &Handler{log: log, wishlists: wishlists}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wishlist.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	productID := chi.URLParam(r, "productId")
	userID, _ := middlewarectx.UserIDFromContext(r.Context())

	if err := h.wishlists.Remove(r.Context(), userID, productID); err != nil {
		log.Warn("failed to remove wishlist item", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OK())
}
