// Package list returns the caller's wishlist with localized product
// data.
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
	List(ctx context.Context, userID, language string) ([]models.WishlistItem, error)
}

type Handler struct {
	log       *slog.Logger
	wishlists Service
}

func New(log *slog.Logger, wishlists Service) *Handler {
	return &Handler{log: log, wishlists: wishlists}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wishlist.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	items, err := h.wishlists.List(r.Context(), userID, r.URL.Query().Get("language"))
	if err != nil {
		log.Error("failed to list wishlist", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(items))
}
