// Package contains reports whether a product sits on the caller's wishlist.
package contains

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
	Contains(ctx context.Context, userID, productID string) (bool, error)
}

type Handler struct {
	log       *slog.Logger
	wishlists Service
}

func New(log *slog.Logger, wishlists Service) *Handler {
	return &Handler{log: log, wishlists: wishlists}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.wishlist.contains"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	productID := chi.URLParam(r, "productId")
	userID, _ := middlewarectx.UserIDFromContext(r.Context())

	found, err := h.wishlists.Contains(r.Context(), userID, productID)
	if err != nil {
		log.Error("failed to check wishlist", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]bool{"inWishlist": found}))
}
