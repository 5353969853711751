// Package listkeys is the admin access key inventory, filterable by
// redemption state.
package listkeys

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	ListKeys(ctx context.Context, redeemed *bool) ([]models.AudioAccessKey, error)
}

type Handler struct {
	log   *slog.Logger
	audio Service
}

func New(log *slog.Logger, audio Service) *Handler {
	return &Handler{log: log, audio: audio}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.audio.listkeys"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var redeemed *bool
	if raw := r.URL.Query().Get("redeemed"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			redeemed = &v
		}
	}

	keys, err := h.audio.ListKeys(r.Context(), redeemed)
	if err != nil {
		log.Error("failed to list access keys", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(keys))
}
