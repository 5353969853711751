// Package list is the public audio catalog. File URLs are only
// exposed for preview tracks.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	ListPublic(ctx context.Context, category string) ([]models.AudioContent, error)
}

type Handler struct {
	log   *slog.Logger
	audio Service
}

func New(log *slog.Logger, audio Service) *Handler {
	return &Handler{log: log, audio: audio}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.audio.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.audio.ListPublic(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		log.Error("failed to list audio content", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(items))
}
