// Package read returns one audio track's metadata.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	GetPublic(ctx context.Context, id string) (*models.AudioContent, error)
}

type Handler struct {
	log   *slog.Logger
	audio Service
}

func New(log *slog.Logger, audio Service) *Handler {
	return &Handler{log: log, audio: audio}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.audio.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	audio, err := h.audio.GetPublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("failed to get audio content", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(audio))
}
