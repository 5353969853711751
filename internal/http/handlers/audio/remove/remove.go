// Package remove deletes an audio library track.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
)

type Service interface {
	DeleteContent(ctx context.Context, id string) error
}

type Handler struct {
	log   *slog.Logger
	audio Service
}

func New(log *slog.Logger, audio Service) *Handler {
	return &Handler{log: log, audio: audio}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.audio.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.audio.DeleteContent(r.Context(), id); err != nil {
		log.Warn("failed to delete audio content", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("deleted audio content", slog.String("audio_id", id))
	render.JSON(w, r, response.OK())
}
