// Package stream authorizes playback of one track. Previews stream
// for anyone; everything else is gated by the caller's plan.
package stream

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
	"github.com/vmcandles/commerce-api/internal/services"
)

type Service interface {
	Stream(ctx context.Context, audioID, userID string) (*services.StreamGrant, error)
}

type Handler struct {
	log   *slog.Logger
	audio Service
}

func New(log *slog.Logger, audio Service) *Handler {
	return &Handler{log: log, audio: audio}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.audio.stream"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// Empty when the request is anonymous, OptionalAuth lets those
	// through for previews.
	userID, _ := middlewarectx.UserIDFromContext(r.Context())

	grant, err := h.audio.Stream(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		log.Warn("stream denied", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(grant))
}
