// Package library returns the audio catalog annotated with what the
// caller's subscription or access key unlocks.
package library

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/services"
)

type Service interface {
	MyLibrary(ctx context.Context, userID string) (*services.Library, error)
}

type Handler struct {
	log   *slog.Logger
	audio Service
}

func New(log *slog.Logger, audio Service) *Handler {
	return &Handler{log: log, audio: audio}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.audio.library"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	lib, err := h.audio.MyLibrary(r.Context(), userID)
	if err != nil {
		log.Error("failed to load audio library", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(lib))
}
