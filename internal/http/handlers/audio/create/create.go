// Package create adds a track to the audio library.
package create

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	CreateContent(ctx context.Context, req models.AudioContentRequest) (*models.AudioContent, error)
}

type Handler struct {
	log      *slog.Logger
	audio    Service
	validate *validator.Validate
}

func New(log *slog.Logger, audio Service) *Handler {
	return &Handler{log: log, audio: audio, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.audio.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.AudioContentRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.CodeInvalidInput, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	audio, err := h.audio.CreateContent(r.Context(), req)
	if err != nil {
		log.Error("failed to create audio content", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("created audio content", slog.String("audio_id", audio.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(audio))
}
