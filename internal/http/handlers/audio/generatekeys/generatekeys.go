// Package generatekeys mints batches of audio access codes for retail
// packaging.
package generatekeys

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
	GenerateKeys(ctx context.Context, req models.GenerateKeysRequest) ([]models.AudioAccessKey, error)
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
	const op = "handlers.audio.generatekeys"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.GenerateKeysRequest
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

	keys, err := h.audio.GenerateKeys(r.Context(), req)
	if err != nil {
		log.Error("failed to generate access keys", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("generated access keys", slog.Int("count", len(keys)))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(keys))
}
