// Package redeem consumes a one-time audio access code.
package redeem

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	RedeemKey(ctx context.Context, userID string, req models.RedeemKeyRequest) (*models.AudioAccessKey, error)
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
	const op = "handlers.audio.redeem"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RedeemKeyRequest
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

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	key, err := h.audio.RedeemKey(r.Context(), userID, req)
	if err != nil {
		log.Warn("failed to redeem access key", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("redeemed access key", slog.String("key_id", key.ID))
	render.JSON(w, r, response.OKWithData(key))
}
