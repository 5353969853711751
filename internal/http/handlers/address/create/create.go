// Package create adds an address to the caller's address book.
package create

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
	CreateAddress(ctx context.Context, userID string, req models.AddressRequest) (*models.Address, error)
}

type Handler struct {
	log      *slog.Logger
	profiles Service
	validate *validator.Validate
}

func New(log *slog.Logger, profiles Service) *Handler {
	return &Handler{log: log, profiles: profiles, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.address.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.AddressRequest
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
	address, err := h.profiles.CreateAddress(r.Context(), userID, req)
	if err != nil {
		log.Error("failed to create address", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(address))
}
