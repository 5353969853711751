// Package initorder starts a Webpay transaction for an order and
// returns the token and gateway URL the client posts to.
package initorder

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
	"github.com/vmcandles/commerce-api/internal/services"
)

type Request struct {
	OrderID string `json:"orderId" validate:"required"`
}

type Service interface {
	InitOrderPayment(ctx context.Context, userID, orderID string) (*services.InitResponse, error)
}

type Handler struct {
	log      *slog.Logger
	payments Service
	validate *validator.Validate
}

func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{log: log, payments: payments, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.initorder"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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
	init, err := h.payments.InitOrderPayment(r.Context(), userID, req.OrderID)
	if err != nil {
		log.Error("failed to init order payment", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("initialized order payment", slog.String("order_id", req.OrderID))
	render.JSON(w, r, response.OKWithData(init))
}
