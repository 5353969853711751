// Package initupgrade starts the Webpay transaction for a prorated
// plan upgrade. The amount due is requoted server side so the client
// can never pick its own price.
package initupgrade

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/http/response"
	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/services"
)

type Quoter interface {
	ChangePlan(ctx context.Context, id, userID string, req models.ChangePlanRequest) (*services.UpgradeQuote, error)
}

type Payments interface {
	InitUpgradePayment(ctx context.Context, userID, subscriptionID, newPlanID string, amount int) (*services.InitResponse, error)
}

type Handler struct {
	log           *slog.Logger
	subscriptions Quoter
	payments      Payments
	validate      *validator.Validate
}

func New(log *slog.Logger, subscriptions Quoter, payments Payments) *Handler {
	return &Handler{log: log, subscriptions: subscriptions, payments: payments, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.initupgrade"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ChangePlanRequest
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

	id := chi.URLParam(r, "id")
	userID, _ := middlewarectx.UserIDFromContext(r.Context())

	quote, err := h.subscriptions.ChangePlan(r.Context(), id, userID, req)
	if err != nil {
		log.Warn("failed to quote upgrade", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	if !quote.RequiresPayment {
		render.JSON(w, r, response.OKWithData(quote))
		return
	}

	init, err := h.payments.InitUpgradePayment(r.Context(), userID, id, quote.NewPlanID, quote.AmountDue)
	if err != nil {
		log.Error("failed to init upgrade payment", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("initialized upgrade payment",
		slog.String("subscription_id", id), slog.Int("amount", quote.AmountDue))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"quote":   quote,
		"payment": init,
	}))
}
