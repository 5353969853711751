// Package orderstatus reports the payment state of one of the
// caller's orders, polled by the storefront result page.
package orderstatus

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
	"github.com/vmcandles/commerce-api/internal/models"
)

type Service interface {
	OrderPaymentStatus(ctx context.Context, userID, orderID string) (*models.Order, error)
}

type Handler struct {
	log      *slog.Logger
	payments Service
}

func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{log: log, payments: payments}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.orderstatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	order, err := h.payments.OrderPaymentStatus(r.Context(), userID, chi.URLParam(r, "orderId"))
	if err != nil {
		log.Warn("failed to get payment status", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"orderId":       order.ID,
		"status":        order.Status,
		"paymentStatus": order.PaymentStatus,
		"paymentDate":   order.PaymentDate,
	}))
}
