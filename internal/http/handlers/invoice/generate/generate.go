// Package generate issues the invoice for one of the caller's paid
// orders. Repeat calls return the existing document.
package generate

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
	Generate(ctx context.Context, userID string, req models.GenerateInvoiceRequest) (*models.Invoice, error)
}

type Handler struct {
	log      *slog.Logger
	invoices Service
	validate *validator.Validate
}

func New(log *slog.Logger, invoices Service) *Handler {
	return &Handler{log: log, invoices: invoices, validate: validator.New()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invoice.generate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.GenerateInvoiceRequest
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
	inv, err := h.invoices.Generate(r.Context(), userID, req)
	if err != nil {
		log.Warn("failed to generate invoice", sl.Err(err))
		status, resp := response.ServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("issued invoice", slog.String("invoice_id", inv.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(inv))
}
