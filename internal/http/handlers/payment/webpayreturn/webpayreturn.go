// Package webpayreturn is the landing endpoint Webpay sends the
// shopper back to after the payment form. Transbank calls it with
// token_ws in the POST form on success and in the query string when
// the shopper aborts. The handler settles the payment and redirects
// the browser to the storefront result page, so it never renders JSON.
package webpayreturn

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/vmcandles/commerce-api/internal/lib/sl"
	"github.com/vmcandles/commerce-api/internal/services"
)

type Service interface {
	HandleReturn(ctx context.Context, token string) services.PaymentResult
}

type Handler struct {
	log      *slog.Logger
	payments Service
}

func New(log *slog.Logger, payments Service) *Handler {
	return &Handler{log: log, payments: payments}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webpayreturn"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token_ws")
	if token == "" && r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			log.Warn("failed to parse return form", sl.Err(err))
		}
		token = r.PostFormValue("token_ws")
	}
	// TBK_TOKEN arrives instead of token_ws when the shopper cancels
	// on the Webpay form.
	if token == "" {
		token = r.FormValue("TBK_TOKEN")
	}

	result := h.payments.HandleReturn(r.Context(), token)
	log.Info("processed webpay return", slog.String("redirect", result.RedirectURL))
	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}
