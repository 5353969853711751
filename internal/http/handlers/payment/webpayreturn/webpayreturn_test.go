package webpayreturn

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vmcandles/commerce-api/internal/services"
)

type PaymentServiceMock struct {
	mock.Mock
}

func (m *PaymentServiceMock) HandleReturn(ctx context.Context, token string) services.PaymentResult {
	args := m.Called(ctx, token)
	return args.Get(0).(services.PaymentResult)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestWebpayReturnHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		query        string
		form         url.Values
		wantToken    string
		redirectURL  string
		wantLocation string
	}{
		{
			name:         "token in post form",
			method:       http.MethodPost,
			form:         url.Values{"token_ws": {"tok-form-1"}},
			wantToken:    "tok-form-1",
			redirectURL:  "https://shop.example.cl/payment/success?order=ORD-001",
			wantLocation: "https://shop.example.cl/payment/success?order=ORD-001",
		},
		{
			name:         "token in query string",
			method:       http.MethodGet,
			query:        "?token_ws=tok-query-1",
			wantToken:    "tok-query-1",
			redirectURL:  "https://shop.example.cl/payment/success?order=ORD-002",
			wantLocation: "https://shop.example.cl/payment/success?order=ORD-002",
		},
		{
			name:         "aborted flow sends TBK_TOKEN",
			method:       http.MethodPost,
			form:         url.Values{"TBK_TOKEN": {"tok-abort-1"}, "TBK_ORDEN_COMPRA": {"ORD-003"}},
			wantToken:    "tok-abort-1",
			redirectURL:  "https://shop.example.cl/payment/failure",
			wantLocation: "https://shop.example.cl/payment/failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payMock := new(PaymentServiceMock)
			payMock.On("HandleReturn", mock.Anything, tt.wantToken).
				Return(services.PaymentResult{RedirectURL: tt.redirectURL}).Once()

			handler := New(newNoopLogger(), payMock)

			var req *http.Request
			if tt.form != nil {
				req = httptest.NewRequest(tt.method, "/api/v1/payments/webpay/return"+tt.query,
					strings.NewReader(tt.form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			} else {
				req = httptest.NewRequest(tt.method, "/api/v1/payments/webpay/return"+tt.query, nil)
			}
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
			payMock.AssertExpectations(t)
		})
	}
}
