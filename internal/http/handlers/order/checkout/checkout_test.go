package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vmcandles/commerce-api/internal/http/middlewarectx"
	"github.com/vmcandles/commerce-api/internal/models"
	"github.com/vmcandles/commerce-api/internal/services"
)

type OrderServiceMock struct {
	mock.Mock
}

func (m *OrderServiceMock) Checkout(ctx context.Context, userID string, req models.CheckoutRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, req)
	var order *models.Order
	if args.Get(0) != nil {
		order = args.Get(0).(*models.Order)
	}
	return order, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCheckoutHandler_ServeHTTP(t *testing.T) {
	validReq := models.CheckoutRequest{ShippingAddressID: "addr-1"}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockOrder      *models.Order
		mockErr        error
		expectCall     bool
		wantStatusCode int
		wantErrorCode  string
	}{
		{
			name:        "successful checkout",
			requestBody: validReq,
			mockOrder: &models.Order{
				ID:            "order-1",
				Status:        models.OrderPending,
				PaymentStatus: models.PaymentPending,
				Total:         41,
			},
			expectCall:     true,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing shipping address",
			requestBody:    models.CheckoutRequest{Notes: "ring the bell"},
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  "VALIDATION_ERROR",
		},
		{
			name:           "empty cart",
			requestBody:    validReq,
			mockErr:        services.ErrEmptyCart,
			expectCall:     true,
			wantStatusCode: http.StatusBadRequest,
			wantErrorCode:  "EMPTY_CART",
		},
		{
			name:           "product went out of stock",
			requestBody:    validReq,
			mockErr:        services.ErrOutOfStock,
			expectCall:     true,
			wantStatusCode: http.StatusConflict,
			wantErrorCode:  "OUT_OF_STOCK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderMock := new(OrderServiceMock)
			if tt.expectCall {
				orderMock.On("Checkout", mock.Anything, "user-1", mock.Anything).
					Return(tt.mockOrder, tt.mockErr).Once()
			}

			handler := New(newNoopLogger(), orderMock)

			bodyBytes, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatal(err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", bytes.NewReader(bodyBytes))
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserID, "user-1")
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantErrorCode != "" {
				errBody, ok := got["error"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantErrorCode, errBody["code"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "order-1", data["id"])
				assert.Equal(t, models.OrderPending, data["status"])
			}

			orderMock.AssertExpectations(t)
		})
	}
}
