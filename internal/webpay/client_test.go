package webpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(serverURL string) *Client {
	c := NewClient("597055555532", "test-api-key", "integration")
	c.apiURL = serverURL
	return c
}

func TestCreateTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, transactionsPath, r.URL.Path)
		assert.Equal(t, "597055555532", r.Header.Get("Tbk-Api-Key-Id"))
		assert.Equal(t, "test-api-key", r.Header.Get("Tbk-Api-Key-Secret"))

		var req CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ORD-001", req.BuyOrder)
		assert.Equal(t, 15000, req.Amount)

		_ = json.NewEncoder(w).Encode(CreateResponse{
			Token: "01ab23cd",
			URL:   "https://webpay3gint.transbank.cl/webpayserver/initTransaction",
		})
	}))
	defer server.Close()

	resp, err := testClient(server.URL).CreateTransaction(context.Background(), CreateRequest{
		BuyOrder:  "ORD-001",
		SessionID: "user-1",
		Amount:    15000,
		ReturnURL: "http://localhost:8080/api/v1/payments/webpay/return",
	})
	require.NoError(t, err)
	assert.Equal(t, "01ab23cd", resp.Token)
	assert.NotEmpty(t, resp.URL)
}

func TestCommitTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, transactionsPath+"/01ab23cd", r.URL.Path)

		_ = json.NewEncoder(w).Encode(CommitResponse{
			Status:          "AUTHORIZED",
			ResponseCode:    0,
			BuyOrder:        "ORD-001",
			TransactionDate: "2026-03-01T12:00:00Z",
		})
	}))
	defer server.Close()

	resp, err := testClient(server.URL).CommitTransaction(context.Background(), "01ab23cd")
	require.NoError(t, err)
	assert.True(t, resp.Approved())
}

func TestCommitTransactionErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	_, err := testClient(server.URL).CommitTransaction(context.Background(), "expired-token")
	assert.Error(t, err)
}

func TestApproved(t *testing.T) {
	tests := []struct {
		name string
		resp CommitResponse
		want bool
	}{
		{"authorized with code 0", CommitResponse{Status: "AUTHORIZED", ResponseCode: 0}, true},
		{"authorized with nonzero code", CommitResponse{Status: "AUTHORIZED", ResponseCode: -1}, false},
		{"failed status", CommitResponse{Status: "FAILED", ResponseCode: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Approved())
		})
	}
}
