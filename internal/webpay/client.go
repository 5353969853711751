// Package webpay is a REST client for the Transbank Webpay Plus API.
// It covers the two calls the shop needs: creating a transaction and
// committing it after the cardholder returns.
package webpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	integrationURL = "https://webpay3gint.transbank.cl"
	productionURL  = "https://webpay3g.transbank.cl"

	transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"
)

// Client calls the Webpay REST API with the commerce credentials in
// headers.
type Client struct {
	commerceCode string
	apiKey       string
	apiURL       string
	httpClient   *http.Client
}

// NewClient builds a client for the given environment ("integration"
// or "production").
func NewClient(commerceCode, apiKey, environment string) *Client {
	apiURL := integrationURL
	if environment == "production" {
		apiURL = productionURL
	}
	return &Client{
		commerceCode: commerceCode,
		apiKey:       apiKey,
		apiURL:       apiURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Tbk-Api-Key-Id", c.commerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// CreateTransaction opens a transaction and returns the token plus the
// redirect URL for the cardholder.
func (c *Client) CreateTransaction(ctx context.Context, reqParams CreateRequest) (*CreateResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPost, transactionsPath, reqParams)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var createResp CreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&createResp); err != nil {
		return nil, err
	}
	return &createResp, nil
}

// CommitTransaction settles the transaction identified by token and
// returns the gateway verdict.
func (c *Client) CommitTransaction(ctx context.Context, token string) (*CommitResponse, error) {
	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("%s/%s", transactionsPath, token), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("unexpected status: " + resp.Status)
	}

	var commitResp CommitResponse
	if err := json.NewDecoder(resp.Body).Decode(&commitResp); err != nil {
		return nil, err
	}
	return &commitResp, nil
}
