package webpay

// CreateRequest opens a transaction. Amount is in whole CLP.
type CreateRequest struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int    `json:"amount"`
	ReturnURL string `json:"return_url"`
}

// CreateResponse carries the token and the gateway redirect URL.
type CreateResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// CommitResponse is the gateway verdict after the cardholder returns.
// A payment is approved only when Status is AUTHORIZED and
// ResponseCode is 0.
type CommitResponse struct {
	VCI        string  `json:"vci"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	BuyOrder   string  `json:"buy_order"`
	SessionID  string  `json:"session_id"`
	CardDetail struct {
		CardNumber string `json:"card_number"`
	} `json:"card_detail"`
	AccountingDate    string `json:"accounting_date"`
	TransactionDate   string `json:"transaction_date"`
	AuthorizationCode string `json:"authorization_code"`
	PaymentTypeCode   string `json:"payment_type_code"`
	ResponseCode      int    `json:"response_code"`
	InstallmentsCount int    `json:"installments_number"`
}

// Approved applies the gateway's approval rule.
func (r *CommitResponse) Approved() bool {
	return r.Status == "AUTHORIZED" && r.ResponseCode == 0
}
