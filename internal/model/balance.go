package model

// BalanceResponse represents response for GET /wallet/balance
type BalanceResponse struct {
	Index          uint32 `json:"index"`
	Address        string `json:"address"`
	Balance        string `json:"balance"`     // NANO
	BalanceRaw     string `json:"balance_raw"` // raw, base 10
	Pending        string `json:"pending"`
	PendingRaw     string `json:"pending_raw"`
	Representative string `json:"representative,omitempty"`
	Opened         bool   `json:"opened"`
	Currency       string `json:"currency,omitempty"`
	Rate           string `json:"rate,omitempty"`
	Fiat           string `json:"fiat,omitempty"` // Balance * Rate, display only
}
