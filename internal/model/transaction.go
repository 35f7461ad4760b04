package model

import (
	"fmt"
	"time"

	"github.com/AlexZinkM/nano-wallet/internal/common"
)

// TransactionType transaction type
type TransactionType string

const (
	TransactionTypeSend    TransactionType = "send"
	TransactionTypeReceive TransactionType = "receive"
)

// Transaction represents one block of the account chain
type Transaction struct {
	Type      TransactionType `json:"type"`
	Hash      string          `json:"hash"`
	Account   string          `json:"account"` // counterparty
	Contact   string          `json:"contact,omitempty"`
	Amount    string          `json:"amount"` // NANO
	AmountRaw string          `json:"amount_raw"`
	Timestamp time.Time       `json:"timestamp"`
}

// HistoryResponse represents response for GET /wallet/history
type HistoryResponse struct {
	Address       string        `json:"address"`
	TotalReceived string        `json:"total_received"`
	TotalSent     string        `json:"total_sent"`
	Transactions  []Transaction `json:"transactions"`
}

// HistoryRequest represents request parameters for GET /wallet/history
type HistoryRequest struct {
	Index     uint32           `form:"index"`
	Count     int              `form:"count"`
	Type      *TransactionType `form:"type"`
	Hash      *string          `form:"hash"`
	From      *time.Time       `form:"from"`
	To        *time.Time       `form:"to"`
	MinAmount *string          `form:"minAmount"` // NANO
	MaxAmount *string          `form:"maxAmount"` // NANO
}

// Validate validates HistoryRequest filter parameters.
func (r *HistoryRequest) Validate() error {
	if r.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	if r.Type != nil && *r.Type != TransactionTypeSend && *r.Type != TransactionTypeReceive {
		return fmt.Errorf("type must be send or receive")
	}
	if r.From != nil && r.To != nil && r.To.Before(*r.From) {
		return fmt.Errorf("to date must be after or equal to from date")
	}
	if r.MinAmount != nil {
		if _, err := common.NanoToRaw(*r.MinAmount); err != nil {
			return fmt.Errorf("invalid minAmount: %w", err)
		}
	}
	if r.MaxAmount != nil {
		if _, err := common.NanoToRaw(*r.MaxAmount); err != nil {
			return fmt.Errorf("invalid maxAmount: %w", err)
		}
	}
	if r.MinAmount != nil && r.MaxAmount != nil {
		lo, _ := common.NanoToRaw(*r.MinAmount)
		hi, _ := common.NanoToRaw(*r.MaxAmount)
		if lo.Gt(hi) {
			return fmt.Errorf("minAmount must be less than or equal to maxAmount")
		}
	}
	return nil
}
