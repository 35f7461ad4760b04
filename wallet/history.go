package wallet

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/holiman/uint256"

	"github.com/AlexZinkM/nano-wallet/internal/common"
	"github.com/AlexZinkM/nano-wallet/internal/model"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

const defaultHistoryCount = 50

// GetTransactions gets the history of account index with filtering
func (s *Session) GetTransactions(ctx context.Context, req *model.HistoryRequest) (*model.HistoryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", nano.ErrValidation, err)
	}
	address, err := s.Address(req.Index)
	if err != nil {
		return nil, err
	}

	count := req.Count
	if count == 0 {
		count = defaultHistoryCount
	}
	entries, err := s.ledger.History(ctx, address, count)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	var minRaw, maxRaw *uint256.Int
	if req.MinAmount != nil {
		minRaw, _ = common.NanoToRaw(*req.MinAmount)
	}
	if req.MaxAmount != nil {
		maxRaw, _ = common.NanoToRaw(*req.MaxAmount)
	}

	names, err := s.contactNames(ctx)
	if err != nil {
		return nil, err
	}

	received := new(uint256.Int)
	sent := new(uint256.Int)
	transactions := make([]model.Transaction, 0, len(entries))
	for _, e := range entries {
		txType := model.TransactionType(e.Type)

		// Filter by type
		if req.Type != nil && *req.Type != txType {
			continue
		}

		// Filter by hash
		if req.Hash != nil && !strings.EqualFold(*req.Hash, e.Hash.String()) {
			continue
		}

		// Filter by dates
		if req.From != nil && e.Timestamp.Before(*req.From) {
			continue
		}
		if req.To != nil && e.Timestamp.After(*req.To) {
			continue
		}

		// Filter by amount
		if minRaw != nil && e.Amount.Lt(minRaw) {
			continue
		}
		if maxRaw != nil && e.Amount.Gt(maxRaw) {
			continue
		}

		switch txType {
		case model.TransactionTypeReceive:
			received.Add(received, e.Amount)
		case model.TransactionTypeSend:
			sent.Add(sent, e.Amount)
		}

		transactions = append(transactions, model.Transaction{
			Type:      txType,
			Hash:      e.Hash.String(),
			Account:   e.Account,
			Contact:   contactName(names, e.Account),
			Amount:    common.RawToNano(e.Amount),
			AmountRaw: e.Amount.Dec(),
			Timestamp: e.Timestamp,
		})
	}

	// Sort by time DESC (newest first)
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.After(transactions[j].Timestamp)
	})

	return &model.HistoryResponse{
		Address:       address,
		TotalReceived: common.RawToNano(received),
		TotalSent:     common.RawToNano(sent),
		Transactions:  transactions,
	}, nil
}

// contactNames maps xrb_ addresses to contact names.
func (s *Session) contactNames(ctx context.Context) (map[string]string, error) {
	if s.contacts == nil {
		return nil, nil
	}
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.Address] = c.Name
	}
	return names, nil
}

func contactName(names map[string]string, account string) string {
	if len(names) == 0 {
		return ""
	}
	normalized, err := nano.NormalizeAddress(account)
	if err != nil {
		return ""
	}
	return names[normalized]
}
