package wallet

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/client"
	"github.com/AlexZinkM/nano-wallet/internal/common"
	"github.com/AlexZinkM/nano-wallet/internal/model"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

// pendingLimit caps how many pending blocks are read or received per call.
const pendingLimit = 50

// GetBalance gets the confirmed and pending balance of account index.
func (s *Session) GetBalance(ctx context.Context, index uint32) (*model.BalanceResponse, error) {
	address, err := s.Address(index)
	if err != nil {
		return nil, err
	}

	resp := &model.BalanceResponse{Index: index, Address: address}
	balance := new(uint256.Int)
	info, err := s.ledger.AccountInfo(ctx, address)
	switch {
	case errors.Is(err, client.ErrAccountNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to get account info: %w", err)
	default:
		balance = info.Balance
		resp.Opened = true
		resp.Representative = info.Representative
	}

	pending, err := s.ledger.Pending(ctx, address, pendingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending blocks: %w", err)
	}
	pendingSum := new(uint256.Int)
	for _, p := range pending {
		if pendingSum, err = common.AddRaw(pendingSum, p.Amount); err != nil {
			return nil, fmt.Errorf("%w: pending total: %w", nano.ErrNetwork, err)
		}
	}

	resp.BalanceRaw = balance.Dec()
	resp.Balance = common.RawToNano(balance)
	resp.PendingRaw = pendingSum.Dec()
	resp.Pending = common.RawToNano(pendingSum)

	if s.prices != nil {
		rate, err := s.prices.GetNanoPrice(ctx, s.currency)
		if err != nil {
			// balances stay useful without a quote
			log.Warn().Err(err).Str("currency", s.currency).Msg("Failed to get price")
		} else {
			resp.Currency = s.currency
			resp.Rate = rate
			resp.Fiat = fiatValue(resp.Balance, rate)
		}
	}
	return resp, nil
}

// fiatValue multiplies a NANO amount by a rate (use float only for display,
// not for critical operations)
func fiatValue(amount, rate string) string {
	amountFloat, _ := strconv.ParseFloat(amount, 64)
	rateFloat, _ := strconv.ParseFloat(rate, 64)
	return fmt.Sprintf("%.2f", amountFloat*rateFloat)
}

// PaymentRequest returns a payment URI and QR code for account index,
// optionally asking for amount NANO.
func (s *Session) PaymentRequest(index uint32, amount string) (*model.PaymentRequestResponse, error) {
	address, err := s.Address(index)
	if err != nil {
		return nil, err
	}
	var raw *uint256.Int
	if amount != "" {
		if raw, err = common.NanoToRaw(amount); err != nil {
			return nil, fmt.Errorf("%w: invalid amount: %w", nano.ErrValidation, err)
		}
	}

	uri := nano.FormatPaymentURI(address, raw)
	qr, err := nano.PaymentQRCode(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return &model.PaymentRequestResponse{Address: address, URI: uri, QR: qr}, nil
}
