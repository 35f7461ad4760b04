package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/client"
	"github.com/AlexZinkM/nano-wallet/internal/common"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

// CooldownError is returned when a send is attempted too soon after the
// previous one.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, please wait %v", e.Remaining.Round(time.Second))
}

// Send pays amount NANO from account index to toAddress and returns the hash
// of the published send block.
func (s *Session) Send(ctx context.Context, index uint32, toAddress, amount string) (nano.Hash, error) {
	if _, err := nano.DecodeAddress(toAddress); err != nil {
		return nano.Hash{}, fmt.Errorf("invalid destination: %w", err)
	}
	raw, err := common.NanoToRaw(amount)
	if err != nil {
		return nano.Hash{}, fmt.Errorf("%w: invalid amount: %w", nano.ErrValidation, err)
	}
	if raw.IsZero() {
		return nano.Hash{}, fmt.Errorf("%w: amount must be positive", nano.ErrValidation)
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	if !s.lastSend.IsZero() && s.cooldown > 0 {
		if elapsed := s.now().Sub(s.lastSend); elapsed < s.cooldown {
			return nano.Hash{}, &CooldownError{Remaining: s.cooldown - elapsed}
		}
	}

	kp, err := s.KeyPair(index)
	if err != nil {
		return nano.Hash{}, err
	}
	defer kp.Wipe()

	info, err := s.ledger.AccountInfo(ctx, kp.Address())
	if errors.Is(err, client.ErrAccountNotFound) {
		return nano.Hash{}, fmt.Errorf("%w: %w", nano.ErrValidation, common.ErrBalanceUnderflow)
	}
	if err != nil {
		return nano.Hash{}, fmt.Errorf("failed to get account info: %w", err)
	}

	remaining, err := common.SubRaw(info.Balance, raw)
	if err != nil {
		return nano.Hash{}, fmt.Errorf("%w: %w (have %s NANO)", nano.ErrValidation, err, common.RawToNano(info.Balance))
	}

	block := nano.NewSend(kp.Address(), info.Frontier.String(), info.Representative, toAddress, remaining)
	hash, err := s.publish(ctx, block, &kp)
	if err != nil {
		return nano.Hash{}, err
	}

	s.lastSend = s.now()
	log.Info().Str("hash", hash.String()).Str("to", toAddress).Str("amount", amount).Msg("Send published")
	return hash, nil
}

// ReceivePending pockets the pending blocks of account index, opening the
// account first if needed. Returns the hashes of the published blocks, even
// when a later block fails.
func (s *Session) ReceivePending(ctx context.Context, index uint32) ([]nano.Hash, error) {
	kp, err := s.KeyPair(index)
	if err != nil {
		return nil, err
	}
	defer kp.Wipe()
	address := kp.Address()

	pending, err := s.ledger.Pending(ctx, address, pendingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending blocks: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	opened := true
	var frontier nano.Hash
	balance := new(uint256.Int)
	representative := s.representative

	info, err := s.ledger.AccountInfo(ctx, address)
	switch {
	case errors.Is(err, client.ErrAccountNotFound):
		opened = false
	case err != nil:
		return nil, fmt.Errorf("failed to get account info: %w", err)
	default:
		frontier = info.Frontier
		balance = info.Balance
		representative = info.Representative
	}

	hashes := make([]nano.Hash, 0, len(pending))
	for _, p := range pending {
		next, err := common.AddRaw(balance, p.Amount)
		if err != nil {
			return hashes, fmt.Errorf("%w: %w", nano.ErrBuild, err)
		}

		var block *nano.StateBlock
		if opened {
			block = nano.NewReceive(address, frontier.String(), representative, p.Hash.String(), next)
		} else {
			block = nano.NewOpen(address, representative, p.Hash.String(), next)
		}

		hash, err := s.publish(ctx, block, &kp)
		if err != nil {
			return hashes, err
		}
		log.Info().Str("hash", hash.String()).Str("source", p.Hash.String()).Str("intent", block.Intent.String()).Msg("Pending block received")

		hashes = append(hashes, hash)
		frontier = hash
		balance = next
		opened = true
	}
	return hashes, nil
}

// ChangeRepresentative delegates the weight of account index to
// representative.
func (s *Session) ChangeRepresentative(ctx context.Context, index uint32, representative string) (nano.Hash, error) {
	if _, err := nano.DecodeAddress(representative); err != nil {
		return nano.Hash{}, fmt.Errorf("invalid representative: %w", err)
	}

	kp, err := s.KeyPair(index)
	if err != nil {
		return nano.Hash{}, err
	}
	defer kp.Wipe()

	info, err := s.ledger.AccountInfo(ctx, kp.Address())
	if errors.Is(err, client.ErrAccountNotFound) {
		return nano.Hash{}, fmt.Errorf("%w: account is not opened yet", nano.ErrValidation)
	}
	if err != nil {
		return nano.Hash{}, fmt.Errorf("failed to get account info: %w", err)
	}

	block := nano.NewChange(kp.Address(), info.Frontier.String(), representative, info.Balance)
	return s.publish(ctx, block, &kp)
}

func (s *Session) publish(ctx context.Context, block *nano.StateBlock, kp *nano.KeyPair) (nano.Hash, error) {
	if err := block.Build(kp); err != nil {
		return nano.Hash{}, err
	}
	return s.broadcaster.Handle(ctx, block)
}
