package nano

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlexZinkM/nano-wallet/internal/common"
	"github.com/AlexZinkM/nano-wallet/internal/crypto"

	"github.com/holiman/uint256"
)

// Intent selects how a state block's link field is interpreted.
type Intent int

const (
	IntentOpen Intent = iota
	IntentSend
	IntentReceive
	IntentChange
)

func (i Intent) String() string {
	switch i {
	case IntentOpen:
		return "open"
	case IntentSend:
		return "send"
	case IntentReceive:
		return "receive"
	case IntentChange:
		return "change"
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// statePreamble prefixes every state block hash; its last byte is the block
// type discriminator of the state block format.
var statePreamble = [32]byte{31: 0x06}

// StateBlock is the single block format used for every ledger operation.
//
// Callers set Account, Previous, Representative, Balance and Link, then call
// Build. Link is a destination address for sends, a source block hash for
// open and receive, and ignored for change.
type StateBlock struct {
	Intent         Intent
	Account        string
	Previous       string
	Representative string
	Balance        *uint256.Int
	Link           string
	Signature      string
	Work           string
}

// NewOpen returns an open block receiving source into a fresh account.
func NewOpen(account, representative, source string, balance *uint256.Int) *StateBlock {
	return &StateBlock{
		Intent:         IntentOpen,
		Account:        account,
		Previous:       ZeroHash.String(),
		Representative: representative,
		Balance:        balance,
		Link:           source,
	}
}

// NewReceive returns a receive block pocketing source on top of previous.
func NewReceive(account, previous, representative, source string, balance *uint256.Int) *StateBlock {
	return &StateBlock{
		Intent:         IntentReceive,
		Account:        account,
		Previous:       previous,
		Representative: representative,
		Balance:        balance,
		Link:           source,
	}
}

// NewSend returns a send block leaving balance on account after paying
// destination.
func NewSend(account, previous, representative, destination string, balance *uint256.Int) *StateBlock {
	return &StateBlock{
		Intent:         IntentSend,
		Account:        account,
		Previous:       previous,
		Representative: representative,
		Balance:        balance,
		Link:           destination,
	}
}

// NewChange returns a block delegating account's weight to representative.
func NewChange(account, previous, representative string, balance *uint256.Int) *StateBlock {
	return &StateBlock{
		Intent:         IntentChange,
		Account:        account,
		Previous:       previous,
		Representative: representative,
		Balance:        balance,
		Link:           ZeroHash.String(),
	}
}

// blockFields is a fully decoded block ready to be hashed.
type blockFields struct {
	account        PublicKey
	previous       Hash
	representative PublicKey
	balance        [16]byte
	link           [32]byte
}

func (b *StateBlock) decode() (*blockFields, error) {
	var f blockFields
	var err error

	if b.Account == "" {
		return nil, fmt.Errorf("%w: account is required", ErrBuild)
	}
	if f.account, err = DecodeAddress(b.Account); err != nil {
		return nil, fmt.Errorf("%w: account: %w", ErrBuild, err)
	}
	if b.Representative == "" {
		return nil, fmt.Errorf("%w: representative is required", ErrBuild)
	}
	if f.representative, err = DecodeAddress(b.Representative); err != nil {
		return nil, fmt.Errorf("%w: representative: %w", ErrBuild, err)
	}
	if f.previous, err = ParseHash(b.Previous); err != nil {
		return nil, fmt.Errorf("%w: previous: %w", ErrBuild, err)
	}
	if b.Intent == IntentOpen && !f.previous.IsZero() {
		return nil, fmt.Errorf("%w: open block must have zero previous", ErrBuild)
	}
	if b.Intent != IntentOpen && f.previous.IsZero() {
		return nil, fmt.Errorf("%w: %s block requires previous", ErrBuild, b.Intent)
	}
	if b.Balance == nil {
		return nil, fmt.Errorf("%w: balance is required", ErrBuild)
	}
	if b.Balance.BitLen() > common.RawBits {
		return nil, fmt.Errorf("%w: %w", ErrBuild, common.ErrBalanceOverflow)
	}
	be := b.Balance.Bytes32()
	copy(f.balance[:], be[16:])

	switch b.Intent {
	case IntentSend:
		// an address before Build, its hex public key after
		var dest PublicKey
		if strings.HasPrefix(b.Link, PrefixXRB) || strings.HasPrefix(b.Link, PrefixNano) {
			dest, err = DecodeAddress(b.Link)
		} else {
			dest, err = ParsePublicKey(b.Link)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: destination: %w", ErrBuild, err)
		}
		f.link = dest
	case IntentChange:
		// link is forced to zero
	case IntentOpen, IntentReceive:
		source, err := ParseHash(b.Link)
		if err != nil {
			return nil, fmt.Errorf("%w: source: %w", ErrBuild, err)
		}
		if source.IsZero() {
			return nil, fmt.Errorf("%w: %s block requires a source hash", ErrBuild, b.Intent)
		}
		f.link = source
	default:
		return nil, fmt.Errorf("%w: unknown intent %s", ErrBuild, b.Intent)
	}
	return &f, nil
}

func (f *blockFields) hash() (Hash, error) {
	var h Hash
	digest, err := crypto.Digest(32,
		statePreamble[:],
		f.account[:],
		f.previous[:],
		f.representative[:],
		f.balance[:],
		f.link[:],
	)
	if err != nil {
		return h, fmt.Errorf("%w: %w", ErrCrypto, err)
	}
	copy(h[:], digest)
	return h, nil
}

// Hash returns the block hash. Work and signature are not part of it.
func (b *StateBlock) Hash() (Hash, error) {
	f, err := b.decode()
	if err != nil {
		return Hash{}, err
	}
	return f.hash()
}

// Build resolves the link, hashes and signs the block with kp. On error the
// block is left exactly as it was.
func (b *StateBlock) Build(kp *KeyPair) error {
	if kp == nil {
		return fmt.Errorf("%w: key pair is required", ErrBuild)
	}
	f, err := b.decode()
	if err != nil {
		return err
	}
	if f.account != kp.PublicKey {
		return fmt.Errorf("%w: key pair does not match account", ErrBuild)
	}

	h, err := f.hash()
	if err != nil {
		return err
	}
	sig, err := kp.Sign(h[:])
	if err != nil {
		return err
	}

	b.Link = strings.ToUpper(hex.EncodeToString(f.link[:]))
	b.Previous = f.previous.String()
	b.Signature = sig.String()
	return nil
}

// VerifySignature reports whether the block carries a valid signature by its
// account.
func (b *StateBlock) VerifySignature() bool {
	f, err := b.decode()
	if err != nil {
		return false
	}
	sig, err := ParseSignature(b.Signature)
	if err != nil {
		return false
	}
	h, err := f.hash()
	if err != nil {
		return false
	}
	return Verify(f.account, h[:], sig)
}

// WorkRoot is the hash proof of work is computed against: the account key
// for open blocks, otherwise previous.
func (b *StateBlock) WorkRoot() (Hash, error) {
	if b.Intent == IntentOpen {
		pub, err := DecodeAddress(b.Account)
		if err != nil {
			return Hash{}, err
		}
		return Hash(pub), nil
	}
	return ParseHash(b.Previous)
}

// blockJSON is the node's JSON form of a state block.
type blockJSON struct {
	Type           string `json:"type"`
	Account        string `json:"account"`
	Previous       string `json:"previous"`
	Representative string `json:"representative"`
	Balance        string `json:"balance"`
	Link           string `json:"link"`
	Signature      string `json:"signature"`
	Work           string `json:"work"`
}

// MarshalJSON encodes the block as the node's "state" block object.
func (b *StateBlock) MarshalJSON() ([]byte, error) {
	balance := ""
	if b.Balance != nil {
		balance = b.Balance.Dec()
	}
	return json.Marshal(blockJSON{
		Type:           "state",
		Account:        b.Account,
		Previous:       b.Previous,
		Representative: b.Representative,
		Balance:        balance,
		Link:           b.Link,
		Signature:      b.Signature,
		Work:           b.Work,
	})
}
