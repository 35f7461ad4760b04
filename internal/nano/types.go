package nano

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// PublicKey is an account's 32-byte ed25519 public key.
type PublicKey [32]byte

// Hash is a 32-byte block hash.
type Hash [32]byte

// Signature is a 64-byte block signature.
type Signature [64]byte

// Work is a proof-of-work nonce in wire order.
type Work [8]byte

// ZeroHash is the all-zero hash, used as previous for open blocks and as
// link for change blocks.
var ZeroHash Hash

// String returns the uppercase hex form used by the node RPC.
func (h Hash) String() string {
	return strings.ToUpper(hex.EncodeToString(h[:]))
}

// IsZero reports whether every byte of h is zero.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// ParseHash decodes a 64-character hex hash in either case.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if err := decodeHexInto(h[:], s); err != nil {
		return h, fmt.Errorf("%w: hash: %w", ErrValidation, err)
	}
	return h, nil
}

// Address returns the xrb_ address of the key.
func (p PublicKey) Address() string {
	return EncodeAddress(p)
}

// String returns the lowercase hex form of the key.
func (p PublicKey) String() string {
	return hex.EncodeToString(p[:])
}

// ParsePublicKey decodes a 64-character hex public key.
func ParsePublicKey(s string) (PublicKey, error) {
	var p PublicKey
	if err := decodeHexInto(p[:], s); err != nil {
		return p, fmt.Errorf("%w: public key: %w", ErrValidation, err)
	}
	return p, nil
}

// String returns the uppercase hex form used by the node RPC.
func (s Signature) String() string {
	return strings.ToUpper(hex.EncodeToString(s[:]))
}

// ParseSignature decodes a 128-character hex signature.
func ParseSignature(s string) (Signature, error) {
	var sig Signature
	if err := decodeHexInto(sig[:], s); err != nil {
		return sig, fmt.Errorf("%w: signature: %w", ErrValidation, err)
	}
	return sig, nil
}

// String returns the 16-character lowercase hex form of the work.
func (w Work) String() string {
	return hex.EncodeToString(w[:])
}

// ParseWork decodes a 16-character hex work value.
func ParseWork(s string) (Work, error) {
	var w Work
	if err := decodeHexInto(w[:], s); err != nil {
		return w, fmt.Errorf("%w: work: %w", ErrProofOfWork, err)
	}
	return w, nil
}

func decodeHexInto(dst []byte, s string) error {
	if len(s) != hex.EncodedLen(len(dst)) {
		return fmt.Errorf("expected %d hex characters, got %d", hex.EncodedLen(len(dst)), len(s))
	}
	if _, err := hex.Decode(dst, []byte(s)); err != nil {
		return err
	}
	return nil
}
