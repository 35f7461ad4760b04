package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

const (
	NanoDecimals = 30  // 1 NANO = 10^30 raw
	RawBits      = 128 // balances are unsigned 128-bit integers
)

var (
	ErrBalanceOverflow  = errors.New("balance overflows 128 bits")
	ErrBalanceUnderflow = errors.New("insufficient balance")
)

// MaxRaw is the largest representable balance, 2^128-1.
var MaxRaw = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), RawBits), uint256.NewInt(1))

// ParseRaw parses a base-10 raw amount, rejecting values above MaxRaw.
func ParseRaw(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty string")
	}
	if t := strings.TrimLeft(s, "0"); t != "" {
		s = t
	} else {
		s = "0"
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid raw amount: %w", err)
	}
	if v.BitLen() > RawBits {
		return nil, ErrBalanceOverflow
	}
	return v, nil
}

// RawToNano converts raw to a NANO string without float precision loss.
// Trailing fractional zeros are trimmed.
func RawToNano(raw *uint256.Int) string {
	s := formatWithDecimals(raw.Dec(), NanoDecimals)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// NanoToRaw converts a NANO string to raw without float precision loss.
func NanoToRaw(amount string) (*uint256.Int, error) {
	digits, err := parseWithDecimals(amount, NanoDecimals)
	if err != nil {
		return nil, err
	}
	return ParseRaw(digits)
}

// AddRaw returns a+b, failing if the sum does not fit in 128 bits.
func AddRaw(a, b *uint256.Int) (*uint256.Int, error) {
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.BitLen() > RawBits {
		return nil, ErrBalanceOverflow
	}
	return sum, nil
}

// SubRaw returns a-b, failing if b > a.
func SubRaw(a, b *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrBalanceUnderflow
	}
	return diff, nil
}

// formatWithDecimals inserts a decimal point into a base-10 digit string
// Example: formatWithDecimals("24981836", 9) = "0.024981836"
func formatWithDecimals(s string, decimals int) string {
	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts a decimal string to a base-10 integer digit
// string by removing the decimal point
// Example: parseWithDecimals("0.024981836", 9) = "24981836"
func parseWithDecimals(s string, decimals int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" {
		whole = "0"
	}

	// Fractional digits beyond the smallest unit cannot be represented
	if len(frac) > decimals {
		return "", fmt.Errorf("too many decimal places (max %d)", decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	digits := whole + frac
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("invalid character %q in amount", c)
		}
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return digits, nil
}
