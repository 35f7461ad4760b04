package nano

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/AlexZinkM/nano-wallet/internal/common"

	"github.com/holiman/uint256"
	"github.com/skip2/go-qrcode"
)

const (
	schemeXRB  = "xrb"
	schemeNano = "nano"
)

// PaymentRequest is a decoded payment URI.
type PaymentRequest struct {
	Address string
	// Amount in raw, nil when the URI carries none
	Amount *uint256.Int
}

// FormatPaymentURI builds xrb:<address>[?amount=<raw>].
func FormatPaymentURI(address string, amount *uint256.Int) string {
	uri := schemeXRB + ":" + address
	if amount != nil {
		uri += "?amount=" + amount.Dec()
	}
	return uri
}

// ParsePaymentURI decodes an xrb: or nano: payment URI. A bare address is
// accepted too.
func ParsePaymentURI(s string) (*PaymentRequest, error) {
	s = strings.TrimSpace(s)
	if ValidAddress(s) {
		return &PaymentRequest{Address: s}, nil
	}

	scheme, rest, ok := strings.Cut(s, ":")
	if !ok || (scheme != schemeXRB && scheme != schemeNano) {
		return nil, fmt.Errorf("%w: unsupported payment uri", ErrValidation)
	}
	address, rawQuery, _ := strings.Cut(rest, "?")
	if _, err := DecodeAddress(address); err != nil {
		return nil, err
	}

	req := &PaymentRequest{Address: address}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: payment uri query: %w", ErrValidation, err)
	}
	if amount := query.Get("amount"); amount != "" {
		raw, err := common.ParseRaw(amount)
		if err != nil {
			return nil, fmt.Errorf("%w: amount: %w", ErrValidation, err)
		}
		req.Amount = raw
	}
	return req, nil
}

// PaymentQRCode renders uri as a base64 PNG QR code.
func PaymentQRCode(uri string) (string, error) {
	qr, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
