package model

// SendRequest represents request for POST /wallet/send
type SendRequest struct {
	Index     uint32 `json:"index"`
	ToAddress string `json:"toAddress" binding:"required"`
	Amount    string `json:"amount" binding:"required"` // NANO
}

// ChangeRepresentativeRequest represents request for POST /wallet/representative
type ChangeRepresentativeRequest struct {
	Index          uint32 `json:"index"`
	Representative string `json:"representative" binding:"required"`
}

// BlockResponse represents response for endpoints publishing a single block
type BlockResponse struct {
	Hash string `json:"hash"`
}

// ReceivedResponse represents response for POST /wallet/receive
type ReceivedResponse struct {
	Address string   `json:"address"`
	Hashes  []string `json:"hashes"`
}

// PaymentRequestResponse represents response for GET /wallet/receive
type PaymentRequestResponse struct {
	Address string `json:"address"`
	URI     string `json:"uri"`
	QR      string `json:"QR"` // base64 PNG
}
