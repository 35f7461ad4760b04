package model

// GenerateResponse represents response for POST /wallet/generate and /wallet/import
type GenerateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Address string `json:"address,omitempty"`
}

// ImportRequest represents request for POST /wallet/import.
// Secret is a 64-character hex seed or a 24-word mnemonic.
type ImportRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// UnlockRequest represents request for POST /wallet/unlock
type UnlockRequest struct {
	Password string `json:"password" binding:"required"`
}

// UnlockResponse represents response for POST /wallet/unlock
type UnlockResponse struct {
	Unlocked bool   `json:"unlocked"`
	Address  string `json:"address,omitempty"`
}
