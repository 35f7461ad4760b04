package model

import (
	"encoding/json"
	"time"
)

// Account is one derived account of the wallet seed
type Account struct {
	Index   uint32 `json:"index"`
	Address string `json:"address"`
}

// AccountsResponse represents response for GET and POST /wallet/accounts
type AccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// ExportResponse represents response for GET /wallet/export
type ExportResponse struct {
	Seed     string `json:"seed"`
	Mnemonic string `json:"mnemonic"`
}

// BackupRequest represents request for POST /wallet/backup. Password
// protects the backup only and may differ from the wallet password.
type BackupRequest struct {
	Password string `json:"password" binding:"required"`
}

// RestoreRequest represents request for POST /wallet/restore. Backup is the
// JSON document returned by POST /wallet/backup.
type RestoreRequest struct {
	Backup   json.RawMessage `json:"backup" binding:"required"`
	Password string          `json:"password" binding:"required"`
}

// AddressResponse represents response for GET /address/validate
type AddressResponse struct {
	Valid     bool   `json:"valid"`
	Address   string `json:"address,omitempty"` // normalized xrb_ form
	PublicKey string `json:"publicKey,omitempty"`
	Error     string `json:"error,omitempty"`
}

// BroadcastStatus is one in-flight block broadcast
type BroadcastStatus struct {
	ID      string    `json:"id"`
	Root    string    `json:"root"`
	Intent  string    `json:"intent"`
	State   string    `json:"state"`
	Started time.Time `json:"started"`
	Expires time.Time `json:"expires"`
}
