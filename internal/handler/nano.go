package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/addressbook"
	"github.com/AlexZinkM/nano-wallet/internal/broadcast"
	"github.com/AlexZinkM/nano-wallet/internal/model"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/wallet"
)

// PasswordFunc returns a fresh copy of the wallet password. The handler
// zeroes it after use.
type PasswordFunc func() ([]byte, error)

// BroadcastLister lists in-flight broadcasts.
type BroadcastLister interface {
	Operations() []broadcast.Operation
}

// NanoHandler holds the wallet session behind the HTTP API
type NanoHandler struct {
	session    *wallet.Session
	broadcasts BroadcastLister
	password   PasswordFunc
}

// NewNanoHandler creates a new NanoHandler
func NewNanoHandler(session *wallet.Session, broadcasts BroadcastLister, password PasswordFunc) *NanoHandler {
	return &NanoHandler{
		session:    session,
		broadcasts: broadcasts,
		password:   password,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: msg, Code: "validation"})
}

// classify maps an error kind to an HTTP status and error code
func classify(err error) (int, string) {
	var cooldown *wallet.CooldownError
	switch {
	case errors.As(err, &cooldown):
		return http.StatusTooManyRequests, "cooldown"
	case wallet.IsWalletExistsError(err):
		return http.StatusConflict, "wallet_exists"
	case errors.Is(err, nano.ErrLockout):
		return http.StatusLocked, "locked_out"
	case errors.Is(err, wallet.ErrLocked):
		return http.StatusUnauthorized, "locked"
	case errors.Is(err, nano.ErrAuthentication):
		return http.StatusUnauthorized, "authentication"
	case errors.Is(err, nano.ErrDuplicateInFlight):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, nano.ErrFork):
		return http.StatusConflict, "fork"
	case errors.Is(err, nano.ErrOldBlock):
		return http.StatusConflict, "old_block"
	case errors.Is(err, addressbook.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, nano.ErrValidation):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, nano.ErrBuild):
		return http.StatusBadRequest, "build"
	case errors.Is(err, nano.ErrProofOfWork):
		return http.StatusServiceUnavailable, "proof_of_work"
	case errors.Is(err, nano.ErrNetwork):
		return http.StatusBadGateway, "network"
	}
	return http.StatusInternalServerError, "internal"
}

// parseIndex reads the optional account index query parameter
func parseIndex(r *http.Request) (uint32, error) {
	s := r.URL.Query().Get("index")
	if s == "" {
		return 0, nil
	}
	index, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.New("invalid index: must be a non-negative integer")
	}
	return uint32(index), nil
}

// Generate handles POST /wallet/generate
// @Summary      Generate new wallet
// @Description  Generates a new seed, encrypts it with the wallet password and unlocks the wallet
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Success      200  {object}  model.GenerateResponse
// @Failure      409  {object}  model.ErrorResponse
// @Router       /wallet/generate [post]
func (h *NanoHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. should be POST", http.StatusMethodNotAllowed)
		return
	}

	// Get password as []byte, use it, then zero it immediately
	passwordBytes, err := h.password()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer clear(passwordBytes)

	address, err := h.session.Generate(r.Context(), passwordBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		Success: true,
		Message: "Wallet generated successfully",
		Address: address,
	})
}

// Import handles POST /wallet/import
// @Summary      Import wallet
// @Description  Imports a seed given as 64 hex characters or a 24-word mnemonic
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportRequest  true  "Seed or mnemonic"
// @Success      200      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/import [post]
func (h *NanoHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}

	passwordBytes, err := h.password()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer clear(passwordBytes)

	address, err := h.session.Import(r.Context(), req.Secret, passwordBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		Success: true,
		Message: "Wallet imported successfully",
		Address: address,
	})
}

// Unlock handles POST /wallet/unlock
// @Summary      Unlock wallet
// @Description  Decrypts the seed. Ten failed attempts lock the wallet for 30 minutes
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.UnlockRequest  true  "Password"
// @Success      200      {object}  model.UnlockResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      423      {object}  model.ErrorResponse
// @Router       /wallet/unlock [post]
func (h *NanoHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}
	passwordBytes := []byte(req.Password)
	defer clear(passwordBytes)

	if err := h.session.Unlock(r.Context(), passwordBytes); err != nil {
		writeError(w, err)
		return
	}

	address, err := h.session.Address(0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.UnlockResponse{Unlocked: true, Address: address})
}

// Lock handles POST /wallet/lock
// @Summary      Lock wallet
// @Description  Zeroes the in-memory seed
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.UnlockResponse
// @Router       /wallet/lock [post]
func (h *NanoHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	h.session.Lock()
	writeJSON(w, http.StatusOK, model.UnlockResponse{Unlocked: false})
}

// Accounts handles GET and POST /wallet/accounts
// @Summary      List or add accounts
// @Description  GET lists the derived accounts, POST derives the next one
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.AccountsResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /wallet/accounts [get]
// @Router       /wallet/accounts [post]
func (h *NanoHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if _, err := h.session.AddAccount(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
		return
	}

	accounts, err := h.session.Accounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.AccountsResponse{Accounts: accounts})
}

// GetBalance handles GET /wallet/balance
// @Summary      Get account balance
// @Description  Gets confirmed and pending balance of an account with its fiat value
// @Tags         wallet
// @Produce      json
// @Param        index  query     int  false  "Account index"
// @Success      200    {object}  model.BalanceResponse
// @Failure      502    {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *NanoHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	index, err := parseIndex(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	balance, err := h.session.GetBalance(r.Context(), index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Receive handles GET and POST /wallet/receive
// @Summary      Receive funds
// @Description  GET returns a payment URI and QR code, POST pockets all pending blocks
// @Tags         wallet
// @Produce      json
// @Param        index   query     int     false  "Account index"
// @Param        amount  query     string  false  "Requested amount in NANO (GET only)"
// @Success      200     {object}  model.PaymentRequestResponse
// @Success      201     {object}  model.ReceivedResponse
// @Router       /wallet/receive [get]
// @Router       /wallet/receive [post]
func (h *NanoHandler) Receive(w http.ResponseWriter, r *http.Request) {
	index, err := parseIndex(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		req, err := h.session.PaymentRequest(index, r.URL.Query().Get("amount"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	case http.MethodPost:
		address, err := h.session.Address(index)
		if err != nil {
			writeError(w, err)
			return
		}
		hashes, err := h.session.ReceivePending(r.Context(), index)
		if err != nil && len(hashes) == 0 {
			writeError(w, err)
			return
		}
		if err != nil {
			log.Warn().Err(err).Int("received", len(hashes)).Msg("Receive stopped early")
		}
		resp := model.ReceivedResponse{Address: address, Hashes: make([]string, 0, len(hashes))}
		for _, hash := range hashes {
			resp.Hashes = append(resp.Hashes, hash.String())
		}
		writeJSON(w, http.StatusCreated, resp)
	default:
		http.Error(w, "Method not allowed. Should be GET or POST", http.StatusMethodNotAllowed)
	}
}

// Send handles POST /wallet/send
// @Summary      Send NANO
// @Description  Builds, signs and publishes a send block
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.SendRequest  true  "Payment data"
// @Success      200      {object}  model.BlockResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Failure      429      {object}  model.ErrorResponse
// @Router       /wallet/send [post]
func (h *NanoHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}

	hash, err := h.session.Send(r.Context(), req.Index, req.ToAddress, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BlockResponse{Hash: hash.String()})
}

// ChangeRepresentative handles POST /wallet/representative
// @Summary      Change representative
// @Description  Publishes a change block delegating the account weight
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.ChangeRepresentativeRequest  true  "Representative"
// @Success      200      {object}  model.BlockResponse
// @Router       /wallet/representative [post]
func (h *NanoHandler) ChangeRepresentative(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ChangeRepresentativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}

	hash, err := h.session.ChangeRepresentative(r.Context(), req.Index, req.Representative)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.BlockResponse{Hash: hash.String()})
}

// TransactionHistory handles GET /wallet/history
// @Summary      Get account history
// @Description  Gets account blocks with filtering capability
// @Tags         wallet
// @Produce      json
// @Param        index      query     int      false  "Account index"
// @Param        count      query     int      false  "Number of blocks to read"
// @Param        type       query     string   false  "Transaction type: send or receive"
// @Param        hash       query     string   false  "Block hash"
// @Param        from       query     string   false  "Start date (YYYY-MM-DD)"
// @Param        to         query     string   false  "End date (YYYY-MM-DD)"
// @Param        minAmount  query     string   false  "Minimum amount in NANO"
// @Param        maxAmount  query     string   false  "Maximum amount in NANO"
// @Success      200  {object}  model.HistoryResponse
// @Router       /wallet/history [get]
func (h *NanoHandler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	var req model.HistoryRequest
	var err error
	query := r.URL.Query()

	if req.Index, err = parseIndex(r); err != nil {
		badRequest(w, err.Error())
		return
	}
	if countStr := query.Get("count"); countStr != "" {
		if req.Count, err = strconv.Atoi(countStr); err != nil {
			badRequest(w, "invalid count")
			return
		}
	}

	// Parse date parameters (YYYY-MM-DD)
	const dateLayout = "2006-01-02"
	if fromStr := query.Get("from"); fromStr != "" {
		t, err := time.Parse(dateLayout, fromStr)
		if err != nil {
			badRequest(w, "invalid from date: use YYYY-MM-DD (e.g. 2006-01-02)")
			return
		}
		req.From = &t
	}
	if toStr := query.Get("to"); toStr != "" {
		t, err := time.Parse(dateLayout, toStr)
		if err != nil {
			badRequest(w, "invalid to date: use YYYY-MM-DD (e.g. 2006-01-02)")
			return
		}
		// End of day so filter is inclusive
		t = t.Add(24*time.Hour - time.Nanosecond)
		req.To = &t
	}

	if typeStr := query.Get("type"); typeStr != "" {
		txType := model.TransactionType(typeStr)
		req.Type = &txType
	}
	if hash := query.Get("hash"); hash != "" {
		req.Hash = &hash
	}
	if minAmount := query.Get("minAmount"); minAmount != "" {
		req.MinAmount = &minAmount
	}
	if maxAmount := query.Get("maxAmount"); maxAmount != "" {
		req.MaxAmount = &maxAmount
	}

	if err := req.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	history, err := h.session.GetTransactions(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// Export handles GET /wallet/export
// @Summary      Export seed
// @Description  Returns the seed as hex and as a 24-word mnemonic. The wallet must be unlocked
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.ExportResponse
// @Failure      401  {object}  model.ErrorResponse
// @Router       /wallet/export [get]
func (h *NanoHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	seed, err := h.session.ExportSeed()
	if err != nil {
		writeError(w, err)
		return
	}
	mnemonic, err := h.session.ExportMnemonic()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, model.ExportResponse{Seed: seed, Mnemonic: mnemonic})
}

// Backup handles POST /wallet/backup
// @Summary      Export encrypted backup
// @Description  Returns the seed sealed under the given backup password. The wallet must be unlocked
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.BackupRequest  true  "Backup password"
// @Success      200      {object}  vault.Backup
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Router       /wallet/backup [post]
func (h *NanoHandler) Backup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.BackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}
	passwordBytes := []byte(req.Password)
	defer clear(passwordBytes)

	backup, err := h.session.ExportBackup(passwordBytes)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Disposition", `attachment; filename="nano-wallet-backup.json"`)
	writeJSON(w, http.StatusOK, backup)
}

// Restore handles POST /wallet/restore
// @Summary      Restore encrypted backup
// @Description  Opens a backup from POST /wallet/backup and stores its seed under the wallet password
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.RestoreRequest  true  "Backup and its password"
// @Success      200      {object}  model.GenerateResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      409      {object}  model.ErrorResponse
// @Router       /wallet/restore [post]
func (h *NanoHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, err.Error())
		return
	}
	backupPassword := []byte(req.Password)
	defer clear(backupPassword)

	passwordBytes, err := h.password()
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	defer clear(passwordBytes)

	address, err := h.session.RestoreBackup(r.Context(), req.Backup, backupPassword, passwordBytes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateResponse{
		Success: true,
		Message: "Wallet restored successfully",
		Address: address,
	})
}

// ValidateAddress handles GET /address/validate
// @Summary      Validate address
// @Description  Checks prefix, alphabet and checksum of a xrb_ or nano_ address
// @Tags         address
// @Produce      json
// @Param        address  query     string  true  "Address"
// @Success      200      {object}  model.AddressResponse
// @Router       /address/validate [get]
func (h *NanoHandler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address := r.URL.Query().Get("address")
	pub, err := nano.DecodeAddress(address)
	if err != nil {
		writeJSON(w, http.StatusOK, model.AddressResponse{Valid: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, model.AddressResponse{
		Valid:     true,
		Address:   pub.Address(),
		PublicKey: pub.String(),
	})
}

// Broadcasts handles GET /broadcasts
// @Summary      List in-flight broadcasts
// @Description  Lists blocks currently waiting for proof of work or submission
// @Tags         broadcast
// @Produce      json
// @Success      200  {array}  model.BroadcastStatus
// @Router       /broadcasts [get]
func (h *NanoHandler) Broadcasts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	ops := h.broadcasts.Operations()
	statuses := make([]model.BroadcastStatus, 0, len(ops))
	for _, op := range ops {
		statuses = append(statuses, model.BroadcastStatus{
			ID:      op.ID.String(),
			Root:    op.Root.String(),
			Intent:  op.Intent.String(),
			State:   op.State.String(),
			Started: op.Started,
			Expires: op.Expires,
		})
	}
	writeJSON(w, http.StatusOK, statuses)
}
