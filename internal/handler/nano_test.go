package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/nano-wallet/internal/addressbook"
	"github.com/AlexZinkM/nano-wallet/internal/broadcast"
	"github.com/AlexZinkM/nano-wallet/internal/client"
	"github.com/AlexZinkM/nano-wallet/internal/common"
	"github.com/AlexZinkM/nano-wallet/internal/crypto"
	"github.com/AlexZinkM/nano-wallet/internal/model"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
	"github.com/AlexZinkM/nano-wallet/internal/store"
	"github.com/AlexZinkM/nano-wallet/internal/vault"
	"github.com/AlexZinkM/nano-wallet/wallet"
)

const (
	testSeedHex  = "3E8ABFC17DC5DE84B18935BB40FEB67FB409724B902E028736120AED3092DAEF"
	testAddress0 = "xrb_38ncappfy6i6mmz5kx93e6rh88tnx9ne68g644u88u9wjqwr3ua5jdrhqgxm"
	testAddress1 = "xrb_36p4xfxn365i9h7oxta6tdmu53zndrm45r3x9ag9naa3mxnnpn3p6tjfqzqm"
)

type stubLedger struct {
	info    *client.AccountInfo
	pending []client.PendingBlock
}

func (l *stubLedger) AccountInfo(context.Context, string) (*client.AccountInfo, error) {
	if l.info == nil {
		return nil, client.ErrAccountNotFound
	}
	return l.info, nil
}

func (l *stubLedger) Pending(context.Context, string, int) ([]client.PendingBlock, error) {
	return l.pending, nil
}

func (l *stubLedger) History(context.Context, string, int) ([]client.HistoryEntry, error) {
	return nil, nil
}

type stubSubmitter struct {
	err error
}

func (s *stubSubmitter) Process(_ context.Context, block *nano.StateBlock) (nano.Hash, error) {
	if s.err != nil {
		return nano.Hash{}, s.err
	}
	return block.Hash()
}

type testServer struct {
	handler   *NanoHandler
	session   *wallet.Session
	ledger    *stubLedger
	submitter *stubSubmitter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{ledger: &stubLedger{}, submitter: &stubSubmitter{}}
	worker := nano.NewWorker(nil, nano.WithThreads(2), nano.WithThreshold(0xfff0000000000000))
	coordinator := broadcast.NewCoordinator(ts.submitter, worker, nil)
	v := vault.New(store.NewMemoryStore(), vault.WithKDF(crypto.KDFScrypt))
	ts.session = wallet.New(v, ts.ledger, coordinator)
	ts.handler = NewNanoHandler(ts.session, coordinator, func() ([]byte, error) {
		return []byte("hunter2"), nil
	})
	return ts
}

func (ts *testServer) imported(t *testing.T) *testServer {
	t.Helper()
	_, err := ts.session.Import(t.Context(), testSeedHex, []byte("hunter2"))
	require.NoError(t, err)
	return ts
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{nano.ErrInvalidChecksum, http.StatusBadRequest, "validation"},
		{fmt.Errorf("%w: no signature", nano.ErrBuild), http.StatusBadRequest, "build"},
		{fmt.Errorf("%w: 9 attempts remaining", nano.ErrAuthentication), http.StatusUnauthorized, "authentication"},
		{wallet.ErrLocked, http.StatusUnauthorized, "locked"},
		{&nano.LockoutError{Until: time.Now()}, http.StatusLocked, "locked_out"},
		{nano.ErrDuplicateInFlight, http.StatusConflict, "duplicate"},
		{nano.ErrFork, http.StatusConflict, "fork"},
		{nano.ErrOldBlock, http.StatusConflict, "old_block"},
		{&nano.ProcessError{Message: "Gap previous block"}, http.StatusBadGateway, "network"},
		{&wallet.WalletExistsError{Message: "exists"}, http.StatusConflict, "wallet_exists"},
		{&wallet.CooldownError{Remaining: time.Minute}, http.StatusTooManyRequests, "cooldown"},
		{fmt.Errorf("%w: timed out", nano.ErrProofOfWork), http.StatusServiceUnavailable, "proof_of_work"},
		{addressbook.ErrNotFound, http.StatusNotFound, "not_found"},
		{vault.ErrBackupPassword, http.StatusUnauthorized, "authentication"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestGenerateAndConflict(t *testing.T) {
	ts := newTestServer(t)

	rec := do(t, ts.handler.Generate, http.MethodPost, "/wallet/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.GenerateResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, nano.ValidAddress(resp.Address))

	rec = do(t, ts.handler.Generate, http.MethodPost, "/wallet/generate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "wallet_exists", decode[model.ErrorResponse](t, rec).Code)

	rec = do(t, ts.handler.Generate, http.MethodGet, "/wallet/generate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestImport(t *testing.T) {
	ts := newTestServer(t)

	rec := do(t, ts.handler.Import, http.MethodPost, "/wallet/import", `{"secret":"`+testSeedHex+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAddress0, decode[model.GenerateResponse](t, rec).Address)

	ts = newTestServer(t)
	rec = do(t, ts.handler.Import, http.MethodPost, "/wallet/import", `{"secret":"abcd"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, ts.handler.Import, http.MethodPost, "/wallet/import", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnlockLock(t *testing.T) {
	ts := newTestServer(t).imported(t)

	rec := do(t, ts.handler.Lock, http.MethodPost, "/wallet/lock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ts.session.Unlocked())

	rec = do(t, ts.handler.Export, http.MethodGet, "/wallet/export", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, ts.handler.Unlock, http.MethodPost, "/wallet/unlock", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication", decode[model.ErrorResponse](t, rec).Code)

	rec = do(t, ts.handler.Unlock, http.MethodPost, "/wallet/unlock", `{"password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.UnlockResponse](t, rec)
	assert.True(t, resp.Unlocked)
	assert.Equal(t, testAddress0, resp.Address)
}

func TestUnlockLockedOut(t *testing.T) {
	ts := newTestServer(t).imported(t)

	var rec *httptest.ResponseRecorder
	for range vault.MaxAttempts {
		rec = do(t, ts.handler.Unlock, http.MethodPost, "/wallet/unlock", `{"password":"wrong"}`)
	}
	assert.Equal(t, http.StatusLocked, rec.Code)

	rec = do(t, ts.handler.Unlock, http.MethodPost, "/wallet/unlock", `{"password":"hunter2"}`)
	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Equal(t, "locked_out", decode[model.ErrorResponse](t, rec).Code)
}

func TestAccounts(t *testing.T) {
	ts := newTestServer(t).imported(t)

	rec := do(t, ts.handler.Accounts, http.MethodPost, "/wallet/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.AccountsResponse](t, rec)
	require.Len(t, resp.Accounts, 2)
	assert.Equal(t, testAddress1, resp.Accounts[1].Address)

	rec = do(t, ts.handler.Accounts, http.MethodGet, "/wallet/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[model.AccountsResponse](t, rec).Accounts, 2)
}

func TestGetBalance(t *testing.T) {
	ts := newTestServer(t).imported(t)
	balance, err := common.NanoToRaw("2.5")
	require.NoError(t, err)
	ts.ledger.info = &client.AccountInfo{Frontier: nano.Hash{0x01}, Balance: balance, Representative: testAddress1}

	rec := do(t, ts.handler.GetBalance, http.MethodGet, "/wallet/balance?index=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.BalanceResponse](t, rec)
	assert.Equal(t, "2.5", resp.Balance)
	assert.True(t, resp.Opened)

	rec = do(t, ts.handler.GetBalance, http.MethodGet, "/wallet/balance?index=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSend(t *testing.T) {
	ts := newTestServer(t).imported(t)
	balance, err := common.NanoToRaw("2")
	require.NoError(t, err)
	ts.ledger.info = &client.AccountInfo{Frontier: nano.Hash{0x01}, Balance: balance, Representative: testAddress1}

	rec := do(t, ts.handler.Send, http.MethodPost, "/wallet/send",
		`{"toAddress":"`+testAddress1+`","amount":"5"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, ts.handler.Send, http.MethodPost, "/wallet/send",
		`{"toAddress":"`+testAddress1+`","amount":"1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[model.BlockResponse](t, rec).Hash, 64)
}

func TestSendFork(t *testing.T) {
	ts := newTestServer(t).imported(t)
	balance, err := common.NanoToRaw("2")
	require.NoError(t, err)
	ts.ledger.info = &client.AccountInfo{Frontier: nano.Hash{0x01}, Balance: balance, Representative: testAddress1}
	ts.submitter.err = nano.ErrFork

	rec := do(t, ts.handler.Send, http.MethodPost, "/wallet/send",
		`{"toAddress":"`+testAddress1+`","amount":"1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "fork", decode[model.ErrorResponse](t, rec).Code)
}

func TestReceive(t *testing.T) {
	ts := newTestServer(t).imported(t)

	rec := do(t, ts.handler.Receive, http.MethodGet, "/wallet/receive?amount=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	pr := decode[model.PaymentRequestResponse](t, rec)
	assert.Equal(t, testAddress0, pr.Address)
	assert.True(t, strings.HasPrefix(pr.URI, "xrb:"+testAddress0))

	amount, err := common.NanoToRaw("1")
	require.NoError(t, err)
	ts.ledger.pending = []client.PendingBlock{{Hash: nano.Hash{0x0a}, Amount: amount}}

	rec = do(t, ts.handler.Receive, http.MethodPost, "/wallet/receive", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[model.ReceivedResponse](t, rec)
	assert.Equal(t, testAddress0, resp.Address)
	assert.Len(t, resp.Hashes, 1)
}

func TestReceiveLocked(t *testing.T) {
	ts := newTestServer(t).imported(t)
	ts.session.Lock()

	amount, err := common.NanoToRaw("1")
	require.NoError(t, err)
	ts.ledger.pending = []client.PendingBlock{{Hash: nano.Hash{0x0a}, Amount: amount}}

	rec := do(t, ts.handler.Receive, http.MethodPost, "/wallet/receive", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "locked", decode[model.ErrorResponse](t, rec).Code)
}

func TestHistoryBadQuery(t *testing.T) {
	ts := newTestServer(t).imported(t)

	for _, target := range []string{
		"/wallet/history?from=yesterday",
		"/wallet/history?type=DEBIT",
		"/wallet/history?count=x",
		"/wallet/history?minAmount=2&maxAmount=1",
	} {
		rec := do(t, ts.handler.TransactionHistory, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}

	rec := do(t, ts.handler.TransactionHistory, http.MethodGet, "/wallet/history?type=send&from=2024-01-01&to=2024-01-31", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExport(t *testing.T) {
	ts := newTestServer(t).imported(t)

	rec := do(t, ts.handler.Export, http.MethodGet, "/wallet/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	resp := decode[model.ExportResponse](t, rec)
	assert.Equal(t, testSeedHex, resp.Seed)
	assert.Len(t, strings.Fields(resp.Mnemonic), 24)
}

func TestBackupRestore(t *testing.T) {
	ts := newTestServer(t).imported(t)

	rec := do(t, ts.handler.Backup, http.MethodPost, "/wallet/backup", `{"password":"offsite"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	backup := rec.Body.String()
	assert.NotContains(t, strings.ToUpper(backup), testSeedHex)

	restored := newTestServer(t)
	body := fmt.Sprintf(`{"backup":%s,"password":"guess"}`, strings.TrimSpace(backup))
	rec = do(t, restored.handler.Restore, http.MethodPost, "/wallet/restore", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authentication", decode[model.ErrorResponse](t, rec).Code)

	body = fmt.Sprintf(`{"backup":%s,"password":"offsite"}`, strings.TrimSpace(backup))
	rec = do(t, restored.handler.Restore, http.MethodPost, "/wallet/restore", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testAddress0, decode[model.GenerateResponse](t, rec).Address)

	rec = do(t, restored.handler.Restore, http.MethodPost, "/wallet/restore", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, restored.handler.Restore, http.MethodPost, "/wallet/restore", `{"backup":{"version":9},"password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.session.Lock()
	rec = do(t, ts.handler.Backup, http.MethodPost, "/wallet/backup", `{"password":"offsite"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestValidateAddress(t *testing.T) {
	ts := newTestServer(t)

	nanoForm := "nano_" + strings.TrimPrefix(testAddress0, "xrb_")
	rec := do(t, ts.handler.ValidateAddress, http.MethodGet, "/address/validate?address="+nanoForm, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.AddressResponse](t, rec)
	assert.True(t, resp.Valid)
	assert.Equal(t, testAddress0, resp.Address)
	assert.Len(t, resp.PublicKey, 64)

	bad := testAddress0[:len(testAddress0)-1] + "1"
	rec = do(t, ts.handler.ValidateAddress, http.MethodGet, "/address/validate?address="+bad, "")
	resp = decode[model.AddressResponse](t, rec)
	assert.False(t, resp.Valid)
	assert.NotEmpty(t, resp.Error)
}

func TestBroadcastsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rec := do(t, ts.handler.Broadcasts, http.MethodGet, "/broadcasts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.BroadcastStatus](t, rec))
}
