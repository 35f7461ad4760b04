package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"

	"github.com/AlexZinkM/nano-wallet/internal/common"
	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	maxResponseSize   = 4 << 20
)

// ErrAccountNotFound is returned by AccountInfo for an account without an
// open block.
var ErrAccountNotFound = errors.New("account not found")

// NanoClient is a client for a node's JSON RPC. Reads and work requests are
// retried with exponential backoff on transport failures; block submission
// never is.
type NanoClient struct {
	rpcURL     string
	client     *http.Client
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// NanoClientOption configures a NanoClient.
type NanoClientOption func(*NanoClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) NanoClientOption {
	return func(n *NanoClient) {
		n.client = c
	}
}

// WithRetries sets how many times a failed read is retried.
func WithRetries(n uint64) NanoClientOption {
	return func(c *NanoClient) {
		c.maxRetries = n
	}
}

// WithBackOff replaces the retry policy.
func WithBackOff(f func() backoff.BackOff) NanoClientOption {
	return func(c *NanoClient) {
		c.newBackOff = f
	}
}

// NewNanoClient creates a client for the node at rpcURL.
func NewNanoClient(rpcURL string, opts ...NanoClientOption) *NanoClient {
	c := &NanoClient{
		rpcURL:     rpcURL,
		client:     &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			b.MaxElapsedTime = 15 * time.Second
			return b
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rpcError is a node-level error response; it is never retried.
type rpcError struct {
	message string
}

func (e *rpcError) Error() string {
	return "node error: " + e.message
}

type errorResponse struct {
	Error string `json:"error"`
}

// post sends one request and decodes the response into out. Node errors are
// returned as *rpcError.
func (c *NanoClient) post(ctx context.Context, request, out any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", nano.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", nano.ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", nano.ErrNetwork, resp.StatusCode)
	}

	var e errorResponse
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", nano.ErrNetwork, err)
	}
	if e.Error != "" {
		return &rpcError{message: e.Error}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", nano.ErrNetwork, err)
	}
	return nil
}

// call is post with retry for idempotent actions.
func (c *NanoClient) call(ctx context.Context, action string, request, out any) error {
	b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
	op := func() error {
		err := c.post(ctx, request, out)
		if err == nil {
			return nil
		}
		var rerr *rpcError
		if errors.As(err, &rerr) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		log.Warn().Err(err).Str("action", action).Dur("retry_in", next).Msg("rpc request failed")
	}
	return backoff.RetryNotify(op, b, notify)
}

type processRequest struct {
	Action    string `json:"action"`
	JSONBlock string `json:"json_block"`
	Subtype   string `json:"subtype,omitempty"`
	Block     string `json:"block"`
}

type hashResponse struct {
	Hash string `json:"hash"`
}

// Process submits a built block and returns its hash. Ledger rejections map
// to nano.ErrFork, nano.ErrOldBlock or *nano.ProcessError.
func (c *NanoClient) Process(ctx context.Context, block *nano.StateBlock) (nano.Hash, error) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		return nano.Hash{}, fmt.Errorf("failed to marshal block: %w", err)
	}
	req := processRequest{
		Action:    "process",
		JSONBlock: "false",
		Subtype:   subtype(block.Intent),
		Block:     string(blockJSON),
	}

	var resp hashResponse
	err = c.post(ctx, req, &resp)
	var rerr *rpcError
	if errors.As(err, &rerr) {
		return nano.Hash{}, nano.ParseProcessError(rerr.message)
	}
	if err != nil {
		return nano.Hash{}, err
	}

	h, err := nano.ParseHash(resp.Hash)
	if err != nil {
		return nano.Hash{}, fmt.Errorf("%w: invalid hash in response: %w", nano.ErrNetwork, err)
	}
	return h, nil
}

func subtype(i nano.Intent) string {
	switch i {
	case nano.IntentOpen, nano.IntentSend, nano.IntentReceive, nano.IntentChange:
		return i.String()
	}
	return ""
}

type workRequest struct {
	Action string `json:"action"`
	Hash   string `json:"hash"`
}

type workResponse struct {
	Work string `json:"work"`
}

// GenerateWork asks the node to compute proof of work for root. The result
// is not validated here.
func (c *NanoClient) GenerateWork(ctx context.Context, root nano.Hash) (nano.Work, error) {
	var resp workResponse
	err := c.call(ctx, "work_generate", workRequest{Action: "work_generate", Hash: root.String()}, &resp)
	if err != nil {
		return nano.Work{}, wrapRPC(err)
	}
	w, err := nano.ParseWork(resp.Work)
	if err != nil {
		return nano.Work{}, fmt.Errorf("%w: invalid work in response: %w", nano.ErrNetwork, err)
	}
	return w, nil
}

// AccountInfo describes an opened account.
type AccountInfo struct {
	Frontier       nano.Hash
	Balance        *uint256.Int
	Representative string
	BlockCount     uint64
}

type accountInfoRequest struct {
	Action         string `json:"action"`
	Account        string `json:"account"`
	Representative string `json:"representative"`
}

type accountInfoResponse struct {
	Frontier       string `json:"frontier"`
	Balance        string `json:"balance"`
	Representative string `json:"representative"`
	BlockCount     string `json:"block_count"`
}

// AccountInfo returns the account's frontier, balance and representative.
func (c *NanoClient) AccountInfo(ctx context.Context, account string) (*AccountInfo, error) {
	req := accountInfoRequest{Action: "account_info", Account: account, Representative: "true"}
	var resp accountInfoResponse
	if err := c.call(ctx, "account_info", req, &resp); err != nil {
		var rerr *rpcError
		if errors.As(err, &rerr) && rerr.message == "Account not found" {
			return nil, ErrAccountNotFound
		}
		return nil, wrapRPC(err)
	}

	frontier, err := nano.ParseHash(resp.Frontier)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid frontier: %w", nano.ErrNetwork, err)
	}
	balance, err := common.ParseRaw(resp.Balance)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid balance: %w", nano.ErrNetwork, err)
	}
	count, _ := strconv.ParseUint(resp.BlockCount, 10, 64)
	return &AccountInfo{
		Frontier:       frontier,
		Balance:        balance,
		Representative: resp.Representative,
		BlockCount:     count,
	}, nil
}

// PendingBlock is an incoming send not yet received.
type PendingBlock struct {
	Hash   nano.Hash
	Amount *uint256.Int
	Source string
}

type pendingRequest struct {
	Action   string   `json:"action"`
	Accounts []string `json:"accounts"`
	Count    string   `json:"count"`
	Source   string   `json:"source"`
}

type pendingResponse struct {
	// the node sends "" instead of an object when nothing is pending
	Blocks map[string]json.RawMessage `json:"blocks"`
}

type pendingEntry struct {
	Amount string `json:"amount"`
	Source string `json:"source"`
}

// Pending returns up to count pending blocks for account.
func (c *NanoClient) Pending(ctx context.Context, account string, count int) ([]PendingBlock, error) {
	req := pendingRequest{
		Action:   "accounts_pending",
		Accounts: []string{account},
		Count:    strconv.Itoa(count),
		Source:   "true",
	}
	var resp pendingResponse
	if err := c.call(ctx, "accounts_pending", req, &resp); err != nil {
		return nil, wrapRPC(err)
	}

	raw, ok := resp.Blocks[account]
	if !ok || !isObject(raw) {
		return nil, nil
	}
	var entries map[string]pendingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: failed to decode pending blocks: %w", nano.ErrNetwork, err)
	}

	blocks := make([]PendingBlock, 0, len(entries))
	for hash, e := range entries {
		h, err := nano.ParseHash(hash)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pending hash: %w", nano.ErrNetwork, err)
		}
		amount, err := common.ParseRaw(e.Amount)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid pending amount: %w", nano.ErrNetwork, err)
		}
		blocks = append(blocks, PendingBlock{Hash: h, Amount: amount, Source: e.Source})
	}
	return blocks, nil
}

// HistoryEntry is one block of an account chain as reported by the node.
type HistoryEntry struct {
	Type      string
	Account   string
	Amount    *uint256.Int
	Hash      nano.Hash
	Timestamp time.Time
}

type historyRequest struct {
	Action  string `json:"action"`
	Account string `json:"account"`
	Count   string `json:"count"`
}

type historyResponse struct {
	History json.RawMessage `json:"history"`
}

type historyEntry struct {
	Type           string `json:"type"`
	Account        string `json:"account"`
	Amount         string `json:"amount"`
	Hash           string `json:"hash"`
	LocalTimestamp string `json:"local_timestamp"`
}

// History returns the newest count blocks of account.
func (c *NanoClient) History(ctx context.Context, account string, count int) ([]HistoryEntry, error) {
	req := historyRequest{Action: "account_history", Account: account, Count: strconv.Itoa(count)}
	var resp historyResponse
	if err := c.call(ctx, "account_history", req, &resp); err != nil {
		return nil, wrapRPC(err)
	}
	if !isArray(resp.History) {
		return nil, nil
	}

	var raw []historyEntry
	if err := json.Unmarshal(resp.History, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode history: %w", nano.ErrNetwork, err)
	}
	entries := make([]HistoryEntry, 0, len(raw))
	for _, e := range raw {
		h, err := nano.ParseHash(e.Hash)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid history hash: %w", nano.ErrNetwork, err)
		}
		amount, err := common.ParseRaw(e.Amount)
		if err != nil {
			amount = new(uint256.Int)
		}
		entry := HistoryEntry{Type: e.Type, Account: e.Account, Amount: amount, Hash: h}
		if ts, err := strconv.ParseInt(e.LocalTimestamp, 10, 64); err == nil {
			entry.Timestamp = time.Unix(ts, 0).UTC()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// wrapRPC tags node errors with the network kind.
func wrapRPC(err error) error {
	var rerr *rpcError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %w", nano.ErrNetwork, err)
	}
	return err
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
