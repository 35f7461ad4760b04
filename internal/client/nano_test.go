package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/nano-wallet/internal/nano"
)

const (
	testAccount = "xrb_38ncappfy6i6mmz5kx93e6rh88tnx9ne68g644u88u9wjqwr3ua5jdrhqgxm"
	testHash    = "E2FB233EF4554077A7BF1AA85851D5BF0B36965D2B0FB504B2BC778AB89917D3"
)

// rpcServer answers every request with handler(action, body).
func rpcServer(t *testing.T, handler func(action string, body map[string]any) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		status, resp := handler(body["action"].(string), body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *NanoClient {
	return NewNanoClient(url, WithBackOff(func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}))
}

func TestProcess(t *testing.T) {
	srv := rpcServer(t, func(action string, body map[string]any) (int, string) {
		assert.Equal(t, "process", action)
		assert.Equal(t, "send", body["subtype"])
		var block map[string]string
		require.NoError(t, json.Unmarshal([]byte(body["block"].(string)), &block))
		assert.Equal(t, "state", block["type"])
		return http.StatusOK, `{"hash":"` + testHash + `"}`
	})

	block := &nano.StateBlock{Intent: nano.IntentSend, Account: testAccount, Balance: uint256.NewInt(1)}
	h, err := newTestClient(srv.URL).Process(t.Context(), block)
	require.NoError(t, err)
	assert.Equal(t, testHash, h.String())
}

func TestProcessErrors(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{"fork", "Fork", nano.ErrFork},
		{"old block", "Old block", nano.ErrOldBlock},
		{"other", "Gap previous block", nano.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := rpcServer(t, func(string, map[string]any) (int, string) {
				calls.Add(1)
				return http.StatusOK, `{"error":"` + tt.message + `"}`
			})
			_, err := newTestClient(srv.URL).Process(t.Context(), &nano.StateBlock{Balance: uint256.NewInt(0)})
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, int32(1), calls.Load())
		})
	}

	var perr *nano.ProcessError
	srv := rpcServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"error":"Gap previous block"}`
	})
	_, err := newTestClient(srv.URL).Process(t.Context(), &nano.StateBlock{Balance: uint256.NewInt(0)})
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "Gap previous block", perr.Message)
}

func TestProcessNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := rpcServer(t, func(string, map[string]any) (int, string) {
		calls.Add(1)
		return http.StatusBadGateway, ``
	})
	_, err := newTestClient(srv.URL).Process(t.Context(), &nano.StateBlock{Balance: uint256.NewInt(0)})
	require.ErrorIs(t, err, nano.ErrNetwork)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGenerateWorkRetries(t *testing.T) {
	var calls atomic.Int32
	srv := rpcServer(t, func(action string, body map[string]any) (int, string) {
		assert.Equal(t, "work_generate", action)
		assert.Equal(t, testHash, body["hash"])
		if calls.Add(1) < 3 {
			return http.StatusServiceUnavailable, ``
		}
		return http.StatusOK, `{"work":"2bf29ef00786a6bc"}`
	})

	root, err := nano.ParseHash(testHash)
	require.NoError(t, err)
	w, err := newTestClient(srv.URL).GenerateWork(t.Context(), root)
	require.NoError(t, err)
	assert.Equal(t, "2bf29ef00786a6bc", w.String())
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerateWorkGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := rpcServer(t, func(string, map[string]any) (int, string) {
		calls.Add(1)
		return http.StatusServiceUnavailable, ``
	})
	c := newTestClient(srv.URL)
	_, err := c.GenerateWork(t.Context(), nano.Hash{})
	require.ErrorIs(t, err, nano.ErrNetwork)
	assert.Equal(t, int32(defaultMaxRetries+1), calls.Load())
}

func TestAccountInfo(t *testing.T) {
	srv := rpcServer(t, func(action string, body map[string]any) (int, string) {
		assert.Equal(t, "account_info", action)
		assert.Equal(t, testAccount, body["account"])
		return http.StatusOK, `{
			"frontier": "` + testHash + `",
			"balance": "1000000000000000000000000000000",
			"representative": "` + testAccount + `",
			"block_count": "33"
		}`
	})

	info, err := newTestClient(srv.URL).AccountInfo(t.Context(), testAccount)
	require.NoError(t, err)
	assert.Equal(t, testHash, info.Frontier.String())
	assert.Equal(t, "1000000000000000000000000000000", info.Balance.Dec())
	assert.Equal(t, testAccount, info.Representative)
	assert.Equal(t, uint64(33), info.BlockCount)
}

func TestAccountInfoNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := rpcServer(t, func(string, map[string]any) (int, string) {
		calls.Add(1)
		return http.StatusOK, `{"error":"Account not found"}`
	})
	_, err := newTestClient(srv.URL).AccountInfo(t.Context(), testAccount)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Equal(t, int32(1), calls.Load(), "node errors are not retried")
}

func TestPending(t *testing.T) {
	srv := rpcServer(t, func(action string, body map[string]any) (int, string) {
		assert.Equal(t, "accounts_pending", action)
		assert.Equal(t, "true", body["source"])
		return http.StatusOK, `{"blocks":{"` + testAccount + `":{"` + testHash + `":{"amount":"6000000000000000000000000000000","source":"` + testAccount + `"}}}}`
	})

	blocks, err := newTestClient(srv.URL).Pending(t.Context(), testAccount, 10)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, testHash, blocks[0].Hash.String())
	assert.Equal(t, "6000000000000000000000000000000", blocks[0].Amount.Dec())
	assert.Equal(t, testAccount, blocks[0].Source)
}

func TestPendingEmpty(t *testing.T) {
	srv := rpcServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"blocks":{"` + testAccount + `":""}}`
	})
	blocks, err := newTestClient(srv.URL).Pending(t.Context(), testAccount, 10)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestHistory(t *testing.T) {
	srv := rpcServer(t, func(action string, body map[string]any) (int, string) {
		assert.Equal(t, "account_history", action)
		assert.Equal(t, "2", body["count"])
		return http.StatusOK, `{"account":"` + testAccount + `","history":[
			{"type":"send","account":"` + testAccount + `","amount":"5","hash":"` + testHash + `","local_timestamp":"1551532723"}
		]}`
	})

	entries, err := newTestClient(srv.URL).History(t.Context(), testAccount, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "send", entries[0].Type)
	assert.Equal(t, uint64(5), entries[0].Amount.Uint64())
	assert.Equal(t, int64(1551532723), entries[0].Timestamp.Unix())
}

func TestHistoryEmpty(t *testing.T) {
	srv := rpcServer(t, func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"account":"` + testAccount + `","history":""}`
	})
	entries, err := newTestClient(srv.URL).History(t.Context(), testAccount, 2)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetNanoPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "nano", r.URL.Query().Get("ids"))
		assert.Equal(t, "eur", r.URL.Query().Get("vs_currencies"))
		_, _ = w.Write([]byte(`{"nano":{"eur":0.9712}}`))
	}))
	t.Cleanup(srv.Close)

	rate, err := NewCoinGeckoClient(srv.URL).GetNanoPrice(t.Context(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "0.97", rate)
}

func TestGetNanoPriceMissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"nano":{}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewCoinGeckoClient(srv.URL).GetNanoPrice(t.Context(), "usd")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "usd"))
}
