package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coconutick512/bot-for-crypt/internal/assets"
	"github.com/coconutick512/bot-for-crypt/internal/config"
	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

const testEVMAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

func testProvidersConfig(baseURL string) *config.ProvidersConfig {
	return &config.ProvidersConfig{
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  2,
		RetryDelay:     10 * time.Millisecond,
		Etherscan:      config.EtherscanConfig{BaseURL: baseURL, APIKey: "test-key"},
		Tron:           config.TronConfig{BaseURL: baseURL, PageSize: 50},
		Solana:         config.SolanaConfig{RPCURL: baseURL, IndexerURL: baseURL, PageSize: 50},
	}
}

func testCatalog() *assets.Catalog {
	return assets.NewCatalog(assets.DefaultAssets())
}

func TestEtherscanFetchBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("action"); got != "tokenbalance" {
			t.Errorf("unexpected action %q", got)
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":"1500000"}`))
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	balance, err := a.FetchBalance(context.Background(), testEVMAddress, "USDT")
	if err != nil {
		t.Fatalf("FetchBalance failed: %v", err)
	}
	if balance.String() != "1.5" {
		t.Errorf("expected balance 1.5, got %s", balance.String())
	}
}

func TestEtherscanSendsChecksummedAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("address"); got != testEVMAddress {
			t.Errorf("expected checksummed address %q, got %q", testEVMAddress, got)
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":"0"}`))
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	lowercase := "0x71c7656ec7ab88b098defb751b7401b5f6d8976f"
	if _, err := a.FetchBalance(context.Background(), lowercase, "USDT"); err != nil {
		t.Fatalf("FetchBalance failed: %v", err)
	}
}

func TestEtherscanFetchBalanceUnsupportedToken(t *testing.T) {
	a := NewEtherscanAdapter(testProvidersConfig("http://127.0.0.1:0"), testCatalog(), nil)

	_, err := a.FetchBalance(context.Background(), testEVMAddress, "DOGE")
	if !utils.IsCode(err, utils.ErrCodeUnsupportedToken) {
		t.Fatalf("expected UNSUPPORTED_TOKEN, got %v", err)
	}
}

func TestEtherscanFetchIncomingTransfers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":[{
			"hash":"0xabc123",
			"from":"0x1111111111111111111111111111111111111111",
			"to":"0x71c7656ec7ab88b098defb751b7401b5f6d8976f",
			"contractAddress":"0xdac17f958d2ee523a2206206994597c13d831ec7",
			"value":"1500000",
			"tokenSymbol":"USDT",
			"tokenDecimal":"6",
			"timeStamp":"1710000000"
		}]}`))
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	transfers, err := a.FetchIncomingTransfers(context.Background(), testEVMAddress)
	if err != nil {
		t.Fatalf("FetchIncomingTransfers failed: %v", err)
	}
	if len(transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(transfers))
	}

	tr := transfers[0]
	if tr.TxHash != "0xabc123" {
		t.Errorf("unexpected tx hash %q", tr.TxHash)
	}
	if tr.Decimals != 6 {
		t.Errorf("expected 6 decimals, got %d", tr.Decimals)
	}
	if tr.RawAmount != "1500000" {
		t.Errorf("unexpected raw amount %q", tr.RawAmount)
	}
	if !tr.Timestamp.Equal(time.Unix(1710000000, 0)) {
		t.Errorf("unexpected timestamp %v", tr.Timestamp)
	}
}

func TestEtherscanNoTransactionsFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0","message":"No transactions found","result":[]}`))
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	transfers, err := a.FetchIncomingTransfers(context.Background(), testEVMAddress)
	if err != nil {
		t.Fatalf("empty result set should not be an error: %v", err)
	}
	if len(transfers) != 0 {
		t.Errorf("expected empty batch, got %d transfers", len(transfers))
	}
}

func TestEtherscanMalformedResultIsEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","message":"OK","result":"not-a-list"}`))
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	transfers, err := a.FetchIncomingTransfers(context.Background(), testEVMAddress)
	if err != nil {
		t.Fatalf("malformed result should degrade to empty batch: %v", err)
	}
	if len(transfers) != 0 {
		t.Errorf("expected empty batch, got %d transfers", len(transfers))
	}
}

func TestEtherscanTransportErrorIsExternalSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	_, err := a.FetchIncomingTransfers(context.Background(), testEVMAddress)
	if !utils.IsCode(err, utils.ErrCodeExternalSource) {
		t.Fatalf("expected EXTERNAL_SOURCE_UNAVAILABLE, got %v", err)
	}
}

func TestEtherscanRetriesTransientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":"42000000"}`))
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	balance, err := a.FetchBalance(context.Background(), testEVMAddress, "USDC")
	if err != nil {
		t.Fatalf("retry should have recovered: %v", err)
	}
	if balance.String() != "42" {
		t.Errorf("expected balance 42, got %s", balance.String())
	}
	if calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", calls)
	}
}

func TestEtherscanRateLimitBackoffThenRecovers(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"status":"1","message":"OK","result":"7000000"}`))
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	start := time.Now()
	balance, err := a.FetchBalance(context.Background(), testEVMAddress, "USDT")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("rate-limited call should have recovered: %v", err)
	}
	if balance.String() != "7" {
		t.Errorf("expected balance 7, got %s", balance.String())
	}
	if calls != 2 {
		t.Errorf("expected 2 provider calls, got %d", calls)
	}
	// The Retry-After window must be observed before the second attempt
	if elapsed < time.Second {
		t.Errorf("expected at least 1s of backoff, got %v", elapsed)
	}
}

func TestEtherscanRateLimitBackoffHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewEtherscanAdapter(testProvidersConfig(srv.URL), testCatalog(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := a.FetchBalance(ctx, testEVMAddress, "USDT")
	elapsed := time.Since(start)

	if !utils.IsCode(err, utils.ErrCodeExternalSource) {
		t.Fatalf("expected EXTERNAL_SOURCE_UNAVAILABLE, got %v", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("cancellation should cut the backoff short, waited %v", elapsed)
	}
}

func TestEtherscanNetworkIdentity(t *testing.T) {
	a := NewEtherscanAdapter(testProvidersConfig("http://127.0.0.1:0"), testCatalog(), nil)
	if a.Network() != models.NetworkEVM {
		t.Errorf("expected EVM network, got %s", a.Network())
	}
}
