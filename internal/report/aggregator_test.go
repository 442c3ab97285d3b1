package report

import (
	"context"
	"fmt"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coconutick512/bot-for-crypt/internal/adapter"
	"github.com/coconutick512/bot-for-crypt/internal/assets"
	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/internal/storage"
	syncer "github.com/coconutick512/bot-for-crypt/internal/sync"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

const (
	reportWalletAddr = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"
	reportSenderAddr = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
	reportContract   = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
)

// fakeAdapter serves a fixed transfer batch for the report wallet
type fakeAdapter struct {
	mu      stdsync.Mutex
	batch   []models.RawTransfer
	balance decimal.Decimal
	balErr  error
}

func (f *fakeAdapter) Network() models.Network {
	return models.NetworkEVM
}

func (f *fakeAdapter) FetchBalance(ctx context.Context, address, symbol string) (decimal.Decimal, error) {
	if f.balErr != nil {
		return decimal.Zero, f.balErr
	}
	return f.balance, nil
}

func (f *fakeAdapter) FetchIncomingTransfers(ctx context.Context, address string) ([]models.RawTransfer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.batch, nil
}

func newReportFixture(t *testing.T, fake *fakeAdapter) (*Aggregator, *BalanceResolver, storage.Storage, *models.Wallet) {
	t.Helper()

	utils.InitLogger("error", "text", "stdout", "")

	store := storage.NewSQLiteStorage(&storage.StorageConfig{
		Type:             "sqlite",
		ConnectionString: filepath.Join(t.TempDir(), "report_test.db"),
		MaxConnections:   4,
		MaxIdleTime:      time.Minute,
	}, nil)
	require.NoError(t, store.Connect())
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { store.Close() })

	wallet := &models.Wallet{
		Network: models.NetworkEVM,
		Address: reportWalletAddr,
		Label:   "main",
		Active:  true,
	}
	require.NoError(t, store.SaveWallet(context.Background(), wallet))

	registry := adapter.NewRegistry(fake)
	catalog := assets.NewCatalog(assets.DefaultAssets())
	sync := syncer.NewManager(store, registry, catalog, nil)

	return NewAggregator(store, sync), NewBalanceResolver(store, registry), store, wallet
}

func reportTransfer(txHash, rawAmount string, ts time.Time) models.RawTransfer {
	return models.RawTransfer{
		TxHash:      txHash,
		FromAddress: reportSenderAddr,
		ToAddress:   reportWalletAddr,
		Contract:    reportContract,
		RawAmount:   rawAmount,
		Decimals:    6,
		Symbol:      "USDT",
		Timestamp:   ts,
	}
}

func TestBuildReport(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fake := &fakeAdapter{batch: []models.RawTransfer{
		reportTransfer("0xr1", "10000000", base.Add(1*time.Hour)), // 10.00
		reportTransfer("0xr2", "5250000", base.Add(2*time.Hour)),  // 5.25
		reportTransfer("0xr3", "750000", base.Add(3*time.Hour)),   // 0.75
	}}
	aggregator, _, _, wallet := newReportFixture(t, fake)

	report, err := aggregator.BuildReport(context.Background(), wallet.ID, base, base.Add(24*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, wallet.ID, report.WalletID)
	assert.Equal(t, 3, report.Count)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "16", report.TotalAmount.String())

	// Newest first
	assert.Equal(t, "0xr3", report.Entries[0].TxHash)
}

func TestBuildReportSynchronizesFirst(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fake := &fakeAdapter{}
	aggregator, _, _, wallet := newReportFixture(t, fake)

	report, err := aggregator.BuildReport(context.Background(), wallet.ID, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, report.Count)
	assert.True(t, report.TotalAmount.IsZero())
	assert.NotNil(t, report.Entries)

	// Data arriving at the provider shows up in the next report
	fake.mu.Lock()
	fake.batch = []models.RawTransfer{reportTransfer("0xlate", "1000000", base.Add(time.Hour))}
	fake.mu.Unlock()

	report, err = aggregator.BuildReport(context.Background(), wallet.ID, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, "1", report.TotalAmount.String())
}

func TestBuildReportWindowExcludesOutsideEntries(t *testing.T) {
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fake := &fakeAdapter{batch: []models.RawTransfer{
		reportTransfer("0xin", "1000000", base.Add(time.Hour)),
		reportTransfer("0xout", "9000000", base.Add(72*time.Hour)),
	}}
	aggregator, _, _, wallet := newReportFixture(t, fake)

	report, err := aggregator.BuildReport(context.Background(), wallet.ID, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count)
	assert.Equal(t, "1", report.TotalAmount.String())
}

func TestBuildReportUnknownWallet(t *testing.T) {
	aggregator, _, _, _ := newReportFixture(t, &fakeAdapter{})

	_, err := aggregator.BuildReport(context.Background(), 9999,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	assert.True(t, utils.IsCode(err, utils.ErrCodeWalletNotFound), "got %v", err)
}

func TestGetBalanceDelegatesToAdapter(t *testing.T) {
	fake := &fakeAdapter{balance: decimal.RequireFromString("42.5")}
	_, balances, _, wallet := newReportFixture(t, fake)

	balance, err := balances.GetBalance(context.Background(), wallet.ID, "USDT")
	require.NoError(t, err)
	assert.Equal(t, "42.5", balance.String())
}

func TestGetBalanceUnsupportedToken(t *testing.T) {
	fake := &fakeAdapter{balErr: utils.NewAppError(utils.ErrCodeUnsupportedToken,
		fmt.Sprintf("token %s is not supported on %s", "DOGE", models.NetworkEVM))}
	_, balances, _, wallet := newReportFixture(t, fake)

	_, err := balances.GetBalance(context.Background(), wallet.ID, "DOGE")
	assert.True(t, utils.IsCode(err, utils.ErrCodeUnsupportedToken), "got %v", err)
}

func TestGetBalanceUnknownWallet(t *testing.T) {
	_, balances, _, _ := newReportFixture(t, &fakeAdapter{})

	_, err := balances.GetBalance(context.Background(), 9999, "USDT")
	assert.True(t, utils.IsCode(err, utils.ErrCodeWalletNotFound), "got %v", err)
}
