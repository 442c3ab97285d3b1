package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coconutick512/bot-for-crypt/internal/assets"
	"github.com/coconutick512/bot-for-crypt/internal/models"
)

const (
	usdtContract = "0xdAC17F958D2ee523a2206206994597C13D831ec7"
	senderAddr   = "0x8ba1f109551bD432803012645Ac136ddd64DBA72"
)

func normalizeTestWallet() *models.Wallet {
	return &models.Wallet{
		ID:      7,
		Network: models.NetworkEVM,
		Address: "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Label:   "main",
		Active:  true,
	}
}

func rawTransfer(txHash, to, contract, amount string, decimals int32) models.RawTransfer {
	return models.RawTransfer{
		TxHash:      txHash,
		FromAddress: senderAddr,
		ToAddress:   to,
		Contract:    contract,
		RawAmount:   amount,
		Decimals:    decimals,
		Symbol:      "USDT",
		Timestamp:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeScalesByDecimals(t *testing.T) {
	wallet := normalizeTestWallet()
	catalog := assets.NewCatalog(assets.DefaultAssets())

	entries, stats := normalizeTransfers(catalog, wallet, []models.RawTransfer{
		rawTransfer("0xaaa", wallet.Address, usdtContract, "1500000", 6),
	})

	assert.Len(t, entries, 1)
	assert.Equal(t, "1.5", entries[0].Amount.String())
	assert.Equal(t, "USDT", entries[0].TokenSymbol)
	assert.Equal(t, int64(7), entries[0].WalletID)
	assert.Zero(t, stats.Malformed)
}

func TestNormalizeDestinationMatchIsCaseInsensitive(t *testing.T) {
	wallet := normalizeTestWallet()
	catalog := assets.NewCatalog(assets.DefaultAssets())

	// Providers report hex addresses with arbitrary casing
	entries, _ := normalizeTransfers(catalog, wallet, []models.RawTransfer{
		rawTransfer("0xbbb", "0x71c7656ec7ab88b098defb751b7401b5f6d8976f", usdtContract, "100", 6),
	})

	assert.Len(t, entries, 1)
}

func TestNormalizeDropsWrongDestination(t *testing.T) {
	wallet := normalizeTestWallet()
	catalog := assets.NewCatalog(assets.DefaultAssets())

	entries, stats := normalizeTransfers(catalog, wallet, []models.RawTransfer{
		rawTransfer("0xccc", senderAddr, usdtContract, "100", 6),
	})

	assert.Empty(t, entries)
	assert.Equal(t, 1, stats.WrongDestination)
}

func TestNormalizeDropsUntrackedContract(t *testing.T) {
	wallet := normalizeTestWallet()
	catalog := assets.NewCatalog(assets.DefaultAssets())

	entries, stats := normalizeTransfers(catalog, wallet, []models.RawTransfer{
		rawTransfer("0xddd", wallet.Address, "0x0000000000000000000000000000000000001234", "100", 6),
	})

	assert.Empty(t, entries)
	assert.Equal(t, 1, stats.UnknownAsset)
}

func TestNormalizeDecimalsFallBackToCatalog(t *testing.T) {
	wallet := normalizeTestWallet()
	catalog := assets.NewCatalog(assets.DefaultAssets())

	entries, _ := normalizeTransfers(catalog, wallet, []models.RawTransfer{
		rawTransfer("0xeee", wallet.Address, usdtContract, "2000000", models.DecimalsUnknown),
	})

	assert.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].Amount.String())
}

func TestNormalizeDropsMalformedTransfers(t *testing.T) {
	wallet := normalizeTestWallet()
	catalog := assets.NewCatalog(assets.DefaultAssets())

	noHash := rawTransfer("", wallet.Address, usdtContract, "100", 6)
	badAmount := rawTransfer("0xfff", wallet.Address, usdtContract, "not-a-number", 6)
	negative := rawTransfer("0xf00", wallet.Address, usdtContract, "-5", 6)
	noTimestamp := rawTransfer("0xf01", wallet.Address, usdtContract, "100", 6)
	noTimestamp.Timestamp = time.Time{}

	entries, stats := normalizeTransfers(catalog, wallet, []models.RawTransfer{
		noHash, badAmount, negative, noTimestamp,
	})

	assert.Empty(t, entries)
	assert.Equal(t, 4, stats.Malformed)
}
