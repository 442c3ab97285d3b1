package sync

import (
	"github.com/shopspring/decimal"

	"github.com/coconutick512/bot-for-crypt/internal/assets"
	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// normalizeStats counts the raw transfers dropped by each rule
type normalizeStats struct {
	WrongDestination int
	UnknownAsset     int
	Malformed        int
}

// normalizeTransfers converts a raw provider batch into canonical ledger
// entries for the wallet. Transfers to other destinations and transfers of
// untracked assets are noise, not errors; they are dropped silently.
func normalizeTransfers(catalog *assets.Catalog, wallet *models.Wallet, raws []models.RawTransfer) ([]*models.LedgerEntry, normalizeStats) {
	entries := make([]*models.LedgerEntry, 0, len(raws))
	var stats normalizeStats

	for _, raw := range raws {
		if !utils.EqualAddress(raw.ToAddress, wallet.Address) {
			stats.WrongDestination++
			continue
		}

		asset, ok := catalog.ByIdentifier(wallet.Network, raw.Contract)
		if !ok {
			stats.UnknownAsset++
			continue
		}

		if raw.TxHash == "" || raw.Timestamp.IsZero() {
			stats.Malformed++
			continue
		}

		rawAmount, err := decimal.NewFromString(raw.RawAmount)
		if err != nil || rawAmount.IsNegative() {
			stats.Malformed++
			continue
		}

		// Precision comes from the transfer's own metadata when the
		// provider reports it, otherwise from the asset catalog. It is
		// never a hard-coded constant; it differs by asset and network.
		decimals := raw.Decimals
		if decimals == models.DecimalsUnknown {
			decimals = asset.Decimals
		}

		entries = append(entries, &models.LedgerEntry{
			TxHash:      raw.TxHash,
			WalletID:    wallet.ID,
			Amount:      rawAmount.Shift(-decimals),
			TokenSymbol: asset.Symbol,
			FromAddress: raw.FromAddress,
			Timestamp:   raw.Timestamp.UTC(),
		})
	}

	return entries, stats
}
