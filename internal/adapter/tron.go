package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/coconutick512/bot-for-crypt/internal/assets"
	"github.com/coconutick512/bot-for-crypt/internal/config"
	"github.com/coconutick512/bot-for-crypt/internal/metrics"
	"github.com/coconutick512/bot-for-crypt/internal/models"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

// TronAdapter reads TRC20 balances and transfer history from a
// TronGrid-compatible account API.
type TronAdapter struct {
	baseURL  string
	pageSize int
	catalog  *assets.Catalog
	client   *providerClient
	logger   *logrus.Entry
}

// NewTronAdapter creates the TRON network adapter
func NewTronAdapter(cfg *config.ProvidersConfig, catalog *assets.Catalog, m *metrics.Manager) *TronAdapter {
	headers := map[string]string{}
	if cfg.Tron.APIKey != "" {
		headers["TRON-PRO-API-KEY"] = cfg.Tron.APIKey
	}

	pageSize := cfg.Tron.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &TronAdapter{
		baseURL:  strings.TrimRight(cfg.Tron.BaseURL, "/"),
		pageSize: pageSize,
		catalog:  catalog,
		client: newProviderClient(providerClientConfig{
			Provider:       "trongrid",
			RequestTimeout: cfg.RequestTimeout,
			RetryAttempts:  cfg.RetryAttempts,
			RetryDelay:     cfg.RetryDelay,
			Headers:        headers,
		}, m),
		logger: utils.ComponentLogger("adapter").WithField("network", models.NetworkTron),
	}
}

// Network returns the chain family this adapter serves
func (a *TronAdapter) Network() models.Network {
	return models.NetworkTron
}

// tronAccountResponse is the /v1/accounts/{address} answer. TRC20 holdings
// arrive as a list of single-entry contract→amount maps.
type tronAccountResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		TRC20 []map[string]string `json:"trc20"`
	} `json:"data"`
}

// tronTransferResponse is the /v1/accounts/{address}/transactions/trc20 answer
type tronTransferResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Data    []tronTransferItem `json:"data"`
}

type tronTransferItem struct {
	TransactionID  string `json:"transaction_id"`
	From           string `json:"from"`
	To             string `json:"to"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	BlockTimestamp int64  `json:"block_timestamp"` // milliseconds
	TokenInfo      struct {
		Symbol   string `json:"symbol"`
		Address  string `json:"address"`
		Decimals int32  `json:"decimals"`
	} `json:"token_info"`
}

// FetchBalance returns the TRC20 balance at address. An account the chain
// has never seen, or one without the token among its holdings, is zero.
func (a *TronAdapter) FetchBalance(ctx context.Context, address, symbol string) (decimal.Decimal, error) {
	asset, ok := a.catalog.BySymbol(models.NetworkTron, symbol)
	if !ok {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeUnsupportedToken,
			fmt.Sprintf("token %s is not supported on %s", symbol, models.NetworkTron))
	}
	if !utils.IsValidTronAddress(address) {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeValidation,
			fmt.Sprintf("invalid TRON address %q", address))
	}

	var resp tronAccountResponse
	endpoint := fmt.Sprintf("%s/v1/accounts/%s", a.baseURL, url.PathEscape(address))
	if err := a.client.getJSON(ctx, "account", endpoint, &resp); err != nil {
		return decimal.Zero, err
	}

	if !resp.Success {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeExternalSource,
			"trongrid rejected the account request")
	}

	// Unknown account: no holdings yet, which is a valid zero state
	if len(resp.Data) == 0 {
		return decimal.Zero, nil
	}

	for _, holding := range resp.Data[0].TRC20 {
		for contract, raw := range holding {
			if !utils.EqualAddress(contract, asset.Identifier) {
				continue
			}
			balance, err := decimal.NewFromString(raw)
			if err != nil {
				return decimal.Zero, utils.NewAppError(utils.ErrCodeMalformedResponse,
					"trongrid balance is not numeric", raw)
			}
			return balance.Shift(-asset.Decimals), nil
		}
	}

	return decimal.Zero, nil
}

// FetchIncomingTransfers returns the most recent TRC20 transfer events for
// address, bounded by the configured page size.
func (a *TronAdapter) FetchIncomingTransfers(ctx context.Context, address string) ([]models.RawTransfer, error) {
	if !utils.IsValidTronAddress(address) {
		return nil, utils.NewAppError(utils.ErrCodeValidation,
			fmt.Sprintf("invalid TRON address %q", address))
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(a.pageSize))
	params.Set("only_confirmed", "true")
	params.Set("order_by", "block_timestamp,desc")

	endpoint := fmt.Sprintf("%s/v1/accounts/%s/transactions/trc20?%s",
		a.baseURL, url.PathEscape(address), params.Encode())

	var resp tronTransferResponse
	if err := a.client.getJSON(ctx, "trc20_transfers", endpoint, &resp); err != nil {
		if utils.IsCode(err, utils.ErrCodeMalformedResponse) {
			a.logger.WithField("error", err.Error()).Warn("TronGrid response is malformed, treating as empty batch")
			return []models.RawTransfer{}, nil
		}
		return nil, err
	}

	if !resp.Success {
		return nil, utils.NewAppError(utils.ErrCodeExternalSource,
			"trongrid rejected the transfer request", resp.Error)
	}

	transfers := make([]models.RawTransfer, 0, len(resp.Data))
	for _, item := range resp.Data {
		if item.Type != "" && item.Type != "Transfer" {
			continue
		}

		decimals := models.DecimalsUnknown
		if item.TokenInfo.Decimals > 0 {
			decimals = item.TokenInfo.Decimals
		}

		transfers = append(transfers, models.RawTransfer{
			TxHash:      item.TransactionID,
			FromAddress: item.From,
			ToAddress:   item.To,
			Contract:    item.TokenInfo.Address,
			RawAmount:   item.Value,
			Decimals:    decimals,
			Symbol:      item.TokenInfo.Symbol,
			Timestamp:   time.UnixMilli(item.BlockTimestamp).UTC(),
		})
	}

	return transfers, nil
}
