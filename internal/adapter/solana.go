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

// SolanaAdapter reads SPL token balances from a Solana node RPC and transfer
// history from an indexer API. Balances live in per-owner associated token
// accounts, so an owner without an account for the mint simply holds zero.
type SolanaAdapter struct {
	rpcURL     string
	indexerURL string
	pageSize   int
	catalog    *assets.Catalog
	rpc        *providerClient
	indexer    *providerClient
	logger     *logrus.Entry
}

// NewSolanaAdapter creates the Solana network adapter
func NewSolanaAdapter(cfg *config.ProvidersConfig, catalog *assets.Catalog, m *metrics.Manager) *SolanaAdapter {
	headers := map[string]string{}
	if cfg.Solana.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.Solana.APIKey
	}

	pageSize := cfg.Solana.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &SolanaAdapter{
		rpcURL:     strings.TrimRight(cfg.Solana.RPCURL, "/"),
		indexerURL: strings.TrimRight(cfg.Solana.IndexerURL, "/"),
		pageSize:   pageSize,
		catalog:    catalog,
		rpc: newProviderClient(providerClientConfig{
			Provider:       "solana-rpc",
			RequestTimeout: cfg.RequestTimeout,
			RetryAttempts:  cfg.RetryAttempts,
			RetryDelay:     cfg.RetryDelay,
		}, m),
		indexer: newProviderClient(providerClientConfig{
			Provider:       "solana-indexer",
			RequestTimeout: cfg.RequestTimeout,
			RetryAttempts:  cfg.RetryAttempts,
			RetryDelay:     cfg.RetryDelay,
			Headers:        headers,
		}, m),
		logger: utils.ComponentLogger("adapter").WithField("network", models.NetworkSolana),
	}
}

// Network returns the chain family this adapter serves
func (a *SolanaAdapter) Network() models.Network {
	return models.NetworkSolana
}

type solanaRPCRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type solanaRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// solanaTokenAccountsResponse is the getTokenAccountsByOwner answer with
// jsonParsed encoding, trimmed to the token amount fields
type solanaTokenAccountsResponse struct {
	Error  *solanaRPCError `json:"error"`
	Result struct {
		Value []struct {
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							TokenAmount struct {
								Amount   string `json:"amount"`
								Decimals int32  `json:"decimals"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	} `json:"result"`
}

// solanaTransferResponse is the indexer token-transfer listing
type solanaTransferResponse struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Data    []solanaTransferItem `json:"data"`
}

type solanaTransferItem struct {
	Signature string `json:"signature"`
	From      string `json:"from"`
	To        string `json:"to"`
	Mint      string `json:"mint"`
	Amount    string `json:"amount"`
	Decimals  int32  `json:"decimals"`
	Symbol    string `json:"symbol"`
	BlockTime string `json:"block_time"` // RFC 3339
}

// FetchBalance sums the token amounts over the owner's token accounts for
// the mint. No accounts means no holdings, which is zero, not an error.
func (a *SolanaAdapter) FetchBalance(ctx context.Context, address, symbol string) (decimal.Decimal, error) {
	asset, ok := a.catalog.BySymbol(models.NetworkSolana, symbol)
	if !ok {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeUnsupportedToken,
			fmt.Sprintf("token %s is not supported on %s", symbol, models.NetworkSolana))
	}
	if !utils.IsValidSolanaAddress(address) {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeValidation,
			fmt.Sprintf("invalid Solana address %q", address))
	}

	request := solanaRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "getTokenAccountsByOwner",
		Params: []interface{}{
			address,
			map[string]string{"mint": asset.Identifier},
			map[string]string{"encoding": "jsonParsed"},
		},
	}

	var resp solanaTokenAccountsResponse
	if err := a.rpc.postJSON(ctx, "getTokenAccountsByOwner", a.rpcURL, request, &resp); err != nil {
		return decimal.Zero, err
	}

	if resp.Error != nil {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeExternalSource,
			"solana rpc returned an error", resp.Error.Message)
	}

	total := decimal.Zero
	for _, acct := range resp.Result.Value {
		tokenAmount := acct.Account.Data.Parsed.Info.TokenAmount
		amount, err := decimal.NewFromString(tokenAmount.Amount)
		if err != nil {
			return decimal.Zero, utils.NewAppError(utils.ErrCodeMalformedResponse,
				"solana token amount is not numeric", tokenAmount.Amount)
		}

		decimals := tokenAmount.Decimals
		if decimals <= 0 {
			decimals = asset.Decimals
		}
		total = total.Add(amount.Shift(-decimals))
	}

	return total, nil
}

// FetchIncomingTransfers returns the most recent SPL transfer events for
// address from the indexer, bounded by the configured page size.
func (a *SolanaAdapter) FetchIncomingTransfers(ctx context.Context, address string) ([]models.RawTransfer, error) {
	if !utils.IsValidSolanaAddress(address) {
		return nil, utils.NewAppError(utils.ErrCodeValidation,
			fmt.Sprintf("invalid Solana address %q", address))
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(a.pageSize))

	endpoint := fmt.Sprintf("%s/v1/account/%s/token-transfers?%s",
		a.indexerURL, url.PathEscape(address), params.Encode())

	var resp solanaTransferResponse
	if err := a.indexer.getJSON(ctx, "token_transfers", endpoint, &resp); err != nil {
		if utils.IsCode(err, utils.ErrCodeMalformedResponse) {
			a.logger.WithField("error", err.Error()).Warn("Solana indexer response is malformed, treating as empty batch")
			return []models.RawTransfer{}, nil
		}
		return nil, err
	}

	if !resp.Success {
		return nil, utils.NewAppError(utils.ErrCodeExternalSource,
			"solana indexer rejected the transfer request", resp.Error)
	}

	transfers := make([]models.RawTransfer, 0, len(resp.Data))
	for _, item := range resp.Data {
		ts, err := time.Parse(time.RFC3339, item.BlockTime)
		if err != nil {
			a.logger.WithField("signature", item.Signature).Warn("Skipping transfer with unparseable block time")
			continue
		}

		decimals := models.DecimalsUnknown
		if item.Decimals > 0 {
			decimals = item.Decimals
		}

		transfers = append(transfers, models.RawTransfer{
			TxHash:      item.Signature,
			FromAddress: item.From,
			ToAddress:   item.To,
			Contract:    item.Mint,
			RawAmount:   item.Amount,
			Decimals:    decimals,
			Symbol:      item.Symbol,
			Timestamp:   ts.UTC(),
		})
	}

	return transfers, nil
}
