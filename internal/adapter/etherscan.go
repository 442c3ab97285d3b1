package adapter

import (
	"context"
	"encoding/json"
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

// EtherscanAdapter reads EVM token balances and transfer history from an
// Etherscan-compatible account API.
type EtherscanAdapter struct {
	baseURL string
	apiKey  string
	catalog *assets.Catalog
	client  *providerClient
	logger  *logrus.Entry
}

// NewEtherscanAdapter creates the EVM network adapter
func NewEtherscanAdapter(cfg *config.ProvidersConfig, catalog *assets.Catalog, m *metrics.Manager) *EtherscanAdapter {
	return &EtherscanAdapter{
		baseURL: strings.TrimRight(cfg.Etherscan.BaseURL, "/"),
		apiKey:  cfg.Etherscan.APIKey,
		catalog: catalog,
		client: newProviderClient(providerClientConfig{
			Provider:       "etherscan",
			RequestTimeout: cfg.RequestTimeout,
			RetryAttempts:  cfg.RetryAttempts,
			RetryDelay:     cfg.RetryDelay,
		}, m),
		logger: utils.ComponentLogger("adapter").WithField("network", models.NetworkEVM),
	}
}

// Network returns the chain family this adapter serves
func (a *EtherscanAdapter) Network() models.Network {
	return models.NetworkEVM
}

// etherscanEnvelope is the common Etherscan response wrapper. Result is a
// string for scalar actions and an array for list actions.
type etherscanEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// etherscanTokenTx is one row of the tokentx action
type etherscanTokenTx struct {
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	Value           string `json:"value"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimal    string `json:"tokenDecimal"`
	TimeStamp       string `json:"timeStamp"`
}

// FetchBalance returns the token balance at address via the tokenbalance action
func (a *EtherscanAdapter) FetchBalance(ctx context.Context, address, symbol string) (decimal.Decimal, error) {
	asset, ok := a.catalog.BySymbol(models.NetworkEVM, symbol)
	if !ok {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeUnsupportedToken,
			fmt.Sprintf("token %s is not supported on %s", symbol, models.NetworkEVM))
	}
	if !utils.IsValidEVMAddress(address) {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeValidation,
			fmt.Sprintf("invalid EVM address %q", address))
	}
	address = utils.NormalizeEVMAddress(address)

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokenbalance")
	params.Set("contractaddress", asset.Identifier)
	params.Set("address", address)
	params.Set("tag", "latest")
	params.Set("apikey", a.apiKey)

	var envelope etherscanEnvelope
	if err := a.client.getJSON(ctx, "tokenbalance", a.baseURL+"?"+params.Encode(), &envelope); err != nil {
		return decimal.Zero, err
	}

	if envelope.Status != "1" {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeExternalSource,
			"etherscan rejected the balance request", envelope.Message)
	}

	var raw string
	if err := json.Unmarshal(envelope.Result, &raw); err != nil {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeMalformedResponse,
			"etherscan balance result is not a string", err.Error())
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, utils.NewAppError(utils.ErrCodeMalformedResponse,
			"etherscan balance is not numeric", raw)
	}

	return balance.Shift(-asset.Decimals), nil
}

// FetchIncomingTransfers returns the most recent token transfer events for
// address. Etherscan reports "No transactions found" as a NOTOK status; that
// is an empty batch, not a failure.
func (a *EtherscanAdapter) FetchIncomingTransfers(ctx context.Context, address string) ([]models.RawTransfer, error) {
	if !utils.IsValidEVMAddress(address) {
		return nil, utils.NewAppError(utils.ErrCodeValidation,
			fmt.Sprintf("invalid EVM address %q", address))
	}
	address = utils.NormalizeEVMAddress(address)

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("address", address)
	params.Set("sort", "desc")
	params.Set("apikey", a.apiKey)

	var envelope etherscanEnvelope
	if err := a.client.getJSON(ctx, "tokentx", a.baseURL+"?"+params.Encode(), &envelope); err != nil {
		return a.degradeMalformed(err)
	}

	if envelope.Status != "1" {
		if strings.Contains(strings.ToLower(envelope.Message), "no transactions found") {
			return []models.RawTransfer{}, nil
		}
		return nil, utils.NewAppError(utils.ErrCodeExternalSource,
			"etherscan rejected the transfer request", envelope.Message)
	}

	var rows []etherscanTokenTx
	if err := json.Unmarshal(envelope.Result, &rows); err != nil {
		a.logger.WithField("error", err.Error()).Warn("Etherscan transfer list is malformed, treating as empty batch")
		return []models.RawTransfer{}, nil
	}

	transfers := make([]models.RawTransfer, 0, len(rows))
	for _, row := range rows {
		decimals := models.DecimalsUnknown
		if d, err := strconv.ParseInt(row.TokenDecimal, 10, 32); err == nil {
			decimals = int32(d)
		}

		ts, err := strconv.ParseInt(row.TimeStamp, 10, 64)
		if err != nil {
			a.logger.WithField("tx_hash", row.Hash).Warn("Skipping transfer with unparseable timestamp")
			continue
		}

		transfers = append(transfers, models.RawTransfer{
			TxHash:      row.Hash,
			FromAddress: row.From,
			ToAddress:   row.To,
			Contract:    row.ContractAddress,
			RawAmount:   row.Value,
			Decimals:    decimals,
			Symbol:      row.TokenSymbol,
			Timestamp:   time.Unix(ts, 0).UTC(),
		})
	}

	return transfers, nil
}

// degradeMalformed converts a malformed-body failure into an empty batch,
// keeping transport failures as errors.
func (a *EtherscanAdapter) degradeMalformed(err error) ([]models.RawTransfer, error) {
	if utils.IsCode(err, utils.ErrCodeMalformedResponse) {
		a.logger.WithField("error", err.Error()).Warn("Etherscan response is malformed, treating as empty batch")
		return []models.RawTransfer{}, nil
	}
	return nil, err
}
