package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quillcheck/pkg/models"
	"quillcheck/pkg/report"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

var ProbeTimeout = 10 * time.Second

// riskResponse is the risk API payload.
type riskResponse struct {
	Critical  int    `json:"critical"`
	Risky     int    `json:"risky"`
	Medium    int    `json:"medium"`
	Neutral   int    `json:"neutral"`
	TokenName string `json:"token_name"`
}

// ReportURL builds the risk API path for a request: EVM tokens by chain id,
// Solana tokens by mint address.
func ReportURL(baseURL string, req report.Request) string {
	base := strings.TrimRight(baseURL, "/")
	if req.Native {
		return fmt.Sprintf("%s/solana/%s", base, url.PathEscape(req.Address))
	}
	return fmt.Sprintf("%s/evm/%d/%s", base, req.ChainID, url.PathEscape(req.Address))
}

// FetchReport fetches finding counts from the risk API.
func FetchReport(ctx context.Context, client *http.Client, baseURL string, req report.Request) (report.Report, error) {
	if baseURL == "" {
		return report.Report{}, fmt.Errorf("report API URL is not configured")
	}
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, ReportURL(baseURL, req), nil)
	if err != nil {
		return report.Report{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return report.Report{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return report.Report{}, fmt.Errorf("risk API returned %s", resp.Status)
	}

	var body riskResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return report.Report{}, fmt.Errorf("decoding risk API response: %w", err)
	}
	return report.Report{
		Critical:  body.Critical,
		Risky:     body.Risky,
		Medium:    body.Medium,
		Neutral:   body.Neutral,
		TokenName: body.TokenName,
		FetchedAt: time.Now(),
	}, nil
}

// HTTPDataSource implements report.DataSource against the risk API.
type HTTPDataSource struct {
	BaseURL string
	Client  *http.Client
}

func (d *HTTPDataSource) FetchReport(ctx context.Context, req report.Request) (report.Report, error) {
	return FetchReport(ctx, d.Client, d.BaseURL, req)
}

// TokenNameSource fills in a missing token name for EVM reports by calling
// symbol() on the token contract through the chain's RPC URLs.
type TokenNameSource struct {
	Next    report.DataSource
	RPCURLs map[int64][]string
}

func (d *TokenNameSource) FetchReport(ctx context.Context, req report.Request) (report.Report, error) {
	rep, err := d.Next.FetchReport(ctx, req)
	if err != nil || req.Native || rep.TokenName != "" {
		return rep, err
	}
	urls := d.RPCURLs[req.ChainID]
	if len(urls) == 0 || !common.IsHexAddress(req.Address) {
		return rep, nil
	}
	if symbol, err := FetchTokenSymbol(ctx, urls, req.Address); err == nil {
		rep.TokenName = symbol
	}
	return rep, nil
}

// FetchTokenSymbol calls symbol() on an ERC-20 contract, trying each RPC in turn.
func FetchTokenSymbol(ctx context.Context, rpcURLs []string, tokenAddress string) (string, error) {
	target := common.HexToAddress(tokenAddress)
	// symbol() selector: 0x95d89b41
	msg := ethereum.CallMsg{To: &target, Data: []byte{0x95, 0xd8, 0x9b, 0x41}}

	var lastErr error
	for _, rpcURL := range rpcURLs {
		callCtx, cancel := context.WithTimeout(ctx, ProbeTimeout)
		client, err := ethclient.DialContext(callCtx, rpcURL)
		if err != nil {
			cancel()
			lastErr = err
			continue
		}
		res, err := client.CallContract(callCtx, msg, nil)
		client.Close()
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if symbol := decodeSymbol(res); symbol != "" {
			return symbol, nil
		}
		lastErr = fmt.Errorf("empty symbol from %s", rpcURL)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no RPC URLs")
	}
	return "", lastErr
}

// decodeSymbol handles both the bytes32 and the ABI string encodings.
func decodeSymbol(res []byte) string {
	switch {
	case len(res) == 32:
		return string(bytes.TrimRight(res, "\x00"))
	case len(res) >= 64:
		length := new(big.Int).SetBytes(res[32:64]).Int64()
		if length > 0 && 64+int(length) <= len(res) {
			return string(res[64 : 64+length])
		}
	}
	return ""
}

// FetchChainID asks an EVM RPC endpoint for its chain id.
func FetchChainID(ctx context.Context, rpcURL string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	id, err := client.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get ChainID: %w", err)
	}
	return id.Int64(), nil
}

// FetchRPCLatency reads the chain id of rpcURL and times the round trip.
func FetchRPCLatency(ctx context.Context, rpcURL string) models.RPCLatencyData {
	start := time.Now()
	id, err := FetchChainID(ctx, rpcURL)
	if err != nil {
		return models.RPCLatencyData{RPCURL: rpcURL, Err: err}
	}
	return models.RPCLatencyData{RPCURL: rpcURL, ChainID: id, Latency: time.Since(start)}
}
