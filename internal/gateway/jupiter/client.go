// Package jupiter 通过 Jupiter v6 聚合器执行报价与兑换，并经由 Solana RPC
// 提交签名后的交易。实现 exchange.Client。
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"talon/internal/gateway/exchange"
	"talon/internal/gateway/solana"
	"talon/internal/logger"
)

const (
	defaultQuoteAPI = "https://quote-api.jup.ag/v6"
	defaultPriceAPI = "https://lite-api.jup.ag/price/v2"

	// priceProbeLamports 是估价探针的投入量（0.01 SOL）。
	// 单价 = 投入 SOL / 兑出原始数量，仓位盈亏只依赖该比值的一致性。
	priceProbeLamports = 10_000_000
)

type Config struct {
	QuoteAPIURL   string
	PriceAPIURL   string
	SlippageBps   int
	PreQuoteDelay time.Duration // 报价前的可选等待，给新池留出路由索引时间
	HTTPTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.QuoteAPIURL) == "" {
		c.QuoteAPIURL = defaultQuoteAPI
	}
	if strings.TrimSpace(c.PriceAPIURL) == "" {
		c.PriceAPIURL = defaultPriceAPI
	}
	if c.SlippageBps <= 0 {
		c.SlippageBps = 100
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 20 * time.Second
	}
	return c
}

type Client struct {
	cfg    Config
	http   *http.Client
	rpc    *solana.Client
	wallet *solana.Wallet
}

var _ exchange.Client = (*Client)(nil)

func New(cfg Config, rpc *solana.Client, wallet *solana.Wallet) (*Client, error) {
	if rpc == nil || wallet == nil {
		return nil, errors.New("jupiter: rpc client and wallet are required")
	}
	final := cfg.withDefaults()
	return &Client{
		cfg:    final,
		http:   &http.Client{Timeout: final.HTTPTimeout},
		rpc:    rpc,
		wallet: wallet,
	}, nil
}

func (c *Client) Name() string { return "jupiter" }

// quote 调用 /quote 并返回原始响应（swap 请求要求透传完整报价）。
func (c *Client) quote(ctx context.Context, inputMint, outputMint string, amount decimal.Decimal) (gjson.Result, error) {
	if c.cfg.PreQuoteDelay > 0 {
		select {
		case <-ctx.Done():
			return gjson.Result{}, ctx.Err()
		case <-time.After(c.cfg.PreQuoteDelay):
		}
	}
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", amount.String())
	q.Set("slippageBps", fmt.Sprintf("%d", c.cfg.SlippageBps))
	endpoint := fmt.Sprintf("%s/quote?%s", strings.TrimRight(c.cfg.QuoteAPIURL, "/"), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("jupiter: quote: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	parsed := gjson.ParseBytes(body)
	if resp.StatusCode/100 != 2 || !parsed.Get("outAmount").Exists() {
		return gjson.Result{}, exchange.ErrPriceUnavailable
	}
	return parsed, nil
}

// GetPrice 返回 SOL / token 原始单位的单价。无路由或兑出为零视作报价丢失。
func (c *Client) GetPrice(ctx context.Context, mint string) (decimal.Decimal, error) {
	probe := decimal.NewFromInt(priceProbeLamports)
	quote, err := c.quote(ctx, solana.WrappedSOLMint, mint, probe)
	if err != nil {
		return decimal.Zero, err
	}
	out := decimal.NewFromInt(quote.Get("outAmount").Int())
	if out.Sign() <= 0 {
		return decimal.Zero, exchange.ErrPriceUnavailable
	}
	return exchange.LamportsToSOL(probe).Div(out), nil
}

func (c *Client) GetTokenBalance(ctx context.Context, mint string) (decimal.Decimal, error) {
	_, amount, err := c.rpc.TokenAccount(ctx, c.wallet.Address(), mint)
	return amount, err
}

func (c *Client) GetQuoteBalance(ctx context.Context) (decimal.Decimal, error) {
	lamports, err := c.rpc.GetBalance(ctx, c.wallet.Address())
	if err != nil {
		return decimal.Zero, err
	}
	return exchange.LamportsToSOL(lamports), nil
}

// GetQuoteUSDPrice 通过 Jupiter price API 拿 SOL 的美元价。
func (c *Client) GetQuoteUSDPrice(ctx context.Context) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s?ids=%s", strings.TrimRight(c.cfg.PriceAPIURL, "/"), solana.WrappedSOLMint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jupiter: price api: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, err
	}
	price := gjson.GetBytes(body, "data."+solana.WrappedSOLMint+".price")
	if !price.Exists() {
		return decimal.Zero, fmt.Errorf("jupiter: sol price missing in response")
	}
	return decimal.NewFromString(price.String())
}

// Swap 报价、取 swap 交易、签名并提交，等待确认。
func (c *Client) Swap(ctx context.Context, req exchange.SwapRequest) (*exchange.SwapResult, error) {
	inputMint, outputMint := solana.WrappedSOLMint, req.Mint
	if req.Direction == exchange.Sell {
		inputMint, outputMint = req.Mint, solana.WrappedSOLMint
	}
	quote, err := c.quote(ctx, inputMint, outputMint, req.Amount)
	if err != nil {
		if errors.Is(err, exchange.ErrPriceUnavailable) {
			return nil, fmt.Errorf("%w: no route for %s", exchange.ErrSwapFailed, req.Mint)
		}
		return nil, err
	}

	txB64, err := c.swapTransaction(ctx, quote)
	if err != nil {
		return nil, err
	}
	signed, err := c.wallet.SignTransaction(txB64)
	if err != nil {
		return nil, err
	}
	receipt, err := c.rpc.SendAndConfirm(ctx, signed)
	if err != nil {
		logger.Warnf("jupiter: swap %s %s not confirmed: %v", req.Direction, req.Mint, err)
		return nil, fmt.Errorf("%w: %v", exchange.ErrSwapFailed, err)
	}
	return &exchange.SwapResult{
		Signature:   receipt.Signature,
		OutAmount:   decimal.NewFromInt(quote.Get("outAmount").Int()),
		FeeLamports: receipt.FeeLamports,
		ConfirmedAt: time.Now(),
	}, nil
}

// swapTransaction 调用 /swap，取回待签名的序列化交易。
func (c *Client) swapTransaction(ctx context.Context, quote gjson.Result) (string, error) {
	payload := map[string]any{
		"quoteResponse":             json.RawMessage(quote.Raw),
		"userPublicKey":             c.wallet.Address(),
		"wrapAndUnwrapSol":          true,
		"dynamicComputeUnitLimit":   true,
		"prioritizationFeeLamports": "auto",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	endpoint := strings.TrimRight(c.cfg.QuoteAPIURL, "/") + "/swap"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("jupiter: swap request: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	tx := gjson.GetBytes(respBody, "swapTransaction").String()
	if tx == "" {
		return "", fmt.Errorf("%w: swap transaction missing", exchange.ErrSwapFailed)
	}
	return tx, nil
}

// CloseTokenAccount 关闭该 mint 的代币账户回收租金。
func (c *Client) CloseTokenAccount(ctx context.Context, mint string) error {
	account, _, err := c.rpc.TokenAccount(ctx, c.wallet.Address(), mint)
	if err != nil {
		return err
	}
	if account == "" {
		return nil
	}
	blockhash, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return err
	}
	signed, err := c.wallet.BuildCloseAccountTx(account, blockhash)
	if err != nil {
		return err
	}
	_, err = c.rpc.SendAndConfirm(ctx, signed)
	return err
}
