// Package solana 提供最小化的 Solana JSON-RPC 访问：余额、代币账户、
// 交易查询与签名提交。只实现交易机器人需要的子集。
package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"talon/internal/logger"
	"talon/internal/pkg/circuit"
)

const (
	// WrappedSOLMint 是 wSOL 的 mint 地址，Jupiter 报价的 quote 侧。
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
	// TokenProgramID 是 SPL Token 程序地址。
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	// RaydiumLiquidityPoolV4 是 Raydium AMM v4 程序地址，新池监听的目标。
	RaydiumLiquidityPoolV4 = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
)

var (
	errTxNotConfirmed = errors.New("solana: transaction not confirmed")
	// ErrRPCUnavailable 表示 RPC 端点连续失败、熔断器已打开。
	ErrRPCUnavailable = errors.New("solana: rpc endpoint unavailable")
)

type Config struct {
	RPCURL      string
	WSURL       string
	Commitment  string // 默认 confirmed
	HTTPTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Commitment == "" {
		c.Commitment = "confirmed"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 20 * time.Second
	}
	return c
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *circuit.Breaker
	nextID  atomic.Int64
}

func New(cfg Config) (*Client, error) {
	final := cfg.withDefaults()
	if strings.TrimSpace(final.RPCURL) == "" {
		return nil, fmt.Errorf("solana: rpc url is required")
	}
	return &Client{
		cfg:     final,
		http:    &http.Client{Timeout: final.HTTPTimeout},
		breaker: circuit.NewBreaker("solana-rpc", 5, 30*time.Second),
	}, nil
}

func (c *Client) WSURL() string { return c.cfg.WSURL }

// Call 发送一次 JSON-RPC 请求并返回 result 字段。
func (c *Client) Call(ctx context.Context, method string, params ...any) (gjson.Result, error) {
	payload := map[string]any{
		"jsonrpc": "2.0",
		"id":      c.nextID.Add(1),
		"method":  method,
		"params":  params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, err
	}
	if !c.breaker.Allow() {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrRPCUnavailable, method)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return gjson.Result{}, fmt.Errorf("solana: rpc %s: %w", method, err)
	}
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		c.breaker.RecordFailure()
		return gjson.Result{}, err
	}
	if resp.StatusCode/100 != 2 {
		c.breaker.RecordFailure()
		return gjson.Result{}, fmt.Errorf("solana: rpc %s status=%d", method, resp.StatusCode)
	}
	// RPC 层面的 error 响应说明端点本身是活的，不计入熔断
	c.breaker.RecordSuccess()
	parsed := gjson.ParseBytes(buf.Bytes())
	if rpcErr := parsed.Get("error"); rpcErr.Exists() {
		return gjson.Result{}, fmt.Errorf("solana: rpc %s: %s", method, rpcErr.Get("message").String())
	}
	return parsed.Get("result"), nil
}

// GetBalance 返回某地址的 SOL 余额（lamports）。
func (c *Client) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	res, err := c.Call(ctx, "getBalance", address, map[string]any{"commitment": c.cfg.Commitment})
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(res.Get("value").Int()), nil
}

// TokenAccount 返回钱包持有某 mint 的代币账户地址与原始数量。
// 账户不存在视作余额为零，不是错误。
func (c *Client) TokenAccount(ctx context.Context, owner, mint string) (string, decimal.Decimal, error) {
	res, err := c.Call(ctx, "getTokenAccountsByOwner",
		owner,
		map[string]any{"mint": mint},
		map[string]any{"encoding": "jsonParsed", "commitment": c.cfg.Commitment},
	)
	if err != nil {
		return "", decimal.Zero, err
	}
	accounts := res.Get("value").Array()
	if len(accounts) == 0 {
		return "", decimal.Zero, nil
	}
	first := accounts[0]
	address := first.Get("pubkey").String()
	raw := first.Get("account.data.parsed.info.tokenAmount.amount").String()
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return address, decimal.Zero, fmt.Errorf("solana: bad token amount %q: %w", raw, err)
	}
	return address, amount, nil
}

// GetTransaction 返回 jsonParsed 编码的交易详情。
func (c *Client) GetTransaction(ctx context.Context, signature string) (gjson.Result, error) {
	return c.Call(ctx, "getTransaction", signature, map[string]any{
		"encoding":                       "jsonParsed",
		"commitment":                     c.cfg.Commitment,
		"maxSupportedTransactionVersion": 0,
	})
}

func (c *Client) GetLatestBlockhash(ctx context.Context) (string, error) {
	res, err := c.Call(ctx, "getLatestBlockhash", map[string]any{"commitment": c.cfg.Commitment})
	if err != nil {
		return "", err
	}
	hash := res.Get("value.blockhash").String()
	if hash == "" {
		return "", fmt.Errorf("solana: empty blockhash")
	}
	return hash, nil
}

// TxReceipt 是一笔已确认交易的回执。
type TxReceipt struct {
	Signature   string
	FeeLamports decimal.Decimal
}

// SendAndConfirm 提交已签名交易（base64）并轮询等待确认。
func (c *Client) SendAndConfirm(ctx context.Context, signedTxB64 string) (*TxReceipt, error) {
	res, err := c.Call(ctx, "sendTransaction", signedTxB64, map[string]any{
		"encoding":            "base64",
		"skipPreflight":       false,
		"preflightCommitment": c.cfg.Commitment,
		"maxRetries":          3,
	})
	if err != nil {
		return nil, err
	}
	signature := res.String()
	if signature == "" {
		return nil, fmt.Errorf("solana: sendTransaction returned empty signature")
	}
	if err := c.waitConfirmed(ctx, signature); err != nil {
		return nil, err
	}
	receipt := &TxReceipt{Signature: signature}
	if tx, err := c.GetTransaction(ctx, signature); err == nil {
		receipt.FeeLamports = decimal.NewFromInt(tx.Get("meta.fee").Int())
	} else {
		logger.Debugf("solana: fee lookup failed sig=%s err=%v", signature, err)
	}
	return receipt, nil
}

func (c *Client) waitConfirmed(ctx context.Context, signature string) error {
	deadline := time.Now().Add(60 * time.Second)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s", errTxNotConfirmed, signature)
		}
		res, err := c.Call(ctx, "getSignatureStatuses", []string{signature})
		if err != nil {
			logger.Debugf("solana: status poll failed sig=%s err=%v", signature, err)
			continue
		}
		status := res.Get("value.0")
		if !status.Exists() || status.Type == gjson.Null {
			continue
		}
		if errField := status.Get("err"); errField.Exists() && errField.Type != gjson.Null {
			return fmt.Errorf("solana: transaction failed on chain: %s", errField.Raw)
		}
		switch status.Get("confirmationStatus").String() {
		case "confirmed", "finalized":
			return nil
		}
	}
}
