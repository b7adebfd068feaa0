// Package watcher 通过 websocket 订阅 Raydium AMM 程序日志，发现新开的
// 流动性池并把基础代币 mint 投递给买入侧。
package watcher

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"talon/internal/gateway/solana"
	"talon/internal/logger"
)

// raydiumAuthority 是 Raydium AMM 的池子权限账户。新池初始化交易里，
// 归属该账户的非 wSOL 代币余额就是新上的代币。
const raydiumAuthority = "5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"

const (
	initializeMarker = "initialize2"
	seenCapacity     = 4096
	reconnectDelay   = 3 * time.Second
)

// Watcher 维护一条到 RPC websocket 端点的长连接，断线自动重连。
type Watcher struct {
	rpc  *solana.Client
	sink func(mint string)

	seen      map[string]struct{}
	seenOrder []string
}

// New 构造 watcher。sink 在每个新池的 mint 上被调用一次（按签名去重）。
func New(rpc *solana.Client, sink func(mint string)) *Watcher {
	return &Watcher{
		rpc:  rpc,
		sink: sink,
		seen: make(map[string]struct{}, seenCapacity),
	}
}

// Run 阻塞运行直到 ctx 取消。连接与订阅失败时退避重连。
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := w.runConn(ctx); err != nil && ctx.Err() == nil {
			logger.Warnf("watcher: connection lost: %v, reconnecting in %s", err, reconnectDelay)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (w *Watcher) runConn(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.rpc.WSURL(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "logsSubscribe",
		"params": []any{
			map[string]any{"mentions": []string{solana.RaydiumLiquidityPoolV4}},
			map[string]any{"commitment": "confirmed"},
		},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return err
	}
	logger.Infof("watcher: subscribed to Raydium pool logs")

	// ctx 取消时关掉连接，把阻塞的 ReadMessage 解出来
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		w.handleMessage(ctx, gjson.ParseBytes(msg))
	}
}

func (w *Watcher) handleMessage(ctx context.Context, msg gjson.Result) {
	value := msg.Get("params.result.value")
	if !value.Exists() {
		return
	}
	if value.Get("err").Exists() && value.Get("err").Type != gjson.Null {
		return
	}
	if !containsInitializeLog(value.Get("logs")) {
		return
	}
	sig := value.Get("signature").String()
	if sig == "" || w.markSeen(sig) {
		return
	}
	logger.Infof("watcher: new pool initialize tx %s", sig)
	go w.resolve(ctx, sig)
}

// resolve 拉取交易详情并提取新代币 mint。刚确认的交易可能还查不到，重试几次。
func (w *Watcher) resolve(ctx context.Context, signature string) {
	var tx gjson.Result
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		tx, err = w.rpc.GetTransaction(ctx, signature)
		if err == nil && tx.Exists() {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil || !tx.Exists() {
		logger.Warnf("watcher: transaction %s unavailable: %v", signature, err)
		return
	}
	mint := extractNewMint(tx)
	if mint == "" {
		logger.Debugf("watcher: no candidate mint in %s", signature)
		return
	}
	logger.Infof("watcher: candidate mint %s from %s", mint, signature)
	w.sink(mint)
}

// markSeen 报告签名是否已处理过，并把新签名记入有界集合。
func (w *Watcher) markSeen(signature string) bool {
	if _, ok := w.seen[signature]; ok {
		return true
	}
	w.seen[signature] = struct{}{}
	w.seenOrder = append(w.seenOrder, signature)
	if len(w.seenOrder) > seenCapacity {
		oldest := w.seenOrder[0]
		w.seenOrder = w.seenOrder[1:]
		delete(w.seen, oldest)
	}
	return false
}

func containsInitializeLog(logs gjson.Result) bool {
	found := false
	logs.ForEach(func(_, line gjson.Result) bool {
		if strings.Contains(line.String(), initializeMarker) {
			found = true
			return false
		}
		return true
	})
	return found
}

// extractNewMint 在交易的 postTokenBalances 里找归属 Raydium 权限账户的
// 非 wSOL 代币，返回它的 mint；找不到返回空串。
func extractNewMint(tx gjson.Result) string {
	mint := ""
	tx.Get("meta.postTokenBalances").ForEach(func(_, bal gjson.Result) bool {
		if bal.Get("owner").String() != raydiumAuthority {
			return true
		}
		m := bal.Get("mint").String()
		if m == "" || m == solana.WrappedSOLMint {
			return true
		}
		mint = m
		return false
	})
	return mint
}
