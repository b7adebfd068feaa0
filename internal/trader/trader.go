// Package trader 是 talon 的核心事件循环：买入候选与仓位监控都在同一个
// goroutine 里顺序处理，账本（portfolio.Book）因此不需要任何锁。
package trader

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"talon/internal/gateway/exchange"
	"talon/internal/gateway/notifier"
	"talon/internal/logger"
	"talon/internal/portfolio"
	"talon/internal/store/eventlog"
	"talon/internal/strategy/exitrule"
)

// ErrGlobalStop 表示累计已实现亏损击穿全局止损线，进程应当整体退出。
var ErrGlobalStop = errors.New("trader: global stop loss triggered")

const candidateBuffer = 64

type Options struct {
	Exchange exchange.Client
	Book     *portfolio.Book
	Buyer    *Buyer
	Seller   *Seller
	Events   *eventlog.Store
	Notify   notifier.TextNotifier

	Rules    exitrule.Rules
	Interval time.Duration
	// GlobalStopLossUSD 为负数时生效；0 表示关闭全局止损。
	GlobalStopLossUSD decimal.Decimal
}

type Trader struct {
	opts       Options
	candidates chan string
	snapshot   atomic.Pointer[Snapshot]
	now        func() time.Time
}

func New(opts Options) *Trader {
	return &Trader{
		opts:       opts,
		candidates: make(chan string, candidateBuffer),
		now:        time.Now,
	}
}

// Submit 把一个买入候选投递进事件循环。非阻塞：队列满时丢弃，
// 狙击候选过期极快，排不上队的机会没有价值。
func (t *Trader) Submit(mint string) {
	select {
	case t.candidates <- mint:
	default:
		logger.Warnf("trader: candidate queue full, dropping %s", mint)
	}
}

// Run 驱动事件循环直到 ctx 取消或全局止损触发。
// 全局止损是终局状态，返回 ErrGlobalStop 由上层决定如何退出。
func (t *Trader) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.opts.Interval)
	defer ticker.Stop()
	logger.Infof("trader: loop started, monitor interval %s", t.opts.Interval)
	t.publishSnapshot(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case mint := <-t.candidates:
			if _, err := t.opts.Buyer.TryBuy(ctx, mint); err != nil {
				logger.Errorf("trader: buy %s: %v", mint, err)
			}
			t.publishSnapshot(false)
		case <-ticker.C:
			t.monitorOnce(ctx)
			if t.globalStopHit() {
				t.announceGlobalStop()
				t.publishSnapshot(true)
				return ErrGlobalStop
			}
			t.publishSnapshot(false)
		}
	}
}

// monitorOnce 对账本里的每个仓位做一轮评估与执行。
// 仓位之间互相隔离，单个仓位的故障不影响其余仓位。
func (t *Trader) monitorOnce(ctx context.Context) {
	for _, pos := range t.opts.Book.All() {
		if !t.opts.Book.Has(pos.Mint) {
			continue
		}
		price, err := t.opts.Exchange.GetPrice(ctx, pos.Mint)
		priceOK := err == nil
		if err != nil && !errors.Is(err, exchange.ErrPriceUnavailable) {
			// 网络类故障跳过本轮，只有明确的无路由才触发强制出场
			logger.Warnf("trader: price for %s: %v", pos.Mint, err)
			continue
		}

		out := exitrule.Evaluate(pos, price, priceOK, t.now(), t.opts.Rules)
		if out.NewHighWater.GreaterThan(pos.HighWaterPrice) {
			pos.HighWaterPrice = out.NewHighWater
		}
		for _, act := range out.Actions {
			// 档位记账先于执行：即便卖出重试耗尽，同一档也不会再触发
			if act.Tier != 0 {
				pos.MarkTierTaken(act.Tier)
			}
			if err := t.opts.Seller.Execute(ctx, pos, act); err != nil {
				logger.Errorf("trader: execute %s on %s: %v", act.Reason, pos.Mint, err)
			}
			if act.Terminal() && !t.opts.Book.Has(pos.Mint) {
				break
			}
		}
		if t.globalStopHit() {
			return
		}
	}
}

func (t *Trader) globalStopHit() bool {
	floor := t.opts.GlobalStopLossUSD
	if floor.Sign() >= 0 {
		return false
	}
	return t.opts.Book.RealizedPnlUSD().LessThanOrEqual(floor)
}

func (t *Trader) announceGlobalStop() {
	pnl := t.opts.Book.RealizedPnlUSD()
	logger.Errorf("trader: global stop loss hit, realized pnl %s USD <= %s USD", pnl.StringFixed(2), t.opts.GlobalStopLossUSD.StringFixed(2))
	t.opts.Events.Append("error", "global stop loss triggered", nil, pnl.InexactFloat64())
	if err := t.opts.Notify.SendText(notifier.GlobalStopMessage(pnl, t.opts.GlobalStopLossUSD)); err != nil {
		logger.Warnf("trader: notify global stop: %v", err)
	}
}
