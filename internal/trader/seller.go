package trader

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"talon/internal/gateway/exchange"
	"talon/internal/gateway/notifier"
	"talon/internal/logger"
	"talon/internal/portfolio"
	"talon/internal/store"
	"talon/internal/store/eventlog"
	"talon/internal/store/model"
	"talon/internal/strategy/exitrule"
	"talon/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Seller 执行出场动作：读取链上权威余额、swap、记账、回写仓位状态。
// 所有方法都在 trader 的事件循环里被调用，不做内部加锁。
type Seller struct {
	exchange exchange.Client
	book     *portfolio.Book
	trades   store.TradeLog
	events   *eventlog.Store
	notify   notifier.TextNotifier

	slippageBps int
	retry       RetryPolicy
	closeDelay  time.Duration

	now func() time.Time
}

func NewSeller(ex exchange.Client, book *portfolio.Book, trades store.TradeLog,
	events *eventlog.Store, notify notifier.TextNotifier,
	slippageBps int, retry RetryPolicy, closeDelay time.Duration) *Seller {
	return &Seller{
		exchange:    ex,
		book:        book,
		trades:      trades,
		events:      events,
		notify:      notify,
		slippageBps: slippageBps,
		retry:       retry,
		closeDelay:  closeDelay,
		now:         time.Now,
	}
}

// Execute 执行一条卖出指令，内部带有界重试。
// 重试耗尽时仓位保留在账本里并标记 SELL_FAILED，等待下一轮监控再触发。
func (s *Seller) Execute(ctx context.Context, pos *types.Position, act exitrule.Action) error {
	err := s.retry.Do(ctx, func() error {
		return s.sellOnce(ctx, pos, act)
	})
	if err == nil {
		return nil
	}
	logger.Errorf("trader: sell %s (%s) failed after %d attempts: %v", pos.Mint, act.Reason, s.retry.Attempts, err)
	if uerr := s.trades.UpdateStatus(ctx, pos.BuySignature, model.TradeStatusSellFailed); uerr != nil {
		logger.Errorf("trader: mark SELL_FAILED %s: %v", pos.Mint, uerr)
	}
	s.events.Append("error", "sell failed", map[string]any{
		"mint":   pos.Mint,
		"reason": string(act.Reason),
	}, s.book.RealizedPnlUSD().InexactFloat64())
	if nerr := s.notify.SendText(notifier.SellFailedMessage(pos.Mint, s.retry.Attempts)); nerr != nil {
		logger.Warnf("trader: notify sell failed: %v", nerr)
	}
	return err
}

// sellOnce 是单次卖出尝试。每次尝试都重新读链上余额，
// 上一次尝试可能已经部分或全部成交。
func (s *Seller) sellOnce(ctx context.Context, pos *types.Position, act exitrule.Action) error {
	balance, err := s.exchange.GetTokenBalance(ctx, pos.Mint)
	if err != nil {
		return err
	}
	if balance.Sign() <= 0 {
		// 链上已无持仓（上次尝试实际成交，或被外部转走），直接收尾
		logger.Infof("trader: %s balance is zero, closing position without swap", pos.Mint)
		s.closePosition(ctx, pos, false)
		return nil
	}

	amount := balance.Mul(act.SellPercent).Div(hundred).Floor()
	if amount.Sign() <= 0 {
		logger.Warnf("trader: %s sell %s%% of %s rounds to zero, skipping", pos.Mint, act.SellPercent, balance)
		return nil
	}

	res, err := s.exchange.Swap(ctx, exchange.SwapRequest{
		Mint:        pos.Mint,
		Direction:   exchange.Sell,
		Amount:      amount,
		SlippageBps: s.slippageBps,
	})
	if err != nil {
		return err
	}

	received := res.OutSOL()
	total := s.settle(ctx, pos, act, amount, received, res)

	if act.Terminal() {
		s.closePosition(ctx, pos, true)
	} else {
		pos.HeldAmount = balance.Sub(amount)
	}

	logger.Infof("trader: sold %s%% of %s for %s SOL (%s), pnl total %s USD",
		act.SellPercent, pos.Mint, received, act.Reason, total.StringFixed(2))
	if nerr := s.notify.SendText(notifier.SellMessage(pos.Mint, string(act.Reason), act.SellPercent, received, total)); nerr != nil {
		logger.Warnf("trader: notify sell: %v", nerr)
	}
	return nil
}

// settle 记一笔 SELL 流水并更新累计已实现盈亏，返回更新后的累计值。
func (s *Seller) settle(ctx context.Context, pos *types.Position, act exitrule.Action,
	amount, received decimal.Decimal, res *exchange.SwapResult) decimal.Decimal {

	// 成本按卖出比例分摊建仓投入，盈亏以 SOL 计再按当前 SOL/USD 折算。
	costSOL := pos.TradeAmountSOL.Mul(act.SellPercent).Div(hundred)
	deltaSOL := received.Sub(costSOL)
	solUSD, err := s.exchange.GetQuoteUSDPrice(ctx)
	if err != nil {
		logger.Warnf("trader: SOL/USD price unavailable, realized pnl not updated: %v", err)
		solUSD = decimal.Zero
	}
	total := s.book.AddRealizedPnlUSD(deltaSOL.Mul(solUSD))

	price := decimal.Zero
	if amount.Sign() > 0 {
		price = received.Div(amount)
	}
	rec := store.TradeRecord{
		Side:          model.TradeSideSell,
		Mint:          pos.Mint,
		RiskTier:      string(pos.RiskTier),
		AmountSOL:     received,
		PriceSOL:      price,
		FeeLamports:   res.FeeLamports,
		Signature:     res.Signature,
		Reason:        string(act.Reason),
		RunningPnlUSD: total,
		CreatedAt:     s.now(),
	}
	if err := s.trades.RecordTrade(ctx, rec); err != nil {
		logger.Errorf("trader: record sell %s: %v", pos.Mint, err)
	}
	s.events.Append("info", "position sold", map[string]any{
		"mint":    pos.Mint,
		"reason":  string(act.Reason),
		"percent": act.SellPercent.String(),
	}, total.InexactFloat64())
	return total
}

// closePosition 把仓位移出账本并回写 SOLD。closeAccount 为真时，
// 延迟一段时间后尽力关闭代币账户回收租金（等待链上余额清零）。
func (s *Seller) closePosition(ctx context.Context, pos *types.Position, closeAccount bool) {
	s.book.Remove(pos.Mint)
	if err := s.trades.UpdateStatus(ctx, pos.BuySignature, model.TradeStatusSold); err != nil {
		logger.Errorf("trader: mark SOLD %s: %v", pos.Mint, err)
	}
	if !closeAccount {
		return
	}
	mint := pos.Mint
	delay := s.closeDelay
	go func() {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
		if err := s.exchange.CloseTokenAccount(ctx, mint); err != nil {
			logger.Warnf("trader: close token account %s: %v", mint, err)
		}
	}()
}
