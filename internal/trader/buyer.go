package trader

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"talon/internal/config"
	"talon/internal/gateway/exchange"
	"talon/internal/gateway/notifier"
	"talon/internal/logger"
	"talon/internal/portfolio"
	"talon/internal/store"
	"talon/internal/store/eventlog"
	"talon/internal/store/model"
	"talon/internal/types"
	"talon/internal/vetting"
)

// Vetter 是买前审查的最小契约，由 vetting.Service 实现。
type Vetter interface {
	TokenMetadata(ctx context.Context, mint string) (*vetting.Metadata, error)
	Check(ctx context.Context, mint string) (*vetting.Verdict, error)
}

// DenyList 是名称/符号黑名单的最小契约，由 vetting.Blacklist 实现。
type DenyList interface {
	Contains(nameOrSymbol string) bool
	Add(entry string) error
}

// Buyer 负责买入准入与建仓。入场前的任何一道闸门不通过都不产生状态变更；
// swap 确认之后才登记仓位与流水。
type Buyer struct {
	exchange  exchange.Client
	book      *portfolio.Book
	trades    store.TradeLog
	vet       Vetter
	blacklist DenyList
	events    *eventlog.Store
	notify    notifier.TextNotifier

	trading     config.TradingConfig
	slippageBps int

	now func() time.Time
}

func NewBuyer(ex exchange.Client, book *portfolio.Book, trades store.TradeLog,
	vet Vetter, blacklist DenyList, events *eventlog.Store, notify notifier.TextNotifier,
	trading config.TradingConfig, slippageBps int) *Buyer {
	return &Buyer{
		exchange:    ex,
		book:        book,
		trades:      trades,
		vet:         vet,
		blacklist:   blacklist,
		events:      events,
		notify:      notify,
		trading:     trading,
		slippageBps: slippageBps,
		now:         time.Now,
	}
}

// TryBuy 对一个候选 mint 走完整的准入与建仓流程。
// 被闸门拦下不算错误，返回 (false, nil)；只有执行层故障才返回 error。
func (b *Buyer) TryBuy(ctx context.Context, mint string) (bool, error) {
	if b.book.Has(mint) {
		logger.Debugf("buyer: %s already held, skipping", mint)
		return false, nil
	}
	if b.book.Size() >= b.trading.MaxPortfolioSize {
		logger.Infof("buyer: portfolio full (%d/%d), skipping %s", b.book.Size(), b.trading.MaxPortfolioSize, mint)
		return false, nil
	}
	bought, err := b.trades.HasPurchased(ctx, mint)
	if err != nil {
		return false, err
	}
	if bought {
		logger.Debugf("buyer: %s purchased before, skipping", mint)
		return false, nil
	}

	// 元数据拿不到不拦路，只影响黑名单匹配与后续记名
	meta, err := b.vet.TokenMetadata(ctx, mint)
	if err != nil || meta == nil {
		logger.Warnf("buyer: metadata for %s unavailable: %v", mint, err)
		meta = &vetting.Metadata{}
	}
	if b.blacklist.Contains(meta.Name) || b.blacklist.Contains(meta.Symbol) {
		logger.Infof("buyer: %s (%s/%s) blacklisted, skipping", mint, meta.Name, meta.Symbol)
		return false, nil
	}

	verdict, err := b.vet.Check(ctx, mint)
	if err != nil {
		if errors.Is(err, vetting.ErrRejected) {
			return false, nil
		}
		return false, err
	}

	size := b.trading.AmountFor(verdict.Tier)
	balance, err := b.exchange.GetQuoteBalance(ctx)
	if err != nil {
		return false, err
	}
	need := size.Add(decimal.NewFromFloat(b.trading.MinSOLBalance))
	if balance.LessThan(need) {
		logger.Warnf("buyer: balance %s SOL below %s needed for %s, skipping", balance, need, mint)
		return false, nil
	}

	res, err := b.exchange.Swap(ctx, exchange.SwapRequest{
		Mint:        mint,
		Direction:   exchange.Buy,
		Amount:      exchange.SOLToLamports(size),
		SlippageBps: b.slippageBps,
	})
	if err != nil {
		return false, err
	}

	// 成交价直接由本笔兑换推出，比再打一次报价接口更贴近实际成本
	price := decimal.Zero
	if res.OutAmount.Sign() > 0 {
		price = size.Div(res.OutAmount)
	}

	pos := &types.Position{
		Mint:           mint,
		PurchasePrice:  price,
		TradeAmountSOL: size,
		HeldAmount:     res.OutAmount,
		RiskTier:       verdict.Tier,
		OpenedAt:       b.now(),
		HighWaterPrice: price,
		BuySignature:   res.Signature,
	}
	if err := b.book.Add(pos); err != nil {
		// swap 已经上链，只能记日志，仓位会在下次重启从流水恢复
		logger.Errorf("buyer: register position %s: %v", mint, err)
	}
	if err := b.trades.AddPurchased(ctx, mint); err != nil {
		logger.Errorf("buyer: mark purchased %s: %v", mint, err)
	}
	rec := store.TradeRecord{
		Side:          model.TradeSideBuy,
		Mint:          mint,
		RiskTier:      string(verdict.Tier),
		AmountSOL:     size,
		PriceSOL:      price,
		FeeLamports:   res.FeeLamports,
		Signature:     res.Signature,
		RunningPnlUSD: b.book.RealizedPnlUSD(),
		VettingJSON:   verdict.RawJSON,
		CreatedAt:     b.now(),
	}
	if err := b.trades.RecordTrade(ctx, rec); err != nil {
		logger.Errorf("buyer: record buy %s: %v", mint, err)
	}
	// 同名仿盘只买一次
	for _, entry := range []string{meta.Name, meta.Symbol} {
		if entry == "" {
			continue
		}
		if err := b.blacklist.Add(entry); err != nil {
			logger.Warnf("buyer: blacklist add %q: %v", entry, err)
		}
	}
	b.events.Append("info", "position opened", map[string]any{
		"mint": mint,
		"tier": string(verdict.Tier),
	}, b.book.RealizedPnlUSD().InexactFloat64())
	logger.Infof("buyer: bought %s, tier=%s size=%s SOL price=%s", mint, verdict.Tier, size, price)
	if nerr := b.notify.SendText(notifier.BuyMessage(mint, string(verdict.Tier), size, price)); nerr != nil {
		logger.Warnf("buyer: notify buy: %v", nerr)
	}
	return true, nil
}
