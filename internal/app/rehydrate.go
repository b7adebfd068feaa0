package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"talon/internal/logger"
	"talon/internal/portfolio"
	"talon/internal/store"
	"talon/internal/types"
)

// rehydrate 从 trade 流水恢复重启前仍然持有的仓位。
// 高水位没有持久化，从建仓价重新爬升；风险级别缺失时按 UNKNOWN 恢复，
// 出场规则会把它当 DANGER 处理。
func rehydrate(ctx context.Context, book *portfolio.Book, trades store.TradeLog) error {
	rows, err := trades.ListOpenTrades(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		price, err := decimal.NewFromString(row.PriceSOL)
		if err != nil {
			logger.Warnf("app: bad price %q on trade %d, skipping", row.PriceSOL, row.ID)
			continue
		}
		amount := decimal.Zero
		if price.Sign() > 0 {
			amount = decimal.NewFromFloat(row.AmountSOL).Div(price).Floor()
		}
		pos := &types.Position{
			Mint:           row.Mint,
			PurchasePrice:  price,
			TradeAmountSOL: decimal.NewFromFloat(row.AmountSOL),
			HeldAmount:     amount,
			RiskTier:       types.ParseRiskTier(row.RiskTier),
			OpenedAt:       time.Unix(row.CreatedAtUnix, 0),
			HighWaterPrice: price,
			BuySignature:   row.Signature,
		}
		if err := book.Add(pos); err != nil {
			logger.Warnf("app: restore %s: %v", row.Mint, err)
			continue
		}
		logger.Infof("app: restored position %s, tier=%s opened=%s", pos.Mint, pos.RiskTier, pos.OpenedAt.Format(time.RFC3339))
	}
	if book.Size() > 0 {
		logger.Infof("app: %d position(s) restored", book.Size())
	}
	// 累计已实现盈亏以最近一条流水为准，保证全局止损跨重启生效
	pnl, err := trades.LastRunningPnlUSD(ctx)
	if err != nil {
		return err
	}
	book.SetRealizedPnlUSD(pnl)
	return nil
}
