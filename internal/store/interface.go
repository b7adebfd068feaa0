// Package store 定义交易持久层契约：trade 流水、仓位状态回写与买过代币去重。
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"talon/internal/store/model"
)

// TradeRecord 是写入 trades 表的一笔成交。
type TradeRecord struct {
	Side          model.TradeSide
	Mint          string
	RiskTier      string
	AmountSOL     decimal.Decimal
	PriceSOL      decimal.Decimal
	FeeLamports   decimal.Decimal
	Signature     string
	Reason        string
	RunningPnlUSD decimal.Decimal
	VettingJSON   []byte
	CreatedAt     time.Time
}

type TradeLog interface {
	// RecordTrade 追加一笔成交。BUY 行初始状态为 OPEN。
	RecordTrade(ctx context.Context, rec TradeRecord) error

	// UpdateStatus 按建仓签名回写仓位状态（SOLD / SELL_FAILED）。
	UpdateStatus(ctx context.Context, signature string, status model.TradeStatus) error

	// ListOpenTrades 返回重启恢复用的 BUY 行（OPEN 与 SELL_FAILED）。
	ListOpenTrades(ctx context.Context) ([]model.TradeModel, error)

	// LastRunningPnlUSD 返回最近一笔成交落库时的累计已实现盈亏，
	// 空库返回零。全局止损依赖它跨重启生效。
	LastRunningPnlUSD(ctx context.Context) (decimal.Decimal, error)

	HasPurchased(ctx context.Context, mint string) (bool, error)
	AddPurchased(ctx context.Context, mint string) error
}
