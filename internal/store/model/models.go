package model

import (
	"gorm.io/datatypes"
)

// TradeStatus 跟踪一笔建仓交易的生命周期。
type TradeStatus string

const (
	TradeStatusOpen       TradeStatus = "OPEN"
	TradeStatusSold       TradeStatus = "SOLD"
	TradeStatusSellFailed TradeStatus = "SELL_FAILED"
)

type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// TradeModel 是 trades 表的一行。BUY 行承载仓位状态（OPEN/SOLD/SELL_FAILED），
// 重启恢复只读取 OPEN 的 BUY 行。
type TradeModel struct {
	ID            int64          `gorm:"column:id;primaryKey"`
	Side          TradeSide      `gorm:"column:side;index"`
	Mint          string         `gorm:"column:mint;index"`
	RiskTier      string         `gorm:"column:risk_tier"`
	AmountSOL     float64        `gorm:"column:amount_sol"`
	PriceSOL      string         `gorm:"column:price_sol"`
	FeeLamports   int64          `gorm:"column:fee_lamports"`
	Signature     string         `gorm:"column:signature;index"`
	Reason        string         `gorm:"column:reason"`
	Status        TradeStatus    `gorm:"column:status;index"`
	RunningPnlUSD float64        `gorm:"column:running_pnl_usd"`
	VettingJSON   datatypes.JSON `gorm:"column:vetting_json;type:TEXT"`
	CreatedAtUnix int64          `gorm:"column:created_at"`
}

func (TradeModel) TableName() string { return "trades" }

// PurchasedTokenModel 是买过的 mint 去重集合，防止同一代币重复狙击。
type PurchasedTokenModel struct {
	ID            int64  `gorm:"column:id;primaryKey"`
	Mint          string `gorm:"column:mint;uniqueIndex"`
	CreatedAtUnix int64  `gorm:"column:created_at"`
}

func (PurchasedTokenModel) TableName() string { return "purchased_tokens" }
