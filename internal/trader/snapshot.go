package trader

import (
	"time"

	"github.com/shopspring/decimal"
)

// PositionView 是仓位的只读快照，供 HTTP 查询接口使用。
type PositionView struct {
	Mint           string          `json:"mint"`
	RiskTier       string          `json:"risk_tier"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	HighWaterPrice decimal.Decimal `json:"high_water_price"`
	HeldAmount     decimal.Decimal `json:"held_amount"`
	TradeAmountSOL decimal.Decimal `json:"trade_amount_sol"`
	OpenedAt       time.Time       `json:"opened_at"`
	TakenTiers     []int           `json:"taken_tiers,omitempty"`
}

// Snapshot 是账本在某个时刻的完整快照。
// 账本本身只在事件循环里被读写，外部观察统一走这里。
type Snapshot struct {
	Positions      []PositionView  `json:"positions"`
	RealizedPnlUSD decimal.Decimal `json:"realized_pnl_usd"`
	Halted         bool            `json:"halted"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Snapshot 返回最近一次发布的账本快照，循环尚未发布时返回空快照。
func (t *Trader) Snapshot() *Snapshot {
	if s := t.snapshot.Load(); s != nil {
		return s
	}
	return &Snapshot{RealizedPnlUSD: decimal.Zero, UpdatedAt: time.Time{}}
}

// publishSnapshot 在事件循环里构建并发布新快照。
func (t *Trader) publishSnapshot(halted bool) {
	positions := t.opts.Book.All()
	views := make([]PositionView, 0, len(positions))
	for _, pos := range positions {
		tiers := pos.TakenTiers()
		taken := make([]int, 0, len(tiers))
		for _, tier := range tiers {
			taken = append(taken, int(tier))
		}
		views = append(views, PositionView{
			Mint:           pos.Mint,
			RiskTier:       string(pos.RiskTier),
			PurchasePrice:  pos.PurchasePrice,
			HighWaterPrice: pos.HighWaterPrice,
			HeldAmount:     pos.HeldAmount,
			TradeAmountSOL: pos.TradeAmountSOL,
			OpenedAt:       pos.OpenedAt,
			TakenTiers:     taken,
		})
	}
	t.snapshot.Store(&Snapshot{
		Positions:      views,
		RealizedPnlUSD: t.opts.Book.RealizedPnlUSD(),
		Halted:         halted,
		UpdatedAt:      t.now(),
	})
}
