package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RiskTier 是建仓时由 vetting 评定的风险级别，决定后续出场规则。
type RiskTier string

const (
	RiskGood    RiskTier = "GOOD"
	RiskWarning RiskTier = "WARNING"
	RiskDanger  RiskTier = "DANGER"
	// RiskUnknown 出现在重启恢复的仓位上（历史记录未存级别），
	// 出场规则按 DANGER 处理。
	RiskUnknown RiskTier = "UNKNOWN"
)

func ParseRiskTier(s string) RiskTier {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GOOD":
		return RiskGood
	case "WARNING", "WARN":
		return RiskWarning
	case "DANGER":
		return RiskDanger
	default:
		return RiskUnknown
	}
}

// Effective 返回用于规则匹配的级别：UNKNOWN 按最保守的 DANGER 处理。
func (t RiskTier) Effective() RiskTier {
	if t == RiskGood || t == RiskWarning || t == RiskDanger {
		return t
	}
	return RiskDanger
}

// ProfitTier 标识 GOOD 级分批止盈的档位。
type ProfitTier int

const (
	ProfitTier1 ProfitTier = 1
	ProfitTier2 ProfitTier = 2
	ProfitTier3 ProfitTier = 3
)

// Position 是一个当前持有代币的内存仓位。
// 除 HeldAmount / HighWaterPrice / 止盈档位记录外，其余字段建仓后不再变化。
type Position struct {
	Mint           string          // 代币 mint 地址，仓位唯一键
	PurchasePrice  decimal.Decimal // 建仓单价（SOL / token）
	TradeAmountSOL decimal.Decimal // 建仓投入的 SOL
	HeldAmount     decimal.Decimal // 当前持有的 token 原始数量，部分卖出后递减
	RiskTier       RiskTier
	OpenedAt       time.Time
	HighWaterPrice decimal.Decimal // 建仓以来观察到的最高价，只增不减
	BuySignature   string          // 建仓交易签名，用于 trade 状态回写

	takenTiers map[ProfitTier]bool
}

// PnlPercent 返回当前价相对建仓价的盈亏百分比。
func (p *Position) PnlPercent(current decimal.Decimal) decimal.Decimal {
	if p.PurchasePrice.IsZero() {
		return decimal.Zero
	}
	return current.Sub(p.PurchasePrice).Div(p.PurchasePrice).Mul(decimal.NewFromInt(100))
}

// DropFromPeak 返回当前价相对最高价的回撤百分比。
func (p *Position) DropFromPeak(current decimal.Decimal) decimal.Decimal {
	if p.HighWaterPrice.IsZero() {
		return decimal.Zero
	}
	return p.HighWaterPrice.Sub(current).Div(p.HighWaterPrice).Mul(decimal.NewFromInt(100))
}

// HeldDuration 返回持仓时长。
func (p *Position) HeldDuration(now time.Time) time.Duration {
	return now.Sub(p.OpenedAt)
}

// TierTaken 报告某个止盈档位是否已执行过。
func (p *Position) TierTaken(tier ProfitTier) bool {
	return p.takenTiers[tier]
}

// MarkTierTaken 记录止盈档位已执行。记录只增不减，保证每档最多触发一次。
func (p *Position) MarkTierTaken(tier ProfitTier) {
	if p.takenTiers == nil {
		p.takenTiers = make(map[ProfitTier]bool, 3)
	}
	p.takenTiers[tier] = true
}

// TakenTiers 返回已执行档位的快照（升序）。
func (p *Position) TakenTiers() []ProfitTier {
	out := make([]ProfitTier, 0, len(p.takenTiers))
	for _, t := range []ProfitTier{ProfitTier1, ProfitTier2, ProfitTier3} {
		if p.takenTiers[t] {
			out = append(out, t)
		}
	}
	return out
}
