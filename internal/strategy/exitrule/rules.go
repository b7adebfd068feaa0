// Package exitrule 实现仓位出场决策：输入仓位与当前价，输出零或多个卖出动作。
// 评估本身是纯函数，不修改仓位；高水位更新与档位记账由调用方（trader）应用。
package exitrule

import (
	"time"

	"github.com/shopspring/decimal"

	"talon/internal/types"
)

// Reason 是卖出动作的原因码，写入 trade 日志与通知。
type Reason string

const (
	ReasonPriceLost    Reason = "PRICE_LOST"    // 拿不到报价，按不可交易处理
	ReasonTrailingStop Reason = "TRAILING_STOP" // 盈利中自峰值回撤超限
	ReasonHardStop     Reason = "HARD_STOP"     // 固定 -10% 硬止损
	ReasonStaleDanger  Reason = "STALE_DANGER"  // DANGER 级持仓过久
	ReasonDeepLoss     Reason = "DEEP_LOSS"     // DANGER 级深跌
	ReasonTakeProfit1  Reason = "TAKE_PROFIT_TP1"
	ReasonTakeProfit2  Reason = "TAKE_PROFIT_TP2"
	ReasonTakeProfit3  Reason = "TAKE_PROFIT_TP3"
	ReasonTakeProfit   Reason = "TAKE_PROFIT" // WARNING/DANGER 级单档止盈
)

// Action 是一条卖出指令。SellPercent 取 (0,100]，100 表示清仓。
type Action struct {
	SellPercent decimal.Decimal
	Reason      Reason
	// Tier 非零时表示该动作对应 GOOD 级止盈档位，调用方需记账防止重复触发。
	Tier types.ProfitTier
}

// Terminal 报告该动作是否会移除仓位（100% 卖出）。
func (a Action) Terminal() bool {
	return a.SellPercent.GreaterThanOrEqual(hundred)
}

// TierRule 描述 GOOD 级单个止盈档位。
type TierRule struct {
	ProfitPercent decimal.Decimal // 触发盈亏阈值（正数）
	SellPercent   decimal.Decimal // 触发后卖出比例
}

// Rules 是全部出场阈值，来自配置，评估期间不变。
type Rules struct {
	TrailingStopPercent decimal.Decimal // 峰值回撤触发线（正数）
	HardStopPercent     decimal.Decimal // 固定硬止损线（负数，独立于其它阈值）
	DeepLossPercent     decimal.Decimal // DANGER 深跌线（负数，比硬止损更深）
	StaleDangerAfter    time.Duration   // DANGER 盈利仓的最长持有时间
	TakeProfitWarning   decimal.Decimal // WARNING 单档止盈线
	TakeProfitDanger    decimal.Decimal // DANGER 单档止盈线
	GoodTier1           TierRule
	GoodTier2           TierRule
	GoodTier3           TierRule
}

// Outcome 是一次评估的结果。
type Outcome struct {
	// NewHighWater 大于仓位现有高水位时，调用方应先应用它再执行动作。
	NewHighWater decimal.Decimal
	Actions      []Action
}

var hundred = decimal.NewFromInt(100)

var fullExit = hundred

// FixedHardStopPercent 是固定的 -10% 硬止损线。刻意不走配置：
// 独立于其它阈值的最后一道保护。
var FixedHardStopPercent = decimal.NewFromInt(-10)

// Evaluate 按固定顺序评估出场规则。priceOK 为 false（或 current<=0）视作报价丢失。
// 终局规则（清仓）最先命中者生效；GOOD 级止盈只触发最高的未执行档位。
func Evaluate(pos *types.Position, current decimal.Decimal, priceOK bool, now time.Time, rules Rules) Outcome {
	var out Outcome
	if pos == nil {
		return out
	}
	if !priceOK || current.Sign() <= 0 {
		out.Actions = append(out.Actions, Action{SellPercent: fullExit, Reason: ReasonPriceLost})
		return out
	}

	high := pos.HighWaterPrice
	if current.GreaterThan(high) {
		high = current
		out.NewHighWater = current
	}

	pnl := pos.PnlPercent(current)
	drop := decimal.Zero
	if high.Sign() > 0 {
		drop = high.Sub(current).Div(high).Mul(hundred)
	}

	if pnl.Sign() > 0 && drop.GreaterThanOrEqual(rules.TrailingStopPercent) {
		out.Actions = append(out.Actions, Action{SellPercent: fullExit, Reason: ReasonTrailingStop})
		return out
	}

	tier := pos.RiskTier.Effective()

	// DANGER 深跌线比硬止损更深；两者同时击穿时取更具体的原因码。
	if tier == types.RiskDanger && pnl.LessThanOrEqual(rules.DeepLossPercent) {
		out.Actions = append(out.Actions, Action{SellPercent: fullExit, Reason: ReasonDeepLoss})
		return out
	}
	if pnl.LessThanOrEqual(rules.HardStopPercent) {
		out.Actions = append(out.Actions, Action{SellPercent: fullExit, Reason: ReasonHardStop})
		return out
	}
	if tier == types.RiskDanger && pnl.Sign() > 0 && rules.StaleDangerAfter > 0 && pos.HeldDuration(now) > rules.StaleDangerAfter {
		out.Actions = append(out.Actions, Action{SellPercent: fullExit, Reason: ReasonStaleDanger})
		return out
	}

	switch tier {
	case types.RiskGood:
		if act, ok := goodTierAction(pos, pnl, rules); ok {
			out.Actions = append(out.Actions, act)
		}
	case types.RiskWarning:
		if pnl.GreaterThanOrEqual(rules.TakeProfitWarning) {
			out.Actions = append(out.Actions, Action{SellPercent: fullExit, Reason: ReasonTakeProfit})
		}
	case types.RiskDanger:
		if pnl.GreaterThanOrEqual(rules.TakeProfitDanger) {
			out.Actions = append(out.Actions, Action{SellPercent: fullExit, Reason: ReasonTakeProfit})
		}
	}
	return out
}

// goodTierAction 自高向低找第一个达标且未执行的档位。
// TP3 视作清仓（终局）；TP2/TP1 为部分卖出，且同一轮里更低的已达标档位不再补发。
func goodTierAction(pos *types.Position, pnl decimal.Decimal, rules Rules) (Action, bool) {
	if pnl.GreaterThanOrEqual(rules.GoodTier3.ProfitPercent) && !pos.TierTaken(types.ProfitTier3) {
		return Action{SellPercent: fullExit, Reason: ReasonTakeProfit3, Tier: types.ProfitTier3}, true
	}
	if pnl.GreaterThanOrEqual(rules.GoodTier2.ProfitPercent) && !pos.TierTaken(types.ProfitTier2) {
		return Action{SellPercent: rules.GoodTier2.SellPercent, Reason: ReasonTakeProfit2, Tier: types.ProfitTier2}, true
	}
	if pnl.GreaterThanOrEqual(rules.GoodTier1.ProfitPercent) && !pos.TierTaken(types.ProfitTier1) {
		return Action{SellPercent: rules.GoodTier1.SellPercent, Reason: ReasonTakeProfit1, Tier: types.ProfitTier1}, true
	}
	return Action{}, false
}
