// Package exchange defines the abstraction over the swap/price venue.
// The core trading logic only depends on these contracts, so the Jupiter
// backend can be swapped out without touching the trader.
package exchange

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrPriceUnavailable 表示当前拿不到该代币的可用报价（无路由或流动性枯竭）。
	// 对核心逻辑而言这不是错误，而是强制出场信号。
	ErrPriceUnavailable = errors.New("exchange: price unavailable")
	// ErrSwapFailed 表示一次 swap 在链上未确认，可在有限次数内重试。
	ErrSwapFailed = errors.New("exchange: swap failed")
)

// Direction 表示交易方向（quote→token 为买，token→quote 为卖）。
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// SwapRequest 描述一次兑换。
// 买入时 Amount 为投入的 lamports，卖出时为代币原始数量。
type SwapRequest struct {
	Mint        string
	Direction   Direction
	Amount      decimal.Decimal
	SlippageBps int
}

// SwapResult 是一次已确认兑换的结果。
type SwapResult struct {
	Signature   string          // 链上交易签名
	OutAmount   decimal.Decimal // 实际兑出的数量（买入为 token 原始数量，卖出为 lamports）
	FeeLamports decimal.Decimal
	ConfirmedAt time.Time
}

// OutSOL 把卖出所得换算成 SOL。
func (r *SwapResult) OutSOL() decimal.Decimal {
	return LamportsToSOL(r.OutAmount)
}

var lamportsPerSOL = decimal.NewFromInt(1_000_000_000)

func LamportsToSOL(lamports decimal.Decimal) decimal.Decimal {
	return lamports.Div(lamportsPerSOL)
}

func SOLToLamports(sol decimal.Decimal) decimal.Decimal {
	return sol.Mul(lamportsPerSOL).Round(0)
}
