package vetting

import (
	"fmt"

	"github.com/tidwall/gjson"

	"talon/internal/config"
	"talon/internal/types"
)

// rejectReason 按固定顺序套用过滤器，返回第一个不通过的原因；空串表示通过。
func rejectReason(report gjson.Result, cfg config.VettingConfig) string {
	if report.Get("token.freezeAuthority").String() != "" {
		return "token is freezable"
	}
	if report.Get("token.mintAuthority").String() != "" {
		return "token is mintable"
	}

	liquidity := report.Get("totalMarketLiquidity").Float()
	if liquidity < cfg.MinLiquidityUSD {
		return fmt.Sprintf("liquidity %.0f below floor %.0f", liquidity, cfg.MinLiquidityUSD)
	}
	if liquidity > cfg.MaxLiquidityUSD {
		return fmt.Sprintf("liquidity %.0f above ceiling %.0f", liquidity, cfg.MaxLiquidityUSD)
	}

	supply := report.Get("token.supply").Float()
	decimals := report.Get("token.decimals").Int()
	marketCap := report.Get("price").Float() * supply / pow10(decimals)
	if marketCap < cfg.MinMarketCapUSD {
		return fmt.Sprintf("market cap %.0f below floor %.0f", marketCap, cfg.MinMarketCapUSD)
	}

	if cfg.MaxSimulationLoss > 0 && report.Get("simulationLoss").Float() > cfg.MaxSimulationLoss {
		return "simulation loss too high"
	}
	if cfg.MaxTaxPercent > 0 {
		if report.Get("buyTax").Float() > cfg.MaxTaxPercent || report.Get("sellTax").Float() > cfg.MaxTaxPercent {
			return "buy/sell tax too high"
		}
	}
	if cfg.MaxOwnerPercent > 0 && report.Get("ownerPercent").Float() > cfg.MaxOwnerPercent {
		return "owner concentration too high"
	}
	if cfg.MaxDevWallets > 0 && report.Get("devWalletCount").Int() > int64(cfg.MaxDevWallets) {
		return "too many dev wallets"
	}
	if cfg.MinLPLockDays > 0 && report.Get("lpLockDurationDays").Int() < int64(cfg.MinLPLockDays) {
		return fmt.Sprintf("lp lock under %d days", cfg.MinLPLockDays)
	}
	return ""
}

// deriveTier 把报告的 risk 列表折算成一个级别。无风险项时默认 DANGER：
// 对拿不到风险画像的代币宁可按最坏情况建仓。
func deriveTier(report gjson.Result) types.RiskTier {
	risks := report.Get("risks").Array()
	if len(risks) == 0 {
		return types.RiskDanger
	}
	tier := types.RiskGood
	for _, r := range risks {
		switch types.ParseRiskTier(r.Get("level").String()) {
		case types.RiskDanger:
			return types.RiskDanger
		case types.RiskWarning:
			tier = types.RiskWarning
		}
	}
	return tier
}

func pow10(n int64) float64 {
	out := 1.0
	for i := int64(0); i < n; i++ {
		out *= 10
	}
	return out
}
