package config

import (
	"fmt"
	"strings"
)

func validate(cfg *Config) error {
	var problems []string
	add := func(format string, v ...any) {
		problems = append(problems, fmt.Sprintf(format, v...))
	}

	if strings.TrimSpace(cfg.Solana.RPCURL) == "" {
		add("solana.rpc_url 必填")
	}
	if strings.TrimSpace(cfg.Solana.WSURL) == "" {
		add("solana.ws_url 必填")
	}
	if strings.TrimSpace(cfg.Solana.PrivateKey) == "" {
		add("solana.private_key 必填（可用 TALON_SOLANA_PRIVATE_KEY 注入）")
	}
	if cfg.Trading.AmountSOLGood <= 0 || cfg.Trading.AmountSOLWarning <= 0 || cfg.Trading.AmountSOLDanger <= 0 {
		add("trading.amount_sol_* 三档都必须为正")
	}
	if cfg.Trading.MinSOLBalance < 0 {
		add("trading.min_sol_balance 不能为负")
	}
	if cfg.Risk.TrailingStopPercent <= 0 {
		add("risk.trailing_stop_percent 必须为正")
	}
	if cfg.Risk.DeepLossPercentDanger >= -10 {
		add("risk.deep_loss_percent_danger 必须比 -10 的硬止损更深")
	}
	if cfg.Risk.GlobalStopLossUSD >= 0 {
		add("risk.global_stop_loss_usd 必须为负")
	}
	if cfg.Risk.StaleDangerMinutes <= 0 {
		add("risk.stale_danger_minutes 必须为正")
	}
	tp1, tp2, tp3 := cfg.Risk.GoodTP1, cfg.Risk.GoodTP2, cfg.Risk.GoodTP3
	if !(tp1.ProfitPercent > 0 && tp1.ProfitPercent < tp2.ProfitPercent && tp2.ProfitPercent < tp3.ProfitPercent) {
		add("risk.good_tp1/tp2/tp3 的触发阈值必须严格递增且为正")
	}
	for name, tier := range map[string]TierConfig{"good_tp1": tp1, "good_tp2": tp2, "good_tp3": tp3} {
		if tier.SellPercent <= 0 || tier.SellPercent > 100 {
			add("risk.%s.sell_percent 必须在 (0,100]", name)
		}
	}
	if cfg.Vetting.MinLiquidityUSD < 0 || cfg.Vetting.MaxLiquidityUSD <= cfg.Vetting.MinLiquidityUSD {
		add("vetting 流动性上下限不合法")
	}
	if cfg.Notify.Telegram.Enabled {
		if cfg.Notify.Telegram.BotToken == "" || cfg.Notify.Telegram.ChatID == "" {
			add("notify.telegram 启用时 bot_token 与 chat_id 必填")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
