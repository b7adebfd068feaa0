package config

import (
	"time"

	"github.com/shopspring/decimal"

	"talon/internal/strategy/exitrule"
	"talon/internal/types"
)

// Config 是 talon 的主配置载体。
type Config struct {
	App     AppConfig     `toml:"app"`
	Solana  SolanaConfig  `toml:"solana"`
	Jupiter JupiterConfig `toml:"jupiter"`
	Trading TradingConfig `toml:"trading"`
	Risk    RiskConfig    `toml:"risk"`
	Vetting VettingConfig `toml:"vetting"`
	Notify  NotifyConfig  `toml:"notify"`
	Store   StoreConfig   `toml:"store"`
	Monitor MonitorConfig `toml:"monitor"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type SolanaConfig struct {
	RPCURL     string `toml:"rpc_url"`
	WSURL      string `toml:"ws_url"`
	Commitment string `toml:"commitment"`
	// PrivateKey 是 base58 编码的钱包私钥，建议用 TALON_SOLANA_PRIVATE_KEY 注入。
	PrivateKey string `toml:"private_key"`
}

type JupiterConfig struct {
	QuoteAPIURL     string `toml:"quote_api_url"`
	PriceAPIURL     string `toml:"price_api_url"`
	SlippageBps     int    `toml:"slippage_bps"`
	PreQuoteDelayMS int    `toml:"pre_quote_delay_ms"`
}

// TradingConfig 控制组合容量与按风险级别的建仓规模。
type TradingConfig struct {
	MaxPortfolioSize int     `toml:"max_portfolio_size"`
	AmountSOLGood    float64 `toml:"amount_sol_good"`
	AmountSOLWarning float64 `toml:"amount_sol_warning"`
	AmountSOLDanger  float64 `toml:"amount_sol_danger"`
	// MinSOLBalance 是始终留在钱包里的底仓（手续费与租金）。
	MinSOLBalance float64 `toml:"min_sol_balance"`
}

// AmountFor 返回某级别的建仓规模；未知级别回落到最保守的 DANGER 档。
func (t TradingConfig) AmountFor(tier types.RiskTier) decimal.Decimal {
	switch tier {
	case types.RiskGood:
		return decimal.NewFromFloat(t.AmountSOLGood)
	case types.RiskWarning:
		return decimal.NewFromFloat(t.AmountSOLWarning)
	default:
		return decimal.NewFromFloat(t.AmountSOLDanger)
	}
}

type TierConfig struct {
	ProfitPercent float64 `toml:"profit_percent"`
	SellPercent   float64 `toml:"sell_percent"`
}

// RiskConfig 汇总全部出场阈值。-10% 硬止损固定在代码里，不从这里读。
type RiskConfig struct {
	TrailingStopPercent      float64    `toml:"trailing_stop_percent"`
	DeepLossPercentDanger    float64    `toml:"deep_loss_percent_danger"` // 负数
	StaleDangerMinutes       int        `toml:"stale_danger_minutes"`
	GlobalStopLossUSD        float64    `toml:"global_stop_loss_usd"` // 负数
	TakeProfitPercentWarning float64    `toml:"take_profit_percent_warning"`
	TakeProfitPercentDanger  float64    `toml:"take_profit_percent_danger"`
	GoodTP1                  TierConfig `toml:"good_tp1"`
	GoodTP2                  TierConfig `toml:"good_tp2"`
	GoodTP3                  TierConfig `toml:"good_tp3"`
}

// Rules 把配置折算成 evaluator 的不可变输入。
func (r RiskConfig) Rules() exitrule.Rules {
	return exitrule.Rules{
		TrailingStopPercent: decimal.NewFromFloat(r.TrailingStopPercent),
		HardStopPercent:     exitrule.FixedHardStopPercent,
		DeepLossPercent:     decimal.NewFromFloat(r.DeepLossPercentDanger),
		StaleDangerAfter:    time.Duration(r.StaleDangerMinutes) * time.Minute,
		TakeProfitWarning:   decimal.NewFromFloat(r.TakeProfitPercentWarning),
		TakeProfitDanger:    decimal.NewFromFloat(r.TakeProfitPercentDanger),
		GoodTier1:           tierRule(r.GoodTP1),
		GoodTier2:           tierRule(r.GoodTP2),
		GoodTier3:           tierRule(r.GoodTP3),
	}
}

func tierRule(t TierConfig) exitrule.TierRule {
	return exitrule.TierRule{
		ProfitPercent: decimal.NewFromFloat(t.ProfitPercent),
		SellPercent:   decimal.NewFromFloat(t.SellPercent),
	}
}

type VettingConfig struct {
	RugcheckAPIURL     string  `toml:"rugcheck_api_url"`
	MinLiquidityUSD    float64 `toml:"min_liquidity_usd"`
	MaxLiquidityUSD    float64 `toml:"max_liquidity_usd"`
	MinMarketCapUSD    float64 `toml:"min_market_cap_usd"`
	MaxSimulationLoss  float64 `toml:"max_simulation_loss_percent"`
	MaxTaxPercent      float64 `toml:"max_tax_percent"`
	MaxOwnerPercent    float64 `toml:"max_owner_percent"`
	MaxDevWallets      int     `toml:"max_dev_wallets"`
	MinLPLockDays      int     `toml:"min_lp_lock_days"`
	BlacklistPath      string  `toml:"blacklist_path"`
	TimeoutSeconds     int     `toml:"timeout_seconds"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

type StoreConfig struct {
	TradesPath   string `toml:"trades_path"`
	EventLogPath string `toml:"event_log_path"`
}

type MonitorConfig struct {
	IntervalSeconds          int `toml:"interval_seconds"`
	SellRetryAttempts        int `toml:"sell_retry_attempts"`
	SellRetryDelaySeconds    int `toml:"sell_retry_delay_seconds"`
	CloseAccountDelaySeconds int `toml:"close_account_delay_seconds"`
}

func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalSeconds) * time.Second
}

func (m MonitorConfig) SellRetryDelay() time.Duration {
	return time.Duration(m.SellRetryDelaySeconds) * time.Second
}

func (m MonitorConfig) CloseAccountDelay() time.Duration {
	return time.Duration(m.CloseAccountDelaySeconds) * time.Second
}
