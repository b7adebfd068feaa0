package config

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8080"
	}
	if c.Solana.Commitment == "" {
		c.Solana.Commitment = "confirmed"
	}
	if c.Jupiter.SlippageBps <= 0 {
		c.Jupiter.SlippageBps = 100
	}
	if c.Trading.MaxPortfolioSize <= 0 {
		c.Trading.MaxPortfolioSize = 3
	}
	if c.Vetting.RugcheckAPIURL == "" {
		c.Vetting.RugcheckAPIURL = "https://api.rugcheck.xyz/v1"
	}
	if c.Vetting.TimeoutSeconds <= 0 {
		c.Vetting.TimeoutSeconds = 15
	}
	if c.Vetting.BlacklistPath == "" {
		c.Vetting.BlacklistPath = "data/blacklist.txt"
	}
	if c.Store.TradesPath == "" {
		c.Store.TradesPath = "data/talon.db"
	}
	if c.Store.EventLogPath == "" {
		c.Store.EventLogPath = "data/events.db"
	}
	if c.Monitor.IntervalSeconds <= 0 {
		c.Monitor.IntervalSeconds = 30
	}
	if c.Monitor.SellRetryAttempts <= 0 {
		c.Monitor.SellRetryAttempts = 3
	}
	if c.Monitor.SellRetryDelaySeconds <= 0 {
		c.Monitor.SellRetryDelaySeconds = 5
	}
	if c.Monitor.CloseAccountDelaySeconds <= 0 {
		c.Monitor.CloseAccountDelaySeconds = 30
	}
}
