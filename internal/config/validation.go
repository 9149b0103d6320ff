package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Analysis.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	if err := c.Trade.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error")
	}
}

func (a *AnalysisConfig) validate() error {
	switch a.ReportPeriod {
	case "DAILY", "WEEKLY", "ALL":
		return nil
	default:
		return fmt.Errorf("analysis.report_period must be DAILY/WEEKLY/ALL")
	}
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if !tg.Enabled {
		return nil
	}
	if strings.TrimSpace(tg.BotToken) == "" {
		return fmt.Errorf("notify.telegram.bot_token cannot be empty when enabled")
	}
	if strings.TrimSpace(tg.ChatID) == "" {
		return fmt.Errorf("notify.telegram.chat_id cannot be empty when enabled")
	}
	return nil
}

func (t *TradeConfig) validate() error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return fmt.Errorf("trade.symbol cannot be empty when enabled")
	}
	if strings.TrimSpace(t.Quantity) == "" {
		return fmt.Errorf("trade.quantity cannot be empty when enabled")
	}
	if !t.DryRun && (strings.TrimSpace(t.APIKey) == "" || strings.TrimSpace(t.APISecret) == "") {
		return fmt.Errorf("trade requires api_key/api_secret when dry_run is off")
	}
	return nil
}
