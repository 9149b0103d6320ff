package binance

import (
	"strings"
	"time"
)

type Config struct {
	APIKey    string
	APISecret string

	RESTBaseURL string
	HTTPTimeout time.Duration

	// Symbol 是跟单落地的合约对；消息本身不携带标的，跟单只能按配置的单一品种执行。
	Symbol string
	// Quantity 是每笔市价单的下单数量。
	Quantity string
	// DryRun 为 true 时只记录不真实下单。
	DryRun bool
}

func (c *Config) withDefaults() Config {
	out := *c
	out.APIKey = strings.TrimSpace(out.APIKey)
	out.APISecret = strings.TrimSpace(out.APISecret)
	out.RESTBaseURL = strings.TrimSpace(out.RESTBaseURL)
	if out.RESTBaseURL == "" {
		out.RESTBaseURL = "https://fapi.binance.com"
	}
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	out.Symbol = strings.ToUpper(strings.TrimSpace(out.Symbol))
	out.Quantity = strings.TrimSpace(out.Quantity)
	return out
}
