package app

import (
	"fmt"
	"strings"

	sifcfg "ordersift/internal/config"
	"ordersift/internal/rules"
)

type StartupSummary struct {
	Env          string
	HTTPAddr     string
	RulesPath    string
	RulesVersion int64
	FieldCount   int
	KeywordCount int
	Workers      int
	QueueSize    int
	OrderDBPath  string
	ReportCron   string
	NotifyOn     bool
	TradeOn      bool
	TradeDryRun  bool
}

func buildStartupSummary(cfg *sifcfg.Config, registry *rules.Registry) *StartupSummary {
	snap := registry.Snapshot()
	fieldRules := 0
	for _, frs := range snap.Rules.Fields {
		fieldRules += len(frs)
	}
	return &StartupSummary{
		Env:          cfg.App.Env,
		HTTPAddr:     cfg.App.HTTPAddr,
		RulesPath:    cfg.Rules.Path,
		RulesVersion: snap.Version,
		FieldCount:   fieldRules,
		KeywordCount: len(snap.Rules.Filter.TradingKeywords),
		Workers:      cfg.Listener.Workers,
		QueueSize:    cfg.Listener.QueueSize,
		OrderDBPath:  cfg.Storage.OrderDBPath,
		ReportCron:   cfg.Analysis.ReportCron,
		NotifyOn:     cfg.Notify.Telegram.Enabled,
		TradeOn:      cfg.Trade.Enabled,
		TradeDryRun:  cfg.Trade.DryRun,
	}
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%*s\n", 40+len("启动配置摘要 (STARTUP SUMMARY)")/2, "启动配置摘要 (STARTUP SUMMARY)")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[服务 (SERVICE)]")
	fmt.Printf("  环境: %s\n", s.Env)
	fmt.Printf("  监听地址: %s\n", s.HTTPAddr)
	fmt.Printf("  消息 worker: %d (队列 %d)\n", s.Workers, s.QueueSize)
	fmt.Println()

	fmt.Println("[规则 (RULES)]")
	fmt.Printf("  规则文件: %s (版本 %d)\n", s.RulesPath, s.RulesVersion)
	fmt.Printf("  交易关键词: %d\n", s.KeywordCount)
	fmt.Printf("  字段规则: %d\n", s.FieldCount)
	fmt.Println()

	fmt.Println("[存储与推送 (STORAGE / NOTIFY)]")
	fmt.Printf("  订单档案: %s\n", s.OrderDBPath)
	fmt.Printf("  报表定时: %s\n", orDash(s.ReportCron))
	fmt.Printf("  Telegram 推送: %s\n", onOff(s.NotifyOn))
	trade := onOff(s.TradeOn)
	if s.TradeOn && s.TradeDryRun {
		trade += " (dry-run)"
	}
	fmt.Printf("  币安跟单: %s\n", trade)
	fmt.Println(strings.Repeat("=", 80))
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func onOff(v bool) string {
	if v {
		return "开启"
	}
	return "关闭"
}
