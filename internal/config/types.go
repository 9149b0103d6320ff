package config

import "strings"

// Config 是 Ordersift 的主配置载体。
type Config struct {
	App      AppConfig      `toml:"app"`
	Listener ListenerConfig `toml:"listener"`
	Storage  StorageConfig  `toml:"storage"`
	Rules    RulesConfig    `toml:"rules"`
	Workflow WorkflowConfig `toml:"workflow"`
	Analysis AnalysisConfig `toml:"analysis"`
	Notify   NotifyConfig   `toml:"notify"`
	Trade    TradeConfig    `toml:"trade"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// ListenerConfig 描述消息接入方式。
type ListenerConfig struct {
	// ChatNames 预置 chat_id → 群名称映射，避免依赖平台查询接口。
	ChatNames map[string]string `toml:"chat_names"`
	// QueueSize 是接入消息的待处理队列长度。
	QueueSize int `toml:"queue_size"`
	// Workers 是并发处理消息的 worker 数。
	Workers int `toml:"workers"`
}

type StorageConfig struct {
	// OrderDBPath 是订单档案 SQLite 文件路径。
	OrderDBPath string `toml:"order_db_path"`
	// OutcomeDBPath 是处理终态日志 SQLite 文件路径；为空时与订单档案共用连接。
	OutcomeDBPath string `toml:"outcome_db_path"`
}

type RulesConfig struct {
	// Path 是规则文件路径，文件不存在时写入内置默认规则。
	Path string `toml:"path"`
}

type WorkflowConfig struct {
	// StoreTimeoutSeconds 是单条消息落库的超时。
	StoreTimeoutSeconds int `toml:"store_timeout_seconds"`
	// TriggerAnalysis 控制每条消息入库后是否顺带跑一次日度分析。
	TriggerAnalysis bool `toml:"trigger_analysis"`
}

type AnalysisConfig struct {
	// ReportCron 是定时推送报表的 cron 表达式，空串关闭定时任务。
	ReportCron string `toml:"report_cron"`
	// ReportPeriod 是定时报表的统计窗口：DAILY/WEEKLY/ALL。
	ReportPeriod string `toml:"report_period"`
	// SnapshotEnabled 控制是否渲染图表 PNG（依赖 headless Chrome）。
	SnapshotEnabled bool `toml:"snapshot_enabled"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
	// NotifyOnStore 控制订单入库时是否推送。
	NotifyOnStore bool `toml:"notify_on_store"`
}

// TradeConfig 控制可选的币安跟单执行。
type TradeConfig struct {
	Enabled   bool   `toml:"enabled"`
	DryRun    bool   `toml:"dry_run"`
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
	BaseURL   string `toml:"base_url"`
	Symbol    string `toml:"symbol"`
	Quantity  string `toml:"quantity"`
}

// keySet 用于追踪配置文件中显式设置的字段路径。
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault 描述单个字段的默认值设置规则。
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
