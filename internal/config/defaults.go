package config

import "strings"

// 默认值常量
const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultAppHTTPAddr    = ":9988"
	defaultAppLogPath     = "/data/logs/ordersift.log"
	defaultListenerQueue  = 256
	defaultListenerWorker = 4
	defaultOrderDBPath    = "/data/db/orders.db"
	defaultRulesPath      = "configs/rules.yaml"
	defaultStoreTimeout   = 30
	defaultReportCron     = "0 9 * * *"
	defaultReportPeriod   = "DAILY"
	defaultTradeBaseURL   = "https://fapi.binance.com"
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Listener.applyDefaults(keys)
	c.Storage.applyDefaults(keys)
	c.Rules.applyDefaults(keys)
	c.Workflow.applyDefaults(keys)
	c.Analysis.applyDefaults(keys)
	c.Trade.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
	)
}

func (l *ListenerConfig) applyDefaults(keys keySet) {
	if l == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "listener.queue_size",
			need:  func() bool { return l.QueueSize <= 0 },
			apply: func() { l.QueueSize = defaultListenerQueue },
		},
		fieldDefault{
			key:   "listener.workers",
			need:  func() bool { return l.Workers <= 0 },
			apply: func() { l.Workers = defaultListenerWorker },
		},
	)
}

func (s *StorageConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("storage.order_db_path", &s.OrderDBPath, defaultOrderDBPath),
	)
}

func (r *RulesConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("rules.path", &r.Path, defaultRulesPath),
	)
}

func (w *WorkflowConfig) applyDefaults(keys keySet) {
	if w == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "workflow.store_timeout_seconds",
			need:  func() bool { return w.StoreTimeoutSeconds <= 0 },
			apply: func() { w.StoreTimeoutSeconds = defaultStoreTimeout },
		},
	)
}

func (a *AnalysisConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("analysis.report_cron", &a.ReportCron, defaultReportCron),
		stringFieldDefault("analysis.report_period", &a.ReportPeriod, defaultReportPeriod),
	)
	a.ReportPeriod = strings.ToUpper(strings.TrimSpace(a.ReportPeriod))
}

func (t *TradeConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("trade.base_url", &t.BaseURL, defaultTradeBaseURL),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
