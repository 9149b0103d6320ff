package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
app:
  env: prod
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":9988", cfg.App.HTTPAddr)
	assert.Equal(t, 256, cfg.Listener.QueueSize)
	assert.Equal(t, 4, cfg.Listener.Workers)
	assert.Equal(t, "/data/db/orders.db", cfg.Storage.OrderDBPath)
	assert.Equal(t, "configs/rules.yaml", cfg.Rules.Path)
	assert.Equal(t, 30, cfg.Workflow.StoreTimeoutSeconds)
	assert.Equal(t, "0 9 * * *", cfg.Analysis.ReportCron)
	assert.Equal(t, "DAILY", cfg.Analysis.ReportPeriod)
	assert.Equal(t, "https://fapi.binance.com", cfg.Trade.BaseURL)
	assert.False(t, cfg.Notify.Telegram.Enabled)
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
app:
  http_addr: ":8080"
listener:
  queue_size: 16
  workers: 2
  chat_names:
    oc_1001: VIP 信号群
analysis:
  report_period: weekly
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, 16, cfg.Listener.QueueSize)
	assert.Equal(t, 2, cfg.Listener.Workers)
	assert.Equal(t, "VIP 信号群", cfg.Listener.ChatNames["oc_1001"])
	// 周期统一大写
	assert.Equal(t, "WEEKLY", cfg.Analysis.ReportPeriod)
}

func TestLoad_IncludeMerge(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", `
app:
  log_level: debug
storage:
  order_db_path: /tmp/base-orders.db
`)
	path := writeConfig(t, dir, "config.yaml", `
include:
  - base.yaml
storage:
  order_db_path: /tmp/override-orders.db
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	// 主文件最后合并，覆盖 include 的同名配置
	assert.Equal(t, "/tmp/override-orders.db", cfg.Storage.OrderDBPath)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("非法日志级别", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "config.yaml", `
app:
  log_level: verbose
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("非法报表周期", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "config.yaml", `
analysis:
  report_period: hourly
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Telegram 开启但缺 token", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "config.yaml", `
notify:
  telegram:
    enabled: true
    chat_id: "12345"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("跟单开启但缺交易对", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "config.yaml", `
trade:
  enabled: true
  dry_run: true
  quantity: "0.01"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = Load("")
	assert.Error(t, err)
}
