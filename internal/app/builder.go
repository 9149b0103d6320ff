package app

import (
	"context"
	"fmt"
	"time"

	"ordersift/internal/analysis"
	"ordersift/internal/analysis/visual"
	sifcfg "ordersift/internal/config"
	"ordersift/internal/gateway/binance"
	"ordersift/internal/gateway/listener"
	"ordersift/internal/gateway/notifier"
	"ordersift/internal/logger"
	"ordersift/internal/rules"
	"ordersift/internal/store/gormstore"
	"ordersift/internal/store/outcomelog"
	apihttp "ordersift/internal/transport/http/api"
	"ordersift/internal/workflow"
)

type AppBuilder struct {
	cfg *sifcfg.Config

	registryFn func(string) (*rules.Registry, error)
	orderDBFn  func(string) (*gormstore.GormStore, error)
	outcomeFn  func(string) (*outcomelog.OutcomeLogStore, error)
	httpFn     func(apihttp.ServerConfig) (*apihttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *sifcfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		registryFn: rules.NewRegistry,
		orderDBFn:  gormstore.NewGormStore,
		outcomeFn:  outcomelog.NewOutcomeLogStore,
		httpFn:     apihttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	registry, err := b.registryFn(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("加载规则失败: %w", err)
	}
	engine := workflow.NewDynamicEngine(registry)
	logger.Infof("✓ 规则已加载 path=%s version=%d", cfg.Rules.Path, registry.Snapshot().Version)

	orderStore, err := b.orderDBFn(cfg.Storage.OrderDBPath)
	if err != nil {
		return nil, fmt.Errorf("初始化订单档案失败: %w", err)
	}

	outcomes, err := b.buildOutcomeStore(cfg.Storage, orderStore)
	if err != nil {
		orderStore.Close()
		return nil, err
	}

	tgNotifier := buildTelegram(cfg.Notify.Telegram)
	analysisSvc, err := analysis.NewService(orderStore, analysisNotifier(tgNotifier), buildSnapshotter(cfg.Analysis))
	if err != nil {
		return nil, err
	}

	storeTimeout := time.Duration(cfg.Workflow.StoreTimeoutSeconds) * time.Second
	orch, err := workflow.New(engine, orderStore, analysisSvc, storeTimeout)
	if err != nil {
		return nil, err
	}

	executor, err := buildExecutor(cfg.Trade)
	if err != nil {
		return nil, err
	}

	var storeNotify notifier.TextNotifier
	if tgNotifier != nil && cfg.Notify.Telegram.NotifyOnStore {
		storeNotify = tgNotifier
	}
	ingest, err := NewIngestService(IngestConfig{
		Orchestrator:    orch,
		Outcomes:        outcomes,
		Notifier:        storeNotify,
		Executor:        executor,
		QueueSize:       cfg.Listener.QueueSize,
		Workers:         cfg.Listener.Workers,
		TriggerAnalysis: cfg.Workflow.TriggerAnalysis,
	})
	if err != nil {
		return nil, err
	}

	eventFeed := listener.New(nil)
	eventFeed.SeedChatNames(cfg.Listener.ChatNames)

	httpSrv, err := b.httpFn(apihttp.ServerConfig{
		Addr:      cfg.App.HTTPAddr,
		Ingestor:  ingest,
		Rules:     registry,
		Outcomes:  outcomes,
		Reports:   analysisSvc,
		EventFeed: eventFeed,
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		cfg:      cfg,
		ingest:   ingest,
		httpSrv:  httpSrv,
		analysis: analysisSvc,
		closers:  []func() error{orderStore.Close, outcomes.Close},
		Summary:  buildStartupSummary(cfg, registry),
	}
	return app, nil
}

// buildOutcomeStore 按配置决定终态日志独立建库还是复用订单档案连接。
func (b *AppBuilder) buildOutcomeStore(cfg sifcfg.StorageConfig, orders *gormstore.GormStore) (*outcomelog.OutcomeLogStore, error) {
	if cfg.OutcomeDBPath != "" && cfg.OutcomeDBPath != cfg.OrderDBPath {
		return b.outcomeFn(cfg.OutcomeDBPath)
	}
	store, err := b.outcomeFn(cfg.OrderDBPath)
	if err != nil {
		return nil, err
	}
	sqlDB, err := orders.SQLDB()
	if err != nil {
		return nil, err
	}
	if err := store.UseExternalDB(sqlDB); err != nil {
		return nil, err
	}
	return store, nil
}

func buildTelegram(cfg sifcfg.TelegramConfig) *notifier.Telegram {
	if !cfg.Enabled {
		return nil
	}
	return notifier.NewTelegram(cfg.BotToken, cfg.ChatID)
}

// analysisNotifier 避免把 *Telegram 的 nil 指针装进非空接口。
func analysisNotifier(tg *notifier.Telegram) analysis.Notifier {
	if tg == nil {
		return nil
	}
	return tg
}

func buildSnapshotter(cfg sifcfg.AnalysisConfig) analysis.Snapshotter {
	if !cfg.SnapshotEnabled {
		return nil
	}
	return visual.Snapshot
}

func buildExecutor(cfg sifcfg.TradeConfig) (*binance.Executor, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	return binance.NewExecutor(binance.Config{
		APIKey:      cfg.APIKey,
		APISecret:   cfg.APISecret,
		RESTBaseURL: cfg.BaseURL,
		Symbol:      cfg.Symbol,
		Quantity:    cfg.Quantity,
		DryRun:      cfg.DryRun,
	})
}
