package app

import (
	"context"
	"fmt"

	"ordersift/internal/analysis"
	sifcfg "ordersift/internal/config"
	"ordersift/internal/logger"
	apihttp "ordersift/internal/transport/http/api"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动接入服务与定时任务。
type App struct {
	cfg      *sifcfg.Config
	ingest   *IngestService
	httpSrv  *apihttp.Server
	analysis *analysis.Service
	closers  []func() error
	Summary  *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *sifcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动 HTTP 接入、消息 worker 与报表定时任务，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}

	if a.Summary != nil {
		a.Summary.Print()
	}

	if a.ingest == nil {
		return fmt.Errorf("ingest service not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)

	if a.httpSrv != nil {
		group.Go(func() error {
			if err := a.httpSrv.Start(ctx); err != nil {
				return fmt.Errorf("http server error: %w", err)
			}
			return nil
		})
	}

	group.Go(func() error {
		defer a.closeAll()
		return a.ingest.Run(ctx)
	})

	if spec := a.cfg.Analysis.ReportCron; spec != "" && a.analysis != nil {
		period, err := analysis.ParsePeriod(a.cfg.Analysis.ReportPeriod)
		if err != nil {
			return err
		}
		c := cron.New()
		if _, err := c.AddFunc(spec, func() {
			if err := a.analysis.PushReport(context.Background(), period); err != nil {
				logger.Errorf("定时报表推送失败: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("report cron 配置无效 (%s): %w", spec, err)
		}
		group.Go(func() error {
			c.Start()
			<-ctx.Done()
			<-c.Stop().Done()
			return nil
		})
		logger.Infof("✓ 报表定时任务已注册 cron=%q period=%s", spec, period)
	}

	return group.Wait()
}

// IngestService exposes the underlying ingest service instance (for testing/replay harnesses).
func (a *App) Ingest() *IngestService {
	if a == nil {
		return nil
	}
	return a.ingest
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warnf("关闭资源失败: %v", err)
		}
	}
}
