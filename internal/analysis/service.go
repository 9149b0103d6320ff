package analysis

import (
	"context"
	"fmt"
	"time"

	"ordersift/internal/logger"
	"ordersift/internal/types"
)

// RecordSource 提供分析所需的记录窗口，由订单存档实现。
type RecordSource interface {
	ListOrders(ctx context.Context, since time.Time, limit int) ([]types.OrderRecord, error)
}

// Notifier 是报告推送出口（兼容 gateway/notifier 的 Telegram 实现）。
type Notifier interface {
	SendText(text string) error
	SendPhoto(caption string, png []byte) error
}

// Snapshotter 把报告渲染成 PNG（由 visual 包实现，依赖 headless 浏览器，可缺省）。
type Snapshotter func(ctx context.Context, report Report) ([]byte, error)

const defaultFetchLimit = 1000

// Service 把记录源、聚合与推送串起来，同时充当工作流的分析阶段实现。
type Service struct {
	source      RecordSource
	notifier    Notifier
	snapshotter Snapshotter
	fetchLimit  int
}

// NewService 构造分析服务。notifier 与 snapshotter 均可为 nil。
func NewService(source RecordSource, notifier Notifier, snapshotter Snapshotter) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("analysis: record source 不能为空")
	}
	return &Service{
		source:      source,
		notifier:    notifier,
		snapshotter: snapshotter,
		fetchLimit:  defaultFetchLimit,
	}, nil
}

// GenerateReport 拉取窗口内的记录并跑一次聚合。
func (s *Service) GenerateReport(ctx context.Context, period Period) (Report, error) {
	since, bounded := PeriodWindow(period, time.Now())
	if !bounded {
		since = time.Time{}
	}
	records, err := s.source.ListOrders(ctx, since, s.fetchLimit)
	if err != nil {
		return Report{}, fmt.Errorf("拉取订单记录失败: %w", err)
	}
	return Aggregate(records, period), nil
}

// RunAnalysis 实现 workflow.Analyzer：消息触发的分析固定用 DAILY 窗口，
// 结果进日志，不打扰通知通道。
func (s *Service) RunAnalysis(ctx context.Context) error {
	report, err := s.GenerateReport(ctx, PeriodDaily)
	if err != nil {
		return err
	}
	logger.InfoBlock(RenderText(report))
	return nil
}

// PushReport 生成报告并推送：文本必发，图表 PNG 在 snapshotter
// 可用时附带；截图失败只降级为纯文本，不让整次推送失败。
func (s *Service) PushReport(ctx context.Context, period Period) error {
	if s.notifier == nil {
		return fmt.Errorf("analysis: 未配置通知通道")
	}
	report, err := s.GenerateReport(ctx, period)
	if err != nil {
		return err
	}
	text := RenderText(report)
	if err := s.notifier.SendText(text); err != nil {
		return fmt.Errorf("推送报告文本失败: %w", err)
	}
	if s.snapshotter == nil {
		return nil
	}
	png, err := s.snapshotter(ctx, report)
	if err != nil {
		logger.Warnf("报告图表截图失败，跳过图片推送: %v", err)
		return nil
	}
	caption := fmt.Sprintf("交易数据分析图表 (%s)", report.Period)
	if err := s.notifier.SendPhoto(caption, png); err != nil {
		logger.Warnf("推送报告图表失败: %v", err)
	}
	return nil
}
