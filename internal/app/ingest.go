package app

import (
	"context"
	"fmt"

	"ordersift/internal/gateway/binance"
	"ordersift/internal/gateway/notifier"
	"ordersift/internal/logger"
	"ordersift/internal/store/outcomelog"
	"ordersift/internal/types"
	"ordersift/internal/workflow"

	"golang.org/x/sync/errgroup"
)

// IngestService 把接入的原始消息排队，交给固定数量的 worker 跑流水线，
// 每条消息的终态写入 outcome 日志，入库成功的订单按配置推送/跟单。
type IngestService struct {
	orch     *workflow.Orchestrator
	opts     workflow.Options
	outcomes *outcomelog.OutcomeLogStore
	notify   notifier.TextNotifier
	executor *binance.Executor

	queue   chan types.RawMessage
	workers int
}

// IngestConfig 描述 IngestService 依赖。notify 与 executor 可为 nil。
type IngestConfig struct {
	Orchestrator    *workflow.Orchestrator
	Outcomes        *outcomelog.OutcomeLogStore
	Notifier        notifier.TextNotifier
	Executor        *binance.Executor
	QueueSize       int
	Workers         int
	TriggerAnalysis bool
}

func NewIngestService(cfg IngestConfig) (*IngestService, error) {
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("ingest service requires an orchestrator")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &IngestService{
		orch:     cfg.Orchestrator,
		opts:     workflow.Options{TriggerAnalysis: cfg.TriggerAnalysis},
		outcomes: cfg.Outcomes,
		notify:   cfg.Notifier,
		executor: cfg.Executor,
		queue:    make(chan types.RawMessage, cfg.QueueSize),
		workers:  cfg.Workers,
	}, nil
}

// Submit 把消息放入待处理队列，队列满时立即报错而不是阻塞回调方。
func (s *IngestService) Submit(_ context.Context, msg types.RawMessage) error {
	if s == nil {
		return fmt.Errorf("ingest service not initialized")
	}
	select {
	case s.queue <- msg:
		return nil
	default:
		return fmt.Errorf("消息队列已满 (cap=%d)", cap(s.queue))
	}
}

// Run 启动 worker 池，直到 ctx 取消。
func (s *IngestService) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case msg := <-s.queue:
					s.handle(ctx, msg)
				}
			}
		})
	}
	logger.Infof("✓ 消息 worker 已启动 workers=%d queue=%d", s.workers, cap(s.queue))
	return group.Wait()
}

func (s *IngestService) handle(ctx context.Context, msg types.RawMessage) {
	out, err := s.orch.Process(ctx, msg, s.opts)
	if err != nil {
		logger.Warnf("消息被拒绝 message_id=%s err=%v", msg.MessageID, err)
		return
	}
	if s.outcomes != nil {
		if _, err := s.outcomes.Append(ctx, out); err != nil {
			logger.Errorf("终态日志写入失败 message_id=%s err=%v", out.MessageID, err)
		}
	}
	if out.StageReached != types.StageStored && out.StageReached != types.StageAnalyzed {
		return
	}
	if out.Record == nil {
		return
	}
	if s.notify != nil {
		if err := s.notify.SendText(notifier.OrderStoredMessage(*out.Record).RenderMarkdown()); err != nil {
			logger.Warnf("订单入库推送失败 message_id=%s err=%v", out.MessageID, err)
		}
	}
	if s.executor != nil {
		if err := s.executor.Execute(ctx, *out.Record); err != nil {
			logger.Errorf("跟单执行失败 message_id=%s err=%v", out.MessageID, err)
		}
	}
}

// QueueDepth 返回当前排队长度，供启动摘要与健康检查展示。
func (s *IngestService) QueueDepth() int {
	if s == nil {
		return 0
	}
	return len(s.queue)
}
