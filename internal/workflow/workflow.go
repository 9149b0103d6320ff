// Package workflow 实现单条消息的多阶段编排：
// 监听 → 分类 → 提取 → 存储 → （可选）分析。
// 每条消息单趟走完，无回路；各阶段的失败/跳过都收敛为一个终态 WorkflowOutcome。
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ordersift/internal/extractor"
	"ordersift/internal/logger"
	"ordersift/internal/types"

	"github.com/google/uuid"
)

// Store 是远端记录存储的协作方接口。实现负责真正的落库，
// 编排层只关心成败；超时由编排层通过 ctx 控制。
type Store interface {
	SaveOrder(ctx context.Context, rec types.OrderRecord) error
}

// Analyzer 在 trigger_analysis 置位时被调用，对既有记录窗口做批量分析。
type Analyzer interface {
	RunAnalysis(ctx context.Context) error
}

// RuleEngine 提供分类与提取能力。实现必须可并发调用。
type RuleEngine interface {
	Classify(text string) types.ClassificationResult
	Extract(text string) extractor.Fields
}

// Options 控制单次处理的可选行为。
type Options struct {
	// TriggerAnalysis 为真且配置了 Analyzer 时，存储成功后追加分析阶段。
	TriggerAnalysis bool
}

const defaultStoreTimeout = 30 * time.Second

// Orchestrator 驱动状态机。除只读依赖外不持有任何跨消息状态，
// 可被多条消息并发复用。
type Orchestrator struct {
	engine       RuleEngine
	store        Store
	analyzer     Analyzer
	storeTimeout time.Duration
}

// New 构造编排器。analyzer 可为 nil（表示不提供分析阶段）。
func New(engine RuleEngine, store Store, analyzer Analyzer, storeTimeout time.Duration) (*Orchestrator, error) {
	if engine == nil {
		return nil, fmt.Errorf("workflow: rule engine 不能为空")
	}
	if store == nil {
		return nil, fmt.Errorf("workflow: store 不能为空")
	}
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &Orchestrator{
		engine:       engine,
		store:        store,
		analyzer:     analyzer,
		storeTimeout: storeTimeout,
	}, nil
}

// Process 驱动一条消息走完全部阶段。
// 仅在输入本身残缺（缺 message_id 或 text）时返回错误；
// 其余情况一律产出终态 outcome，错误信息随 outcome 带出。
func (o *Orchestrator) Process(ctx context.Context, msg types.RawMessage, opts Options) (types.WorkflowOutcome, error) {
	if err := validateMessage(msg); err != nil {
		return types.WorkflowOutcome{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	traceID := uuid.NewString()

	// 分类阶段：结构上不会失败，只会判否。
	cls := o.engine.Classify(msg.Text)
	if !cls.IsOrderMessage {
		logger.Debugf("[workflow] %s 非订单消息（关键词 %d 个，排除 %v），过滤",
			msg.MessageID, cls.MatchedKeywordCount, cls.MatchedExclusions)
		return o.finish(traceID, msg, types.StageFilteredOut, "", nil), nil
	}

	// 提取 + 组装：字段缺失是常态，零字段记录照常下传。
	fields := o.engine.Extract(msg.Text)
	rec := extractor.Assemble(msg.GroupName, msg.Text, fields)
	if fields.Empty() {
		logger.Warnf("[workflow] %s 判定为订单消息但未提取到任何字段", msg.MessageID)
	}

	// 存储阶段：唯一会阻塞的外部调用，必须有超时；失败不在此层重试。
	storeCtx, cancel := context.WithTimeout(ctx, o.storeTimeout)
	err := o.store.SaveOrder(storeCtx, rec)
	cancel()
	if err != nil {
		logger.Errorf("[workflow] %s 存储失败: %v", msg.MessageID, err)
		return o.finish(traceID, msg, types.StageStoreFailed, err.Error(), &rec), nil
	}

	if !opts.TriggerAnalysis || o.analyzer == nil {
		return o.finish(traceID, msg, types.StageStored, "", &rec), nil
	}

	// 分析阶段：可选，失败只记录，不回滚已存储的记录。
	if err := o.analyzer.RunAnalysis(ctx); err != nil {
		logger.Errorf("[workflow] %s 分析阶段失败: %v", msg.MessageID, err)
		return o.finish(traceID, msg, types.StageStored, "analysis: "+err.Error(), &rec), nil
	}
	return o.finish(traceID, msg, types.StageAnalyzed, "", &rec), nil
}

func (o *Orchestrator) finish(traceID string, msg types.RawMessage, stage types.Stage, errMsg string, rec *types.OrderRecord) types.WorkflowOutcome {
	return types.WorkflowOutcome{
		MessageID:    msg.MessageID,
		TraceID:      traceID,
		StageReached: stage,
		Error:        errMsg,
		Record:       rec,
		FinishedAt:   time.Now(),
	}
}

func validateMessage(msg types.RawMessage) error {
	if strings.TrimSpace(msg.MessageID) == "" {
		return fmt.Errorf("raw message 缺少 message_id")
	}
	if strings.TrimSpace(msg.Text) == "" {
		return fmt.Errorf("raw message %s 缺少 text", msg.MessageID)
	}
	return nil
}
