package workflow

import (
	"sync/atomic"

	"ordersift/internal/classifier"
	"ordersift/internal/extractor"
	"ordersift/internal/rules"
	"ordersift/internal/types"
)

type engineState struct {
	version    int64
	classifier *classifier.Classifier
	extractor  *extractor.Extractor
}

// DynamicEngine 把规则快照编译成分类器/提取器，并随规则热更新整体换代。
// 处理中的消息继续用旧实例跑完，新消息拿到新实例，互不干扰。
type DynamicEngine struct {
	cur atomic.Pointer[engineState]
}

// NewDynamicEngine 用当前快照初始化，并订阅后续规则变更。
func NewDynamicEngine(reg *rules.Registry) *DynamicEngine {
	e := &DynamicEngine{}
	e.apply(reg.Snapshot())
	reg.OnChange(func(snap rules.Snapshot) {
		e.apply(snap)
	})
	return e
}

// NewStaticEngine 直接由规则表构建，不追踪变更（测试与一次性批处理用）。
func NewStaticEngine(rs rules.RuleSet) *DynamicEngine {
	e := &DynamicEngine{}
	e.apply(rules.Snapshot{Rules: rs})
	return e
}

func (e *DynamicEngine) apply(snap rules.Snapshot) {
	e.cur.Store(&engineState{
		version:    snap.Version,
		classifier: classifier.New(snap.Rules),
		extractor:  extractor.New(snap.Rules),
	})
}

// RuleVersion 返回当前生效的规则版本号。
func (e *DynamicEngine) RuleVersion() int64 {
	return e.cur.Load().version
}

func (e *DynamicEngine) Classify(text string) types.ClassificationResult {
	return e.cur.Load().classifier.Classify(text)
}

func (e *DynamicEngine) Extract(text string) extractor.Fields {
	return e.cur.Load().extractor.Extract(text)
}
