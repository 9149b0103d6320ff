// Package extractor 从订单消息文本中提取结构化字段。
// 每个字段持有一张有序规则表，先声明的规则先匹配（first match wins）；
// 策略关键词例外：收集全部命中，按首次出现顺序去重。
package extractor

import (
	"strings"

	"ordersift/internal/rules"
	"ordersift/internal/types"
)

// Fields 是一次提取的产出。零值字段表示消息里没说，不是错误。
type Fields struct {
	OrderType        types.OrderType
	Direction        types.Direction
	EntryAmount      string
	TakeProfit       string
	StopLoss         string
	StrategyKeywords []string
}

// Empty 报告是否一个字段都没提取到。
func (f Fields) Empty() bool {
	return f.OrderType == "" && f.Direction == "" && f.EntryAmount == "" &&
		f.TakeProfit == "" && f.StopLoss == "" && len(f.StrategyKeywords) == 0
}

// Extractor 从一份规则快照编译而来，不可变，可并发调用。
type Extractor struct {
	orderType   []rules.FieldRule
	direction   []rules.FieldRule
	entryAmount []rules.FieldRule
	takeProfit  []rules.FieldRule
	stopLoss    []rules.FieldRule
	strategy    []rules.FieldRule
}

// New 按字段拆出规则表。传入的 RuleSet 必须已 Compile。
func New(rs rules.RuleSet) *Extractor {
	return &Extractor{
		orderType:   rs.FieldRules(rules.FieldOrderType),
		direction:   rs.FieldRules(rules.FieldDirection),
		entryAmount: rs.FieldRules(rules.FieldEntryAmount),
		takeProfit:  rs.FieldRules(rules.FieldTakeProfit),
		stopLoss:    rs.FieldRules(rules.FieldStopLoss),
		strategy:    rs.FieldRules(rules.FieldStrategy),
	}
}

// Extract 对消息文本跑全部字段规则。空文本返回零值 Fields，不报错；
// 调用方用 Fields.Empty 判断“没提取到任何订单信息”。
func (e *Extractor) Extract(text string) Fields {
	text = strings.TrimSpace(text)
	if text == "" {
		return Fields{}
	}
	return Fields{
		OrderType:        types.OrderType(firstTag(e.orderType, text)),
		Direction:        types.Direction(firstTag(e.direction, text)),
		EntryAmount:      firstVerbatim(e.entryAmount, text),
		TakeProfit:       firstVerbatim(e.takeProfit, text),
		StopLoss:         firstVerbatim(e.stopLoss, text),
		StrategyKeywords: collectAll(e.strategy, text),
	}
}

// firstTag 按声明顺序找第一条命中的规则，返回其规范化标签。
// 消息同时含“开仓”“平仓”等冲突线索时，以规则声明顺序裁决，
// 与文本里谁先出现无关。
func firstTag(list []rules.FieldRule, text string) string {
	for _, rule := range list {
		if rule.Regexp() == nil {
			continue
		}
		if rule.Regexp().MatchString(text) {
			return rule.Tag
		}
	}
	return ""
}

// firstVerbatim 返回第一条命中规则的完整匹配原文（含单位），不做数值归一化。
// 规则里的 \s* 可能吞掉行尾空白，这里统一裁掉。
func firstVerbatim(list []rules.FieldRule, text string) string {
	for _, rule := range list {
		if rule.Regexp() == nil {
			continue
		}
		if m := strings.TrimSpace(rule.Regexp().FindString(text)); m != "" {
			return m
		}
	}
	return ""
}

// collectAll 收集所有规则的全部命中。规则带捕获组时取第一组，
// 否则取整段匹配；按首次出现顺序去重。
func collectAll(list []rules.FieldRule, text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, rule := range list {
		re := rule.Regexp()
		if re == nil {
			continue
		}
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			val := m[0]
			if len(m) > 1 && m[1] != "" {
				val = m[1]
			}
			val = strings.TrimSpace(val)
			if val == "" || seen[val] {
				continue
			}
			seen[val] = true
			out = append(out, val)
		}
	}
	return out
}
