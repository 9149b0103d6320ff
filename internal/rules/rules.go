// Package rules 管理消息过滤与字段提取的规则表。
// 规则来自外部 YAML 文件，可热更新；算法模块只消费编译后的不可变快照。
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// 字段名常量，对应 OrderRecord 里的可提取字段。
const (
	FieldOrderType   = "order_type"
	FieldDirection   = "direction"
	FieldEntryAmount = "entry_amount"
	FieldTakeProfit  = "take_profit"
	FieldStopLoss    = "stop_loss"
	FieldStrategy    = "strategy"
)

// FieldNames 按固定顺序列出全部字段，供校验与展示使用。
var FieldNames = []string{
	FieldOrderType,
	FieldDirection,
	FieldEntryAmount,
	FieldTakeProfit,
	FieldStopLoss,
	FieldStrategy,
}

// FieldRule 是单条提取规则：正则 + 可选的规范化标签。
// 带 Tag 的规则（order_type/direction）命中后产出标签而非原文。
type FieldRule struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
	Tag     string `mapstructure:"tag,omitempty" yaml:"tag,omitempty" json:"tag,omitempty"`

	re *regexp.Regexp
}

// Regexp 返回编译后的正则；只在 Compile 成功后的快照里可用。
func (r FieldRule) Regexp() *regexp.Regexp { return r.re }

// FilterRules 是分类器的三张关键词表。
type FilterRules struct {
	ExcludeKeywords []string `mapstructure:"exclude_keywords" yaml:"exclude_keywords" json:"exclude_keywords,omitempty"`
	TradingKeywords []string `mapstructure:"trading_keywords" yaml:"trading_keywords" json:"trading_keywords"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns,omitempty"`
}

// RuleSet 是一次加载得到的完整规则表。
// Fields 内每个字段的规则顺序即声明优先级：先声明者先匹配。
type RuleSet struct {
	Filter FilterRules            `mapstructure:"filter" yaml:"filter" json:"filter"`
	Fields map[string][]FieldRule `mapstructure:"fields" yaml:"fields" json:"fields,omitempty"`
}

// Snapshot 是规则表的版本化快照，Compile 通过后才会对外发布。
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Rules    RuleSet
}

// Compile 编译所有字段正则并做基础一致性检查。
// 所有提取正则统一启用大小写不敏感匹配。
func (rs *RuleSet) Compile() error {
	if rs == nil {
		return fmt.Errorf("nil rule set")
	}
	if len(rs.Filter.TradingKeywords) == 0 {
		return fmt.Errorf("filter.trading_keywords 不能为空")
	}
	for field, list := range rs.Fields {
		if !isKnownField(field) {
			return fmt.Errorf("fields 含未知字段: %s", field)
		}
		for i := range list {
			pat := strings.TrimSpace(list[i].Pattern)
			if pat == "" {
				return fmt.Errorf("fields.%s[%d] pattern 为空", field, i)
			}
			re, err := regexp.Compile("(?i)" + pat)
			if err != nil {
				return fmt.Errorf("fields.%s[%d] 正则编译失败: %w", field, i, err)
			}
			list[i].re = re
		}
	}
	return nil
}

// FieldRules 返回指定字段的有序规则表。
func (rs RuleSet) FieldRules(field string) []FieldRule {
	return rs.Fields[field]
}

func isKnownField(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}
	return false
}
