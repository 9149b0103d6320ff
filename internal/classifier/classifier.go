// Package classifier 判定一条群消息是否在描述交易订单。
// 排除词/排除模式优先于交易关键词：先排除，再按不同关键词的命中数过阈值。
package classifier

import (
	"strings"

	"ordersift/internal/rules"
	"ordersift/internal/types"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// orderKeywordThreshold 是判定为订单消息所需的最少不同交易关键词数。
// 单个词随口一提（比如“买菜”里的“买”）不构成信号，两个词共现才算。
const orderKeywordThreshold = 2

// Classifier 是从一份规则快照编译出的不可变分类器。
// 无内部可变状态，可被任意多条消息并发调用；规则变更时整体换新实例。
type Classifier struct {
	trading    []string
	exclusions []string

	tradingMatcher   *ahocorasick.Matcher
	exclusionMatcher *ahocorasick.Matcher
}

// New 编译规则快照。关键词统一转小写后建 Aho-Corasick 自动机，
// 单次扫描得到全部命中，避免逐词 Contains 的 O(k×n)。
func New(rs rules.RuleSet) *Classifier {
	trading := normalizeKeywords(rs.Filter.TradingKeywords)
	exclusions := normalizeKeywords(append(
		append([]string(nil), rs.Filter.ExcludeKeywords...),
		rs.Filter.ExcludePatterns...,
	))
	c := &Classifier{trading: trading, exclusions: exclusions}
	if len(trading) > 0 {
		c.tradingMatcher = ahocorasick.NewStringMatcher(trading)
	}
	if len(exclusions) > 0 {
		c.exclusionMatcher = ahocorasick.NewStringMatcher(exclusions)
	}
	return c
}

// Classify 对单条消息文本做判定。空文本直接判否。
func (c *Classifier) Classify(text string) types.ClassificationResult {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return types.ClassificationResult{}
	}

	if c.exclusionMatcher != nil {
		hits := c.exclusionMatcher.Match([]byte(lower))
		if len(hits) > 0 {
			matched := make([]string, 0, len(hits))
			for _, idx := range hits {
				matched = append(matched, c.exclusions[idx])
			}
			return types.ClassificationResult{MatchedExclusions: matched}
		}
	}

	count := 0
	if c.tradingMatcher != nil {
		count = len(c.tradingMatcher.Match([]byte(lower)))
	}
	return types.ClassificationResult{
		IsOrderMessage:      count >= orderKeywordThreshold,
		MatchedKeywordCount: count,
	}
}

func normalizeKeywords(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, kw := range in {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}
