package classifier

import (
	"testing"

	"ordersift/internal/rules"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	rs := rules.DefaultRuleSet()
	require.NoError(t, rs.Compile())
	return New(rs)
}

func TestClassify_OrderMessage(t *testing.T) {
	c := newDefaultClassifier(t)

	t.Run("多关键词命中", func(t *testing.T) {
		res := c.Classify("BTC 开仓做多，入场金额:50000 USDT，止盈:55000，止损:48000")
		assert.True(t, res.IsOrderMessage)
		assert.GreaterOrEqual(t, res.MatchedKeywordCount, 2)
		assert.Empty(t, res.MatchedExclusions)
	})

	t.Run("英文关键词大小写不敏感", func(t *testing.T) {
		res := c.Classify("ETH LONG entry, set SELL order")
		assert.True(t, res.IsOrderMessage)
		assert.GreaterOrEqual(t, res.MatchedKeywordCount, 2)
	})
}

func TestClassify_BelowThreshold(t *testing.T) {
	c := newDefaultClassifier(t)

	t.Run("单关键词不过阈值", func(t *testing.T) {
		res := c.Classify("今天价格怎么样")
		assert.False(t, res.IsOrderMessage)
		assert.Equal(t, 1, res.MatchedKeywordCount)
	})

	t.Run("闲聊消息", func(t *testing.T) {
		res := c.Classify("中午一起去买菜吗")
		assert.False(t, res.IsOrderMessage)
		assert.Zero(t, res.MatchedKeywordCount)
	})

	t.Run("空文本", func(t *testing.T) {
		res := c.Classify("   ")
		assert.False(t, res.IsOrderMessage)
		assert.Zero(t, res.MatchedKeywordCount)
		assert.Empty(t, res.MatchedExclusions)
	})
}

func TestClassify_ExclusionDominates(t *testing.T) {
	c := newDefaultClassifier(t)

	t.Run("排除关键词压过交易关键词", func(t *testing.T) {
		res := c.Classify("广告：开仓做多 BTC，止盈止损全配好，加群领取")
		assert.False(t, res.IsOrderMessage)
		assert.NotEmpty(t, res.MatchedExclusions)
		assert.Contains(t, res.MatchedExclusions, "广告")
	})

	t.Run("排除模式同样生效", func(t *testing.T) {
		res := c.Classify("趋势分析：BTC 做多机会，建议买入，目标价格 60000")
		assert.False(t, res.IsOrderMessage)
		assert.Contains(t, res.MatchedExclusions, "趋势分析")
	})

	t.Run("免责声明被过滤", func(t *testing.T) {
		res := c.Classify("开仓做多，止盈 55000（市场有风险，投资需谨慎）")
		assert.False(t, res.IsOrderMessage)
		assert.NotEmpty(t, res.MatchedExclusions)
	})
}

func TestClassify_EmptyRules(t *testing.T) {
	c := New(rules.RuleSet{})
	res := c.Classify("开仓做多")
	assert.False(t, res.IsOrderMessage)
	assert.Zero(t, res.MatchedKeywordCount)
}
