package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	t.Run("默认规则可编译", func(t *testing.T) {
		rs := DefaultRuleSet()
		require.NoError(t, rs.Compile())
		for _, field := range FieldNames {
			for _, rule := range rs.FieldRules(field) {
				assert.NotNil(t, rule.Regexp(), field)
			}
		}
	})

	t.Run("缺交易关键词", func(t *testing.T) {
		rs := RuleSet{}
		assert.Error(t, rs.Compile())
	})

	t.Run("未知字段", func(t *testing.T) {
		rs := DefaultRuleSet()
		rs.Fields["leverage"] = []FieldRule{{Pattern: `杠杆[:：\s]*[0-9]+`}}
		assert.Error(t, rs.Compile())
	})

	t.Run("正则非法", func(t *testing.T) {
		rs := DefaultRuleSet()
		rs.Fields[FieldStopLoss] = []FieldRule{{Pattern: `止损[(`}}
		assert.Error(t, rs.Compile())
	})
}

func TestNewRegistry_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	reg, err := NewRegistry(path)
	require.NoError(t, err)

	// 文件不存在时落一份默认规则
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("默认规则文件未生成: %v", err)
	}

	snap := reg.Snapshot()
	assert.EqualValues(t, 1, snap.Version)
	assert.False(t, snap.LoadedAt.IsZero())
	assert.NotEmpty(t, snap.Rules.Filter.TradingKeywords)
	assert.NotEmpty(t, snap.Rules.FieldRules(FieldOrderType))
}

func TestRegistry_Replace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	reg, err := NewRegistry(path)
	require.NoError(t, err)

	t.Run("合法规则生效并升版本", func(t *testing.T) {
		rs := DefaultRuleSet()
		rs.Filter.TradingKeywords = append(rs.Filter.TradingKeywords, "梭哈")
		require.NoError(t, reg.Replace(rs))

		snap := reg.Snapshot()
		assert.Greater(t, snap.Version, int64(1))
		assert.Contains(t, snap.Rules.Filter.TradingKeywords, "梭哈")
	})

	t.Run("非法规则拒绝且保留旧快照", func(t *testing.T) {
		before := reg.Snapshot()
		bad := DefaultRuleSet()
		bad.Filter.TradingKeywords = nil
		assert.Error(t, reg.Replace(bad))
		assert.Equal(t, before.Version, reg.Snapshot().Version)
	})

	t.Run("坏正则同样拒绝", func(t *testing.T) {
		before := reg.Snapshot()
		bad := DefaultRuleSet()
		bad.Fields[FieldTakeProfit] = []FieldRule{{Pattern: `止盈[(`}}
		assert.Error(t, reg.Replace(bad))
		assert.Equal(t, before.Version, reg.Snapshot().Version)
	})
}
