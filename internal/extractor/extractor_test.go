package extractor

import (
	"testing"

	"ordersift/internal/rules"
	"ordersift/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultExtractor(t *testing.T) *Extractor {
	t.Helper()
	rs := rules.DefaultRuleSet()
	require.NoError(t, rs.Compile())
	return New(rs)
}

func TestExtract_FullMessage(t *testing.T) {
	e := newDefaultExtractor(t)
	text := "BTC 开仓做多\n入场金额:50000 USDT\n止盈:55000\n止损:48000\n策略:突破追多"

	fields := e.Extract(text)
	assert.Equal(t, types.OrderTypeOpen, fields.OrderType)
	assert.Equal(t, types.DirectionLong, fields.Direction)
	assert.Equal(t, "入场金额:50000 USDT", fields.EntryAmount)
	assert.Equal(t, "止盈:55000", fields.TakeProfit)
	assert.Equal(t, "止损:48000", fields.StopLoss)
	assert.Equal(t, []string{"突破追多"}, fields.StrategyKeywords)
	assert.False(t, fields.Empty())
}

func TestExtract_FirstDeclaredRuleWins(t *testing.T) {
	e := newDefaultExtractor(t)

	t.Run("文本顺序不影响裁决", func(t *testing.T) {
		// “平仓”先出现，但 order_type 表里“开仓”规则声明在前
		fields := e.Extract("先平仓旧单，再开仓做多")
		assert.Equal(t, types.OrderTypeOpen, fields.OrderType)
	})

	t.Run("卖出映射", func(t *testing.T) {
		fields := e.Extract("BTC 现价卖出，数量 0.5")
		assert.Equal(t, types.OrderTypeSell, fields.OrderType)
		assert.Equal(t, types.DirectionShort, fields.Direction)
	})

	t.Run("金额规则按声明顺序取第一条", func(t *testing.T) {
		fields := e.Extract("投入:300U，仓位:500U")
		assert.Equal(t, "投入:300U", fields.EntryAmount)
	})
}

func TestExtract_StrategyKeywords(t *testing.T) {
	e := newDefaultExtractor(t)

	t.Run("多规则全收集", func(t *testing.T) {
		fields := e.Extract("策略:趋势跟踪\n关键词:突破, 回踩")
		assert.Equal(t, []string{"趋势跟踪", "突破, 回踩"}, fields.StrategyKeywords)
	})

	t.Run("重复值只保留首个", func(t *testing.T) {
		fields := e.Extract("策略:网格\n策略:网格")
		assert.Equal(t, []string{"网格"}, fields.StrategyKeywords)
	})
}

func TestExtract_MissingFields(t *testing.T) {
	e := newDefaultExtractor(t)

	t.Run("缺失字段保持零值", func(t *testing.T) {
		fields := e.Extract("开仓做多 ETH")
		assert.Equal(t, types.OrderTypeOpen, fields.OrderType)
		assert.Equal(t, types.DirectionLong, fields.Direction)
		assert.Empty(t, fields.EntryAmount)
		assert.Empty(t, fields.TakeProfit)
		assert.Empty(t, fields.StopLoss)
		assert.Empty(t, fields.StrategyKeywords)
	})

	t.Run("空文本返回零值", func(t *testing.T) {
		fields := e.Extract("  \n ")
		assert.True(t, fields.Empty())
	})

	t.Run("无任何命中", func(t *testing.T) {
		fields := e.Extract("今天天气不错")
		assert.True(t, fields.Empty())
	})
}

func TestAssemble(t *testing.T) {
	e := newDefaultExtractor(t)
	fields := e.Extract("开仓做多，止损:48000")

	rec := Assemble("VIP 信号群", "开仓做多，止损:48000", fields)
	assert.Equal(t, "VIP 信号群", rec.GroupName)
	assert.Equal(t, "开仓做多，止损:48000", rec.MessageText)
	assert.Equal(t, types.OrderTypeOpen, rec.OrderType)
	assert.Equal(t, "止损:48000", rec.StopLoss)
	assert.False(t, rec.ParsedAt.IsZero())
	assert.True(t, rec.HasFields())
}
