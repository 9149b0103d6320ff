package notifier

import (
	"strings"
	"testing"
	"time"

	"ordersift/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestOrderStoredMessage_RenderMarkdown(t *testing.T) {
	rec := types.OrderRecord{
		GroupName:        "合约信号群",
		MessageText:      "BTC 开仓做多\n入场金额:50000 USDT\n止损:48000",
		OrderType:        types.OrderTypeOpen,
		Direction:        types.DirectionLong,
		EntryAmount:      "入场金额:50000 USDT",
		StopLoss:         "止损:48000",
		StrategyKeywords: []string{"突破追多"},
		ParsedAt:         time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}
	body := OrderStoredMessage(rec).RenderMarkdown()

	assert.Contains(t, body, "📥 新订单入库")
	assert.Contains(t, body, "类型: OPEN")
	assert.Contains(t, body, "方向: LONG")
	assert.Contains(t, body, "入场: 入场金额:50000 USDT")
	assert.Contains(t, body, "止损: 止损:48000")
	assert.Contains(t, body, "群组: 合约信号群")
	assert.Contains(t, body, "时间：2026-09-01 09:00:00 UTC")
	// 缺失字段不渲染
	assert.NotContains(t, body, "止盈:")
}

func TestOrderStoredMessage_LongTextTruncated(t *testing.T) {
	rec := types.OrderRecord{
		GroupName:   "未知群",
		MessageText: strings.Repeat("开仓做多，", 100),
		ParsedAt:    time.Now(),
	}
	body := OrderStoredMessage(rec).RenderMarkdown()
	assert.Contains(t, body, "...")
	assert.LessOrEqual(t, len([]rune(body)), maxStructuredMessageLen+3)
}

func TestRenderMarkdown_SanitizesBackticks(t *testing.T) {
	msg := StructuredMessage{
		Title:    "报表",
		Sections: []MessageSection{{Title: "摘要", Lines: []string{"内容```注入"}}},
	}
	body := msg.RenderMarkdown()
	assert.Contains(t, body, "'''")
	assert.NotContains(t, body, "内容```")
}

func TestRenderMarkdown_EmptySectionsSkipped(t *testing.T) {
	msg := StructuredMessage{Icon: "📊", Title: "日报", Sections: []MessageSection{{Title: "空", Lines: []string{"  "}}}}
	body := msg.RenderMarkdown()
	assert.Equal(t, "📊 日报", body)
}
