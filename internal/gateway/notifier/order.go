package notifier

import (
	"fmt"
	"time"

	"ordersift/internal/pkg/text"
	"ordersift/internal/types"
)

// OrderStoredMessage 把一条入库订单整理成统一格式的推送。
func OrderStoredMessage(rec types.OrderRecord) StructuredMessage {
	fields := MessageSection{Title: "字段"}
	if rec.OrderType != "" {
		fields.Lines = append(fields.Lines, "类型: "+string(rec.OrderType))
	}
	if rec.Direction != "" {
		fields.Lines = append(fields.Lines, "方向: "+string(rec.Direction))
	}
	if rec.EntryAmount != "" {
		fields.Lines = append(fields.Lines, "入场: "+rec.EntryAmount)
	}
	if rec.TakeProfit != "" {
		fields.Lines = append(fields.Lines, "止盈: "+rec.TakeProfit)
	}
	if rec.StopLoss != "" {
		fields.Lines = append(fields.Lines, "止损: "+rec.StopLoss)
	}
	if len(rec.StrategyKeywords) > 0 {
		fields.Lines = append(fields.Lines, fmt.Sprintf("策略: %v", rec.StrategyKeywords))
	}

	source := MessageSection{
		Title: "来源",
		Lines: []string{"群组: " + rec.GroupName},
	}
	if rec.MessageText != "" {
		source.Lines = append(source.Lines, "原文: "+text.Truncate(rec.MessageText, 200))
	}

	ts := rec.ParsedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return StructuredMessage{
		Icon:      "📥",
		Title:     "新订单入库",
		Sections:  []MessageSection{fields, source},
		Timestamp: ts,
	}
}
