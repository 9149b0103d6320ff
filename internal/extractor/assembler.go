package extractor

import (
	"time"

	"ordersift/internal/types"
)

// Assemble 把提取结果组装成不可变的 OrderRecord，并盖上解析时间戳。
// 不做字段校验：分类器与提取器独立工作，可能出现被判定为订单消息
// 却一个字段都没提出的情况，这条记录照常向下游传递，由编排层定夺。
func Assemble(groupName, text string, f Fields) types.OrderRecord {
	return types.OrderRecord{
		GroupName:        groupName,
		MessageText:      text,
		OrderType:        f.OrderType,
		Direction:        f.Direction,
		EntryAmount:      f.EntryAmount,
		TakeProfit:       f.TakeProfit,
		StopLoss:         f.StopLoss,
		StrategyKeywords: append([]string(nil), f.StrategyKeywords...),
		ParsedAt:         time.Now(),
	}
}
