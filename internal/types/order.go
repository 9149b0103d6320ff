package types

import "time"

// OrderType 订单动作类型。
type OrderType string

const (
	OrderTypeOpen  OrderType = "OPEN"
	OrderTypeClose OrderType = "CLOSE"
	OrderTypeBuy   OrderType = "BUY"
	OrderTypeSell  OrderType = "SELL"
)

// Direction 开仓方向。
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
)

// OrderRecord 是从单条消息提取出的订单信息。
// GroupName 与 MessageText 必有；其余字段缺失表示消息里没说，
// 金额类字段保留原文（含单位），不在此处归一化为数值。
type OrderRecord struct {
	GroupName        string    `json:"group_name"`
	MessageText      string    `json:"message_text"`
	OrderType        OrderType `json:"order_type,omitempty"`
	Direction        Direction `json:"direction,omitempty"`
	EntryAmount      string    `json:"entry_amount,omitempty"`
	TakeProfit       string    `json:"take_profit,omitempty"`
	StopLoss         string    `json:"stop_loss,omitempty"`
	StrategyKeywords []string  `json:"strategy_keywords,omitempty"`
	ParsedAt         time.Time `json:"parsed_at"`
}

// HasFields 报告除必填字段外是否至少提取到一个字段。
func (r OrderRecord) HasFields() bool {
	return r.OrderType != "" || r.Direction != "" || r.EntryAmount != "" ||
		r.TakeProfit != "" || r.StopLoss != "" || len(r.StrategyKeywords) > 0
}
