package model

import (
	"time"

	"gorm.io/datatypes"
)

// OrderModel 是订单档案表的持久化结构，字段保持原始消息里的文本形态。
type OrderModel struct {
	ID           int64          `gorm:"column:id;primaryKey"`
	GroupName    string         `gorm:"column:group_name;index"`
	MessageText  string         `gorm:"column:message_text"`
	OrderType    string         `gorm:"column:order_type"`
	Direction    string         `gorm:"column:direction"`
	EntryAmount  string         `gorm:"column:entry_amount"`
	TakeProfit   string         `gorm:"column:take_profit"`
	StopLoss     string         `gorm:"column:stop_loss"`
	StrategyJSON datatypes.JSON `gorm:"column:strategy_json;type:TEXT"`
	ParsedAtUnix int64          `gorm:"column:parsed_at;index"`
	CreatedAtUnix int64         `gorm:"column:created_at"`

	ParsedAt time.Time `gorm:"-"`
}

func (OrderModel) TableName() string { return "order_records" }
