// Package types 定义消息→订单流水线共享的领域类型。
package types

import "time"

// RawMessage 是监听端交付的一条原始群消息。
// 由监听方构造后不再修改；group_name 已由监听方通过群名缓存解析完成。
type RawMessage struct {
	MessageID  string    `json:"message_id"`
	GroupID    string    `json:"group_id"`
	GroupName  string    `json:"group_name"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

// ClassificationResult 是分类器对单条消息的判定，逐条重算、不持久化。
type ClassificationResult struct {
	IsOrderMessage      bool     `json:"is_order_message"`
	MatchedKeywordCount int      `json:"matched_keyword_count"`
	MatchedExclusions   []string `json:"matched_exclusions,omitempty"`
}
