package types

import "time"

// Stage 标识一条消息在流水线中到达的终点。
type Stage string

const (
	StageFilteredOut      Stage = "FILTERED_OUT"
	StageExtractionFailed Stage = "EXTRACTION_FAILED"
	StageStored           Stage = "STORED"
	StageStoreFailed      Stage = "STORE_FAILED"
	StageAnalyzed         Stage = "ANALYZED"
)

// WorkflowOutcome 是单条消息处理的终态，足以回答“消息 X 发生了什么”。
// STORE_FAILED 时 Record 仍然附带，调用方可自行决定重试。
type WorkflowOutcome struct {
	MessageID    string       `json:"message_id"`
	TraceID      string       `json:"trace_id"`
	StageReached Stage        `json:"stage_reached"`
	Error        string       `json:"error,omitempty"`
	Record       *OrderRecord `json:"record,omitempty"`
	FinishedAt   time.Time    `json:"finished_at"`
}
