package outcomelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ordersift/internal/types"

	_ "modernc.org/sqlite"
)

// OutcomeLogStore 管理消息处理终态日志，方便后续排查“消息 X 发生了什么”。
type OutcomeLogStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	ownsDB bool
}

// OutcomeQuery 用于筛选终态日志。
type OutcomeQuery struct {
	MessageID string
	Stage     string
	Limit     int
	Offset    int
}

// NewOutcomeLogStore 初始化 SQLite 存储。
func NewOutcomeLogStore(path string) (*OutcomeLogStore, error) {
	if path == "" {
		return nil, fmt.Errorf("outcome log path 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureOutcomeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &OutcomeLogStore{db: db, path: path, ownsDB: true}, nil
}

// UseExternalDB 允许复用外部（例如 GORM）初始化的 SQLite 连接，避免多连接锁冲突。
func (s *OutcomeLogStore) UseExternalDB(db *sql.DB) error {
	if s == nil {
		return fmt.Errorf("outcome log store 未初始化")
	}
	if db == nil {
		return fmt.Errorf("external db 不能为空")
	}
	if err := ensureOutcomeSchema(db); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownsDB && s.db != nil && s.db != db {
		_ = s.db.Close()
	}
	s.db = db
	s.ownsDB = false
	return nil
}

// Close 关闭底层 DB。
func (s *OutcomeLogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	if !s.ownsDB {
		s.db = nil
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureOutcomeSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workflow_outcomes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message_id TEXT NOT NULL,
			trace_id TEXT,
			stage TEXT NOT NULL,
			error TEXT,
			record_json TEXT,
			finished_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		`,
		`CREATE INDEX IF NOT EXISTS idx_workflow_outcomes_message ON workflow_outcomes(message_id, finished_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_workflow_outcomes_stage_ts ON workflow_outcomes(stage, finished_at DESC, id DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append 写入一条终态记录。
func (s *OutcomeLogStore) Append(ctx context.Context, out types.WorkflowOutcome) (int64, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return 0, fmt.Errorf("outcome log store 未初始化")
	}
	finished := out.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	recordJSON := ""
	if out.Record != nil {
		if b, err := json.Marshal(out.Record); err == nil {
			recordJSON = string(b)
		}
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO workflow_outcomes
			(message_id, trace_id, stage, error, record_json, finished_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.MessageID,
		out.TraceID,
		string(out.StageReached),
		out.Error,
		recordJSON,
		finished.UnixMilli(),
		time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Query 按条件倒序返回终态记录。
func (s *OutcomeLogStore) Query(ctx context.Context, q OutcomeQuery) ([]types.WorkflowOutcome, error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("outcome log store 未初始化")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT message_id, trace_id, stage, error, record_json, finished_at FROM workflow_outcomes`)
	var conds []string
	var args []interface{}
	if v := strings.TrimSpace(q.MessageID); v != "" {
		conds = append(conds, "message_id = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(q.Stage); v != "" {
		conds = append(conds, "stage = ?")
		args = append(args, v)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY finished_at DESC, id DESC")
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	sb.WriteString(" LIMIT ?")
	args = append(args, limit)
	if q.Offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, q.Offset)
	}

	rows, err := db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outs []types.WorkflowOutcome
	for rows.Next() {
		var out types.WorkflowOutcome
		var stage, recordJSON string
		var errText sql.NullString
		var finishedMs int64
		if err := rows.Scan(&out.MessageID, &out.TraceID, &stage, &errText, &recordJSON, &finishedMs); err != nil {
			return nil, err
		}
		out.StageReached = types.Stage(stage)
		if errText.Valid {
			out.Error = errText.String
		}
		if recordJSON != "" {
			var rec types.OrderRecord
			if err := json.Unmarshal([]byte(recordJSON), &rec); err == nil {
				out.Record = &rec
			}
		}
		out.FinishedAt = time.UnixMilli(finishedMs)
		outs = append(outs, out)
	}
	return outs, rows.Err()
}

// FindByMessageID 返回某条消息的全部终态记录（新到旧）。
func (s *OutcomeLogStore) FindByMessageID(ctx context.Context, messageID string) ([]types.WorkflowOutcome, error) {
	if strings.TrimSpace(messageID) == "" {
		return nil, fmt.Errorf("message_id 必填")
	}
	return s.Query(ctx, OutcomeQuery{MessageID: messageID})
}
