package gormstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	storemodel "ordersift/internal/store/model"
	"ordersift/internal/types"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type orderModel = storemodel.OrderModel

// GormStore 基于 Gorm + SQLite 的订单档案存储。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore initializes the order archive at the given path.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: 订单档案路径不能为空")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&orderModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: allow a small amount of parallelism for concurrent HTTP reads
	// while keeping lock contention low.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &GormStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the underlying *sql.DB for shared connections.
func (s *GormStore) SQLDB() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	return s.db.DB()
}

// SaveOrder 落库一条解析完成的订单记录。
func (s *GormStore) SaveOrder(ctx context.Context, rec types.OrderRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("gorm store 未初始化")
	}
	m := newOrderModel(rec)
	return s.db.WithContext(ctx).Create(&m).Error
}

// ListOrders 按解析时间倒序返回档案记录；since 为零值时不限时间窗。
func (s *GormStore) ListOrders(ctx context.Context, since time.Time, limit int) ([]types.OrderRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("gorm store 未初始化")
	}
	q := s.db.WithContext(ctx).Model(&orderModel{}).Order("parsed_at DESC, id DESC")
	if !since.IsZero() {
		q = q.Where("parsed_at >= ?", since.Unix())
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var models []orderModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]types.OrderRecord, 0, len(models))
	for _, m := range models {
		records = append(records, orderModelToRecord(m))
	}
	return records, nil
}

// CountOrders 返回档案总量，供健康检查与报表头使用。
func (s *GormStore) CountOrders(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("gorm store 未初始化")
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&orderModel{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func newOrderModel(rec types.OrderRecord) orderModel {
	parsedAt := rec.ParsedAt
	if parsedAt.IsZero() {
		parsedAt = time.Now()
	}
	m := orderModel{
		GroupName:     rec.GroupName,
		MessageText:   rec.MessageText,
		OrderType:     string(rec.OrderType),
		Direction:     string(rec.Direction),
		EntryAmount:   rec.EntryAmount,
		TakeProfit:    rec.TakeProfit,
		StopLoss:      rec.StopLoss,
		ParsedAtUnix:  parsedAt.Unix(),
		CreatedAtUnix: time.Now().Unix(),
	}
	if len(rec.StrategyKeywords) > 0 {
		if b, err := json.Marshal(rec.StrategyKeywords); err == nil {
			m.StrategyJSON = datatypes.JSON(b)
		}
	}
	return m
}

func orderModelToRecord(m orderModel) types.OrderRecord {
	rec := types.OrderRecord{
		GroupName:   m.GroupName,
		MessageText: m.MessageText,
		OrderType:   types.OrderType(m.OrderType),
		Direction:   types.Direction(m.Direction),
		EntryAmount: m.EntryAmount,
		TakeProfit:  m.TakeProfit,
		StopLoss:    m.StopLoss,
		ParsedAt:    time.Unix(m.ParsedAtUnix, 0),
	}
	if len(m.StrategyJSON) > 0 {
		var kws []string
		if err := json.Unmarshal(m.StrategyJSON, &kws); err == nil {
			rec.StrategyKeywords = kws
		}
	}
	return rec
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
