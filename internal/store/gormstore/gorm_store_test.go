package gormstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ordersift/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewGormStore(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndListOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Unix(1717300000, 0)

	records := []types.OrderRecord{
		{
			GroupName:        "合约信号群",
			MessageText:      "BTC 开仓做多\n入场金额:50000 USDT\n止损:48000",
			OrderType:        types.OrderTypeOpen,
			Direction:        types.DirectionLong,
			EntryAmount:      "入场金额:50000 USDT",
			StopLoss:         "止损:48000",
			StrategyKeywords: []string{"突破追多"},
			ParsedAt:         base,
		},
		{
			GroupName:   "现货交流群",
			MessageText: "ETH 卖出，止盈:4000",
			OrderType:   types.OrderTypeSell,
			Direction:   types.DirectionShort,
			TakeProfit:  "止盈:4000",
			ParsedAt:    base.Add(time.Hour),
		},
	}
	for _, rec := range records {
		require.NoError(t, store.SaveOrder(ctx, rec))
	}

	t.Run("倒序返回全部", func(t *testing.T) {
		got, err := store.ListOrders(ctx, time.Time{}, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "现货交流群", got[0].GroupName)
		assert.Equal(t, "合约信号群", got[1].GroupName)
		assert.Equal(t, []string{"突破追多"}, got[1].StrategyKeywords)
		assert.Equal(t, base, got[1].ParsedAt)
	})

	t.Run("时间窗过滤", func(t *testing.T) {
		got, err := store.ListOrders(ctx, base.Add(time.Minute), 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, types.OrderTypeSell, got[0].OrderType)
	})

	t.Run("limit 截断", func(t *testing.T) {
		got, err := store.ListOrders(ctx, time.Time{}, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "现货交流群", got[0].GroupName)
	})

	n, err := store.CountOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSaveOrder_ZeroParsedAtDefaultsToNow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOrder(ctx, types.OrderRecord{
		GroupName:   "未知群",
		MessageText: "下单成交了",
	}))
	got, err := store.ListOrders(ctx, time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].ParsedAt.IsZero())
	assert.Empty(t, got[0].StrategyKeywords)
}

func TestNewGormStore_EmptyPath(t *testing.T) {
	_, err := NewGormStore("  ")
	assert.Error(t, err)
}
