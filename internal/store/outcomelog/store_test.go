package outcomelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ordersift/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *OutcomeLogStore {
	t.Helper()
	store, err := NewOutcomeLogStore(filepath.Join(t.TempDir(), "outcomes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndFindByMessageID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := &types.OrderRecord{
		GroupName:   "合约信号群",
		MessageText: "BTC 开仓做多，止损:48000",
		OrderType:   types.OrderTypeOpen,
		Direction:   types.DirectionLong,
		StopLoss:    "止损:48000",
		ParsedAt:    time.Now(),
	}
	id, err := store.Append(ctx, types.WorkflowOutcome{
		MessageID:    "om_1",
		TraceID:      "trace-1",
		StageReached: types.StageStored,
		Record:       rec,
		FinishedAt:   time.UnixMilli(1717300000000),
	})
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	outs, err := store.FindByMessageID(ctx, "om_1")
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, types.StageStored, outs[0].StageReached)
	assert.Equal(t, "trace-1", outs[0].TraceID)
	assert.Equal(t, time.UnixMilli(1717300000000), outs[0].FinishedAt)
	require.NotNil(t, outs[0].Record)
	assert.Equal(t, "止损:48000", outs[0].Record.StopLoss)

	_, err = store.FindByMessageID(ctx, "  ")
	assert.Error(t, err)
}

func TestQuery_Filters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.UnixMilli(1717300000000)
	fixtures := []types.WorkflowOutcome{
		{MessageID: "om_a", StageReached: types.StageFilteredOut, FinishedAt: base},
		{MessageID: "om_b", StageReached: types.StageStored, FinishedAt: base.Add(time.Second)},
		{MessageID: "om_c", StageReached: types.StageStoreFailed, Error: "database is locked", FinishedAt: base.Add(2 * time.Second)},
		{MessageID: "om_d", StageReached: types.StageStored, FinishedAt: base.Add(3 * time.Second)},
	}
	for _, out := range fixtures {
		_, err := store.Append(ctx, out)
		require.NoError(t, err)
	}

	t.Run("按阶段过滤且新到旧", func(t *testing.T) {
		outs, err := store.Query(ctx, OutcomeQuery{Stage: string(types.StageStored)})
		require.NoError(t, err)
		require.Len(t, outs, 2)
		assert.Equal(t, "om_d", outs[0].MessageID)
		assert.Equal(t, "om_b", outs[1].MessageID)
	})

	t.Run("limit 与 offset", func(t *testing.T) {
		outs, err := store.Query(ctx, OutcomeQuery{Limit: 2})
		require.NoError(t, err)
		require.Len(t, outs, 2)
		assert.Equal(t, "om_d", outs[0].MessageID)

		outs, err = store.Query(ctx, OutcomeQuery{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, outs, 2)
		assert.Equal(t, "om_b", outs[0].MessageID)
		assert.Equal(t, "om_a", outs[1].MessageID)
	})

	t.Run("错误原文保留", func(t *testing.T) {
		outs, err := store.Query(ctx, OutcomeQuery{MessageID: "om_c"})
		require.NoError(t, err)
		require.Len(t, outs, 1)
		assert.Equal(t, "database is locked", outs[0].Error)
		assert.Nil(t, outs[0].Record)
	})
}

func TestStore_ClosedRejects(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.Append(context.Background(), types.WorkflowOutcome{MessageID: "om_x", StageReached: types.StageStored})
	assert.Error(t, err)
	_, err = store.Query(context.Background(), OutcomeQuery{})
	assert.Error(t, err)
}
