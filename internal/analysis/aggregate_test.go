package analysis

import (
	"testing"
	"time"

	"ordersift/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(dir types.Direction, entry string, parsedAt time.Time, strategies ...string) types.OrderRecord {
	return types.OrderRecord{
		GroupName:        "VIP 信号群",
		MessageText:      "msg",
		Direction:        dir,
		EntryAmount:      entry,
		StrategyKeywords: strategies,
		ParsedAt:         parsedAt,
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	report := Aggregate(nil, PeriodDaily)
	assert.Equal(t, PeriodDaily, report.Period)
	assert.Zero(t, report.TotalOrders)
	assert.Empty(t, report.DirectionCounts)
	assert.Empty(t, report.TopStrategies)
	assert.Nil(t, report.AmountStats)
}

func TestAggregate_DirectionCounts(t *testing.T) {
	at := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	records := []types.OrderRecord{
		rec(types.DirectionLong, "", at),
		rec(types.DirectionLong, "", at),
		rec(types.DirectionShort, "", at),
		rec("", "", at), // 缺方向的记录只计入总量
	}
	report := Aggregate(records, PeriodAll)
	assert.Equal(t, 4, report.TotalOrders)
	assert.Equal(t, 2, report.DirectionCounts[types.DirectionLong])
	assert.Equal(t, 1, report.DirectionCounts[types.DirectionShort])
	assert.Equal(t, 4, report.HourCounts[14])
	assert.Equal(t, 4, report.WeekdayCounts["Monday"])
}

func TestRankStrategies_StableTies(t *testing.T) {
	at := time.Now()
	records := []types.OrderRecord{
		rec(types.DirectionLong, "", at, "趋势跟踪", "网格"),
		rec(types.DirectionLong, "", at, "突破", "趋势跟踪"),
		rec(types.DirectionShort, "", at, "网格"),
	}
	report := Aggregate(records, PeriodWeekly)
	require.Len(t, report.TopStrategies, 3)
	assert.Equal(t, StrategyCount{Keyword: "趋势跟踪", Count: 2}, report.TopStrategies[0])
	// 网格与突破同频，按首次出现顺序排列
	assert.Equal(t, StrategyCount{Keyword: "网格", Count: 2}, report.TopStrategies[1])
	assert.Equal(t, StrategyCount{Keyword: "突破", Count: 1}, report.TopStrategies[2])
}

func TestCoerceAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"入场金额:50000 USDT", "50000", true},
		{"投入:1,500U", "1500", true},
		{"仓位:0.5", "0.5", true},
		{"止盈:55000", "55000", true},
		{"没有数字", "", false},
		{"", "", false},
		{"金额:0", "", false},
	}
	for _, tc := range cases {
		d, ok := CoerceAmount(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		if tc.ok {
			assert.Equal(t, tc.want, d.String(), tc.raw)
		}
	}
}

func TestSummarizeAmounts(t *testing.T) {
	at := time.Now()

	t.Run("混合可解与不可解", func(t *testing.T) {
		records := []types.OrderRecord{
			rec(types.DirectionLong, "入场:100U", at),
			rec(types.DirectionLong, "入场:300U", at),
			rec(types.DirectionLong, "重仓梭哈", at), // 解不出数值
			rec(types.DirectionShort, "", at),
		}
		report := Aggregate(records, PeriodAll)
		require.NotNil(t, report.AmountStats)
		assert.Equal(t, 2, report.AmountStats.Samples)
		assert.Equal(t, "100", report.AmountStats.Min.String())
		assert.Equal(t, "300", report.AmountStats.Max.String())
		assert.Equal(t, "400", report.AmountStats.Sum.String())
		assert.Equal(t, "200", report.AmountStats.Avg.String())
	})

	t.Run("全部不可解时不输出统计", func(t *testing.T) {
		records := []types.OrderRecord{rec(types.DirectionLong, "满仓", at)}
		report := Aggregate(records, PeriodAll)
		assert.Nil(t, report.AmountStats)
	})
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("daily")
	require.NoError(t, err)
	assert.Equal(t, PeriodDaily, p)

	p, err = ParsePeriod(" WEEKLY ")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	_, err = ParsePeriod("monthly")
	assert.Error(t, err)
}

func TestPeriodWindow(t *testing.T) {
	now := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	since, bounded := PeriodWindow(PeriodDaily, now)
	assert.True(t, bounded)
	assert.Equal(t, now.Add(-24*time.Hour), since)

	since, bounded = PeriodWindow(PeriodWeekly, now)
	assert.True(t, bounded)
	assert.Equal(t, now.Add(-7*24*time.Hour), since)

	_, bounded = PeriodWindow(PeriodAll, now)
	assert.False(t, bounded)
}
