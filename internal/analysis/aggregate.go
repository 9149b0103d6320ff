// Package analysis 对已存储的订单记录做批量统计：
// 方向分布、策略热度排行、入场金额统计与时间分布。
package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"ordersift/internal/types"

	"github.com/shopspring/decimal"
)

// Period 是分析窗口。
type Period string

const (
	PeriodDaily  Period = "DAILY"
	PeriodWeekly Period = "WEEKLY"
	PeriodAll    Period = "ALL"
)

// topStrategyLimit 限制策略排行长度。
const topStrategyLimit = 5

// StrategyCount 是策略排行中的一项。
type StrategyCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// AmountStats 只统计能从原文里解出数值的记录。
type AmountStats struct {
	Samples int             `json:"samples"`
	Avg     decimal.Decimal `json:"avg"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Sum     decimal.Decimal `json:"sum"`
}

// Report 是一次聚合的完整产出，按需生成，本层不持久化。
type Report struct {
	Period          Period                  `json:"period"`
	TotalOrders     int                     `json:"total_orders"`
	DirectionCounts map[types.Direction]int `json:"direction_counts"`
	TopStrategies   []StrategyCount         `json:"top_strategies"`
	AmountStats     *AmountStats            `json:"amount_stats,omitempty"`
	HourCounts      map[int]int             `json:"hour_counts"`
	WeekdayCounts   map[string]int          `json:"weekday_counts"`
	GeneratedAt     time.Time               `json:"generated_at"`
}

// ParsePeriod 把外部输入（路径参数等）归一化为 Period。
func ParsePeriod(raw string) (Period, error) {
	switch Period(strings.ToUpper(strings.TrimSpace(raw))) {
	case PeriodDaily:
		return PeriodDaily, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodAll:
		return PeriodAll, nil
	default:
		return "", fmt.Errorf("未知的分析窗口: %s", raw)
	}
}

// PeriodWindow 返回窗口起点。ALL 时第二个返回值为 false（不过滤）。
func PeriodWindow(period Period, now time.Time) (time.Time, bool) {
	switch period {
	case PeriodDaily:
		return now.Add(-24 * time.Hour), true
	case PeriodWeekly:
		return now.Add(-7 * 24 * time.Hour), true
	default:
		return time.Time{}, false
	}
}

// Aggregate 对记录集合做一次完整统计。
// 输入顺序即平局裁决顺序：同频策略按首次出现先后排列，
// 同一输入跑多少遍结果都逐位相同。
func Aggregate(records []types.OrderRecord, period Period) Report {
	report := Report{
		Period:          period,
		TotalOrders:     len(records),
		DirectionCounts: make(map[types.Direction]int),
		HourCounts:      make(map[int]int),
		WeekdayCounts:   make(map[string]int),
		GeneratedAt:     time.Now(),
	}

	// 方向分布：缺方向的记录不计入分布，但仍算在 TotalOrders 里。
	for _, rec := range records {
		if rec.Direction != "" {
			report.DirectionCounts[rec.Direction]++
		}
	}

	report.TopStrategies = rankStrategies(records)
	report.AmountStats = summarizeAmounts(records)

	for _, rec := range records {
		if rec.ParsedAt.IsZero() {
			continue
		}
		report.HourCounts[rec.ParsedAt.Hour()]++
		report.WeekdayCounts[rec.ParsedAt.Weekday().String()]++
	}
	return report
}

// rankStrategies 展平全部策略关键词，按出现次数降序排行。
// 稳定排序保证平局时保持首次出现顺序，而非字典序或随机序。
func rankStrategies(records []types.OrderRecord) []StrategyCount {
	counts := make(map[string]int)
	var order []string
	for _, rec := range records {
		for _, kw := range rec.StrategyKeywords {
			kw = strings.TrimSpace(kw)
			if kw == "" {
				continue
			}
			if _, seen := counts[kw]; !seen {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}
	ranked := make([]StrategyCount, 0, len(order))
	for _, kw := range order {
		ranked = append(ranked, StrategyCount{Keyword: kw, Count: counts[kw]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topStrategyLimit {
		ranked = ranked[:topStrategyLimit]
	}
	return ranked
}

var numericRun = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// CoerceAmount 从金额原文里尽力解出数值。
// 原文混杂绝对价、百分比和币本位金额，这里只取第一段数字串
// （忽略千分位逗号与后缀单位），解不出或非正数时判失败。
func CoerceAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	m := numericRun.FindString(raw)
	if m == "" {
		return decimal.Zero, false
	}
	m = strings.ReplaceAll(m, ",", "")
	d, err := decimal.NewFromString(m)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// summarizeAmounts 统计可解数值的入场金额；一条都解不出时返回 nil，
// 而不是一个全零的退化结构。
func summarizeAmounts(records []types.OrderRecord) *AmountStats {
	var amounts []decimal.Decimal
	for _, rec := range records {
		if rec.EntryAmount == "" {
			continue
		}
		if d, ok := CoerceAmount(rec.EntryAmount); ok {
			amounts = append(amounts, d)
		}
	}
	if len(amounts) == 0 {
		return nil
	}
	stats := &AmountStats{
		Samples: len(amounts),
		Min:     amounts[0],
		Max:     amounts[0],
	}
	sum := decimal.Zero
	for _, d := range amounts {
		sum = sum.Add(d)
		if d.LessThan(stats.Min) {
			stats.Min = d
		}
		if d.GreaterThan(stats.Max) {
			stats.Max = d
		}
	}
	stats.Sum = sum
	stats.Avg = sum.Div(decimal.NewFromInt(int64(len(amounts)))).Round(2)
	return stats
}
