package analysis

import (
	"fmt"
	"sort"
	"strings"

	"ordersift/internal/types"
)

// RenderText 把报告渲染成等宽文本，发通知或打进日志都能直接用。
func RenderText(r Report) string {
	var b strings.Builder
	line := strings.Repeat("=", 48)
	b.WriteString(line + "\n")
	b.WriteString(fmt.Sprintf("交易数据分析报告 (%s)\n", r.Period))
	b.WriteString(line + "\n\n")
	b.WriteString(fmt.Sprintf("生成时间: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("总订单数: %d\n\n", r.TotalOrders))

	b.WriteString("--- 方向分析 ---\n")
	if len(r.DirectionCounts) == 0 {
		b.WriteString("无方向数据\n")
	} else {
		for _, dir := range sortedDirections(r.DirectionCounts) {
			b.WriteString(fmt.Sprintf("%s: %d 次\n", dir, r.DirectionCounts[dir]))
		}
	}

	b.WriteString("\n--- 策略分析 ---\n")
	if len(r.TopStrategies) == 0 {
		b.WriteString("无策略数据\n")
	} else {
		b.WriteString("热门策略:\n")
		for i, sc := range r.TopStrategies {
			b.WriteString(fmt.Sprintf("  %d. %s (%d 次)\n", i+1, sc.Keyword, sc.Count))
		}
	}

	b.WriteString("\n--- 金额分析 ---\n")
	if r.AmountStats == nil {
		b.WriteString("无可解析的金额数据\n")
	} else {
		b.WriteString(fmt.Sprintf("样本数: %d\n", r.AmountStats.Samples))
		b.WriteString(fmt.Sprintf("平均入场金额: %s U\n", r.AmountStats.Avg.StringFixed(2)))
		b.WriteString(fmt.Sprintf("金额范围: %s - %s U\n",
			r.AmountStats.Min.StringFixed(2), r.AmountStats.Max.StringFixed(2)))
		b.WriteString(fmt.Sprintf("总投入金额: %s U\n", r.AmountStats.Sum.StringFixed(2)))
	}

	if recs := buildRecommendations(r); len(recs) > 0 {
		b.WriteString("\n--- 建议 ---\n")
		for _, rec := range recs {
			b.WriteString("• " + rec + "\n")
		}
	}
	b.WriteString("\n" + line)
	return b.String()
}

// buildRecommendations 根据统计结果生成几条可读结论。
func buildRecommendations(r Report) []string {
	var recs []string
	if dir, count, ok := dominantDirection(r.DirectionCounts); ok {
		recs = append(recs, fmt.Sprintf("最常见的交易方向是 %s（%d 次）", dir, count))
	}
	if r.AmountStats != nil {
		recs = append(recs, fmt.Sprintf("平均入场金额 %s U", r.AmountStats.Avg.StringFixed(2)))
	}
	if len(r.TopStrategies) > 0 {
		top := r.TopStrategies[0]
		recs = append(recs, fmt.Sprintf("最热门的策略: %s（出现 %d 次）", top.Keyword, top.Count))
	}
	return recs
}

func dominantDirection(counts map[types.Direction]int) (types.Direction, int, bool) {
	var best types.Direction
	bestCount := 0
	for _, dir := range sortedDirections(counts) {
		if counts[dir] > bestCount {
			best, bestCount = dir, counts[dir]
		}
	}
	return best, bestCount, bestCount > 0
}

// sortedDirections 固定枚举输出顺序，渲染结果不随 map 迭代序漂移。
func sortedDirections(counts map[types.Direction]int) []types.Direction {
	dirs := make([]types.Direction, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}
