// Package visual 把分析报告渲染成 echarts 页面，供仪表盘展示与通知截图复用。
package visual

import (
	"fmt"
	"io"
	"sort"

	"ordersift/internal/analysis"
	siftypes "ordersift/internal/types"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorLong          = "#34d399"
	colorShort         = "#f87171"

	chartWidthPx  = 900
	chartHeightPx = 420
)

// RenderReportPage 把报告渲染成单页 HTML。
func RenderReportPage(report analysis.Report, w io.Writer) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = fmt.Sprintf("交易数据分析 (%s)", report.Period)

	page.AddCharts(
		buildDirectionPie(report),
		buildStrategyBar(report),
		buildHourBar(report),
	)
	return page.Render(w)
}

func chartInit() opts.Initialization {
	return opts.Initialization{
		Theme:           types.ThemeWesteros,
		Width:           fmt.Sprintf("%dpx", chartWidthPx),
		Height:          fmt.Sprintf("%dpx", chartHeightPx),
		BackgroundColor: colorBackground,
	}
}

func buildDirectionPie(report analysis.Report) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(chartInit()),
		charts.WithTitleOpts(opts.Title{
			Title:      "开仓方向分布",
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextSecondary}}),
	)
	data := make([]opts.PieData, 0, len(report.DirectionCounts))
	dirs := make([]string, 0, len(report.DirectionCounts))
	for dir := range report.DirectionCounts {
		dirs = append(dirs, string(dir))
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		color := colorLong
		if dir == "SHORT" {
			color = colorShort
		}
		data = append(data, opts.PieData{
			Name:      dir,
			Value:     report.DirectionCounts[siftypes.Direction(dir)],
			ItemStyle: &opts.ItemStyle{Color: color},
		})
	}
	pie.AddSeries("direction", data)
	return pie
}

func buildStrategyBar(report analysis.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(chartInit()),
		charts.WithTitleOpts(opts.Title{
			Title:      "热门策略",
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary},
		}),
	)
	xAxis := make([]string, 0, len(report.TopStrategies))
	data := make([]opts.BarData, 0, len(report.TopStrategies))
	for _, sc := range report.TopStrategies {
		xAxis = append(xAxis, sc.Keyword)
		data = append(data, opts.BarData{Value: sc.Count})
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("count", data)
	return bar
}

func buildHourBar(report analysis.Report) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(chartInit()),
		charts.WithTitleOpts(opts.Title{
			Title:      "时段分布（按解析时间）",
			Left:       "left",
			TitleStyle: &opts.TextStyle{Color: colorTextPrimary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)
	xAxis := make([]string, 0, 24)
	data := make([]opts.BarData, 0, 24)
	for hour := 0; hour < 24; hour++ {
		xAxis = append(xAxis, fmt.Sprintf("%02d", hour))
		data = append(data, opts.BarData{Value: report.HourCounts[hour]})
	}
	bar.SetXAxis(xAxis)
	bar.AddSeries("orders", data)
	return bar
}
