package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"sync"
	"time"

	"ordersift/internal/analysis"

	"github.com/chromedp/chromedp"
)

var (
	headlessOnce sync.Once
	headlessErr  error
)

// EnsureHeadlessAvailable 探测本机 headless 浏览器是否可用，结果缓存。
func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

// Snapshot 把报告页面截成 PNG，用于通知附图。
// 环境里没有浏览器时返回错误，调用方降级为纯文本推送。
func Snapshot(ctx context.Context, report analysis.Report) ([]byte, error) {
	if err := EnsureHeadlessAvailable(ctx); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := RenderReportPage(report, &buf); err != nil {
		return nil, err
	}
	height := 3 * (chartHeightPx + 40)
	return renderHTMLToPNG(ctx, buf.Bytes(), chartWidthPx+60, height)
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 90),
	}
	if err := chromedp.Run(timeoutCtx, tasks); err != nil {
		return nil, err
	}
	return screenshot, nil
}
