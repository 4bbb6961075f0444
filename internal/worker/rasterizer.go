package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ErrRenderTargetMissing 表示渲染页面中找不到简历预览节点。
var ErrRenderTargetMissing = errors.New("rendering target missing")

const (
	// A4 视口像素尺寸（96 DPI）。
	viewportWidthPx  = 794
	viewportHeightPx = 1123

	// 截图放大倍率，提升位图清晰度。
	snapshotScaleFactor = 2
)

// renderResumeSnapshot 在无头 Chromium 中加载渲染好的 HTML，
// 以两倍缩放截取 #resume-preview 节点的 PNG 位图。
// 出错时自行回收浏览器进程，返回的 cleanup 退化为空操作，调用方无需区分路径。
func renderResumeSnapshot(logger *slog.Logger, html string) (_ []byte, cleanup func(), err error) {
	cleanup = func() {}
	defer func() {
		if err != nil {
			cleanup()
			cleanup = func() {}
		}
	}()

	logger.Info("Worker: Launching headless chromium...")

	launch := launcher.New().
		Headless(true).
		NoSandbox(true)
	cleanup = launch.Cleanup

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, cleanup, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(browserURL).Timeout(90 * time.Second)
	if err := browser.Connect(); err != nil {
		return nil, cleanup, fmt.Errorf("connect browser: %w", err)
	}

	page := browser.MustPage("about:blank")
	cleanup = func() {
		if page != nil {
			_ = page.Close()
		}
		_ = browser.Close()
		launch.Cleanup()
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidthPx,
		Height:            viewportHeightPx,
		DeviceScaleFactor: snapshotScaleFactor,
	}).Call(page); err != nil {
		return nil, cleanup, fmt.Errorf("set device metrics: %w", err)
	}

	if err := page.SetDocumentContent(html); err != nil {
		return nil, cleanup, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, cleanup, fmt.Errorf("wait page load: %w", err)
	}

	logger.Info("Worker: Locating #resume-preview...")
	element, err := page.Timeout(10 * time.Second).Element("#resume-preview")
	if err != nil {
		return nil, cleanup, fmt.Errorf("%w: %s", ErrRenderTargetMissing, err)
	}

	if err := page.WaitIdle(30 * time.Second); err != nil {
		logger.Warn("Worker: wait idle failed, continue", slog.Any("error", err))
	}

	data, err := element.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, cleanup, fmt.Errorf("capture element screenshot: %w", err)
	}

	return data, cleanup, nil
}
