// Package browser 在无头 Chromium 中物化可视化预览，供截图导出使用。
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"resumeKit/internal/export"
)

// Config 控制浏览器与视口。
type Config struct {
	// ViewportWidth 单位 CSS 像素，A4 在 96 DPI 下为 794。
	ViewportWidth int
	// Scale 是截图的设备像素比。
	Scale   float64
	Timeout time.Duration
	// Bin 为空时自动查找本机 Chromium。
	Bin string
}

func (c Config) withDefaults() Config {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 794
	}
	if c.Scale <= 0 {
		c.Scale = 2
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	return c
}

// Renderer 每次 Open 启动一个独立的浏览器进程，不同导出之间不共享状态。
type Renderer struct {
	logger *slog.Logger
	cfg    Config
}

func NewRenderer(logger *slog.Logger, cfg Config) *Renderer {
	return &Renderer{logger: logger, cfg: cfg.withDefaults()}
}

// Surface 是已经加载完成的预览页面。
type Surface struct {
	page    *rod.Page
	cfg     Config
	logger  *slog.Logger
	cleanup func()
}

// Open 把预览 HTML 加载进新页面并等待渲染完成信号与字体就绪。
func (r *Renderer) Open(ctx context.Context, html string) (_ *Surface, err error) {
	log := r.logger
	launch := launcher.New().
		Headless(true).
		NoSandbox(true)
	defer func() {
		if err != nil {
			launch.Cleanup()
		}
	}()

	if r.cfg.Bin != "" {
		launch = launch.Bin(r.cfg.Bin)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	controlURL, err := launch.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx).Timeout(r.cfg.Timeout)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	closeBrowser := func() {
		_ = b.Close()
		launch.Cleanup()
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}
	s := &Surface{
		page:   page,
		cfg:    r.cfg,
		logger: log,
		cleanup: func() {
			_ = page.Close()
			closeBrowser()
		},
	}
	if err := s.load(html); err != nil {
		s.cleanup()
		return nil, err
	}
	return s, nil
}

func (s *Surface) load(html string) error {
	// 高度只是初始值，整页截图会按内容高度扩展
	if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            1123,
		DeviceScaleFactor: s.cfg.Scale,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	if err := s.page.SetDocumentContent(html); err != nil {
		return fmt.Errorf("set document content: %w", err)
	}
	if err := s.page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	if _, err := s.page.Timeout(10 * time.Second).Element("#pdf-render-ready"); err != nil {
		return fmt.Errorf("wait render signal: %w", err)
	}

	// 等待 WebFont 就绪，避免回退字体导致排版差异
	if _, err := s.page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`); err != nil {
		s.logger.Warn("document.fonts.ready wait failed, continue", slog.Any("error", err))
	}
	return nil
}

// Capture 截取整页 PNG。页面没有外边距，整页即 #a4-container。
func (s *Surface) Capture(ctx context.Context) ([]byte, error) {
	data, err := s.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("page screenshot: %w", err)
	}
	return data, nil
}

// Close 关闭页面与浏览器进程。
func (s *Surface) Close() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// Materialize 打开页面并以 export.Surface 的形式返回，调用方负责调用 release。
func (r *Renderer) Materialize(ctx context.Context, html string) (export.Surface, func(), error) {
	s, err := r.Open(ctx, html)
	if err != nil {
		return nil, func() {}, err
	}
	return s, s.Close, nil
}
