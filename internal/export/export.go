// Package export 按格式选择渲染器，完成渲染、序列化与交付。
// 导出只读取调用方提供的文档快照，从不修改它，也不会自行拉取数据。
package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"resumeKit/internal/render/docx"
	"resumeKit/internal/render/flow"
	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
)

// Surface 是已经物化的可视化预览，Capture 返回整页 PNG 截图。
type Surface interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Request 描述一次导出。Document 按值传递，是调用方准备好的一致快照。
type Request struct {
	Document resume.Document
	Format   Format
	Surface  Surface
}

// Artifact 是完整生成的导出文件。
type Artifact struct {
	Filename    string
	ContentType string
	Format      Format
	Pages       int
	Data        []byte
}

// Sink 接收完整的导出文件，返回保存位置。
type Sink interface {
	Save(ctx context.Context, a *Artifact) (string, error)
}

// Observer 在每次导出结束时被调用，outcome 为 ok / precondition / error。
type Observer func(format Format, outcome string, elapsed time.Duration)

type Service struct {
	logger   *slog.Logger
	measurer flow.Measurer
	fonts    flow.FontSet
	now      func() time.Time
	compress bool
	observe  Observer
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithMeasurer(m flow.Measurer) Option { return func(s *Service) { s.measurer = m } }

// WithFonts 替换 ATS PDF 的字体，度量与输出同时生效。
func WithFonts(fs flow.FontSet) Option { return func(s *Service) { s.fonts = fs } }

// FontsFromFiles 读取自定义 ATS PDF 字体（TrueType 轮廓）；regular 为空时使用内置字体。
func FontsFromFiles(regular, bold string) (flow.FontSet, error) {
	if regular == "" {
		return flow.FontSet{}, nil
	}
	return flow.LoadFontSet(regular, bold)
}

// WithClock 注入时钟，用于文件名日期。
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithCompression(on bool) Option { return func(s *Service) { s.compress = on } }

func WithObserver(o Observer) Option { return func(s *Service) { s.observe = o } }

func New(opts ...Option) *Service {
	s := &Service{
		logger:   slog.Default(),
		now:      time.Now,
		compress: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.measurer == nil {
		s.measurer = flow.NewFontMeasurer(s.fonts)
	}
	return s
}

// Export 生成导出文件。前置条件失败返回 *PreconditionError，
// 渲染、截图、序列化失败返回 *Error；两种情况都不会产生任何输出。
func (s *Service) Export(ctx context.Context, req Request) (_ *Artifact, err error) {
	start := time.Now()
	log := s.logger.With(
		slog.String("resume_id", req.Document.ID),
		slog.String("format", string(req.Format)),
	)
	defer func() {
		if s.observe == nil {
			return
		}
		outcome := "ok"
		switch {
		case IsPrecondition(err):
			outcome = "precondition"
		case err != nil:
			outcome = "error"
		}
		s.observe(req.Format, outcome, time.Since(start))
	}()

	if err := checkPreconditions(req); err != nil {
		log.Warn("export precondition failed", slog.Any("error", err))
		return nil, err
	}

	var (
		data  []byte
		pages int
	)
	switch req.Format {
	case FormatATSPDF:
		data, pages, err = s.atsPDF(req.Document)
	case FormatATSDOCX:
		// 分页由文字处理软件决定，Pages 保持为 0
		data, err = s.atsDOCX(req.Document)
	case FormatVisualPDF:
		data, pages, err = s.visualPDF(ctx, req.Surface)
	}
	if err != nil {
		log.Error("export failed", slog.Any("error", err))
		return nil, err
	}

	a := &Artifact{
		Filename:    Filename(req.Document.Title, s.now(), req.Format),
		ContentType: req.Format.ContentType(),
		Format:      req.Format,
		Pages:       pages,
		Data:        data,
	}
	log.Info("export completed",
		slog.String("filename", a.Filename),
		slog.Int("bytes", len(a.Data)),
		slog.Int("pages", a.Pages),
		slog.Duration("elapsed", time.Since(start)),
	)
	return a, nil
}

// ExportTo 导出并交给 sink 保存；sink 只会收到完整的字节。
func (s *Service) ExportTo(ctx context.Context, req Request, sink Sink) (*Artifact, string, error) {
	a, err := s.Export(ctx, req)
	if err != nil {
		return nil, "", err
	}
	location, err := sink.Save(ctx, a)
	if err != nil {
		return nil, "", &Error{Stage: StageDeliver, Format: req.Format, Cause: err}
	}
	return a, location, nil
}

func checkPreconditions(req Request) error {
	if !req.Format.Valid() {
		return &PreconditionError{Format: req.Format, Err: ErrUnknownFormat}
	}
	if req.Format.NeedsSurface() && req.Surface == nil {
		return &PreconditionError{Format: req.Format, Err: ErrMissingSurface}
	}
	return nil
}

func (s *Service) atsPDF(doc resume.Document) ([]byte, int, error) {
	var laid *flow.Document
	err := guard(func() error {
		var err error
		laid, err = flow.Render(doc, sections.Order(doc), s.measurer)
		return err
	})
	if err != nil {
		return nil, 0, &Error{Stage: StageRender, Format: FormatATSPDF, Cause: err}
	}
	var buf bytes.Buffer
	err = guard(func() error {
		return flow.WritePDF(laid, &buf, flow.WriteOptions{Compress: s.compress, Fonts: s.fonts})
	})
	if err != nil {
		return nil, 0, &Error{Stage: StageSerialize, Format: FormatATSPDF, Cause: err}
	}
	return buf.Bytes(), laid.Pages, nil
}

func (s *Service) atsDOCX(doc resume.Document) ([]byte, error) {
	var tree *docx.Document
	err := guard(func() error {
		tree = docx.Render(doc, sections.Order(doc))
		return nil
	})
	if err != nil {
		return nil, &Error{Stage: StageRender, Format: FormatATSDOCX, Cause: err}
	}
	var buf bytes.Buffer
	if err := guard(func() error { return docx.Write(tree, &buf) }); err != nil {
		return nil, &Error{Stage: StageSerialize, Format: FormatATSDOCX, Cause: err}
	}
	return buf.Bytes(), nil
}

// guard 把渲染过程中的 panic 转成错误，保证导出整体失败而不是进程崩溃。
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
