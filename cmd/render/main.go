// Command render 在本地把 JSON 简历导出为 ATS PDF、ATS DOCX 或可视化 PDF。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"resumeKit/internal/browser"
	"resumeKit/internal/config"
	"resumeKit/internal/export"
	"resumeKit/internal/logging"
	"resumeKit/internal/render/visual"
	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
)

type options struct {
	in         string
	formats    []export.Format
	out        string
	browserBin string
	compress   bool
	font       string
	fontBold   string
}

func main() {
	var (
		in         = flag.String("in", "", "简历 JSON 文件路径（必填，- 表示标准输入）")
		formats    = flag.String("format", string(export.FormatATSPDF), "导出格式，逗号分隔：ats-pdf, ats-docx, visual-pdf 或 all")
		out        = flag.String("out", ".", "输出目录")
		browserBin = flag.String("browser-bin", "", "Chromium 可执行文件（visual-pdf 使用，默认自动查找）")
		compress   = flag.Bool("compress", true, "压缩 PDF 内容流")
		font       = flag.String("font", "", "ATS PDF 常规字体 TTF（默认内置 DejaVu Sans）")
		fontBold   = flag.String("font-bold", "", "ATS PDF 粗体字体 TTF")
		logLevel   = flag.String("log-level", "info", "日志级别")
	)
	flag.Parse()

	logger := logging.NewWithWriter(config.LoggingConfig{Level: *logLevel, Format: "text"}, os.Stderr)

	parsed, err := parseFormats(*formats)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if strings.TrimSpace(*in) == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: -in")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = run(ctx, logger, options{
		in:         *in,
		formats:    parsed,
		out:        *out,
		browserBin: *browserBin,
		compress:   *compress,
		font:       *font,
		fontBold:   *fontBold,
	}, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("render failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func parseFormats(raw string) ([]export.Format, error) {
	if strings.EqualFold(strings.TrimSpace(raw), "all") {
		return export.Formats, nil
	}
	var out []export.Format
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := export.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("no export format given")
	}
	return out, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func run(ctx context.Context, logger *slog.Logger, opts options, stdin io.Reader, stdout io.Writer) error {
	raw, err := readInput(opts.in, stdin)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	rawDoc, err := resume.DecodeJSON(raw)
	if err != nil {
		return err
	}
	doc, issues := resume.Normalize(rawDoc)
	for _, issue := range issues {
		logger.Warn("field normalized", slog.String("issue", issue.String()))
	}

	fonts, err := export.FontsFromFiles(opts.font, opts.fontBold)
	if err != nil {
		return err
	}
	exporter := export.New(export.WithLogger(logger), export.WithCompression(opts.compress), export.WithFonts(fonts))
	sink := export.DirSink{Dir: opts.out}

	for _, f := range opts.formats {
		req := export.Request{Document: doc, Format: f}
		var release func()
		if f.NeedsSurface() {
			html, err := visual.Render(doc, sections.Order(doc)).HTML()
			if err != nil {
				return fmt.Errorf("render preview html: %w", err)
			}
			renderer := browser.NewRenderer(logger, browser.Config{Bin: opts.browserBin})
			req.Surface, release, err = renderer.Materialize(ctx, html)
			if err != nil {
				return fmt.Errorf("materialize preview: %w", err)
			}
		}
		art, location, err := exporter.ExportTo(ctx, req, sink)
		if release != nil {
			release()
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s\t%s\t%d pages\n", f.Label(), location, art.Pages)
	}
	return nil
}
