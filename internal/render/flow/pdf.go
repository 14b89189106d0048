package flow

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

// WriteOptions 控制 PDF 序列化。
type WriteOptions struct {
	Compress bool
	// Fonts 必须与排版时 FontMeasurer 使用的字体一致；零值为内置字体。
	Fonts FontSet
	// Created 写入文档信息；零值时使用固定时间，保证相同输入得到相同字节。
	Created time.Time
}

var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// WritePDF 用 fpdf 回放绘制指令，输出矢量文本 PDF（不含任何位图）。
func WritePDF(doc *Document, w io.Writer, opts WriteOptions) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetCompression(opts.Compress)
	// 字体等资源按键排序输出，相同输入得到相同字节
	pdf.SetCatalogSort(true)
	created := opts.Created
	if created.IsZero() {
		created = epoch
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCreator("resumeKit", false)
	if doc.Title != "" {
		pdf.SetTitle(doc.Title, true)
	}
	if err := opts.Fonts.register(pdf); err != nil {
		return err
	}

	pages := max(doc.Pages, 1)
	page := -1
	ensure := func(target int) {
		for page < target {
			pdf.AddPage()
			page++
		}
	}
	for _, op := range doc.Ops {
		ensure(op.Page)
		c := op.Font.Color
		switch op.Kind {
		case OpRule:
			pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
			pdf.SetLineWidth(op.Width)
			pdf.Line(op.X, op.Y, op.X2, op.Y)
		case OpText:
			pdf.SetFont(fontFamily, string(op.Font.Style), op.Font.Size)
			pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
			pdf.Text(op.X, op.Y, op.Text)
		}
	}
	ensure(pages - 1)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
