package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
	gdocx "github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"
)

const (
	corePart = "docProps/core.xml"

	// A4，单位 twip
	pageWidthTwips  = 11906
	pageHeightTwips = 16838

	bodySizeHalfPt = 20
)

// Write 用 godocx 把文档树打包成 .docx 写入 w。
func Write(doc *Document, w io.Writer) error {
	rd, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create docx: %w", err)
	}
	for _, p := range doc.Blocks {
		addParagraph(rd, p)
	}
	setPage(rd, doc.Margins)
	if err := setCoreProps(rd, doc.Title); err != nil {
		return err
	}
	if err := rd.Write(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

func addParagraph(rd *gdocx.RootDoc, p Paragraph) {
	para := rd.AddEmptyParagraph()
	para.Style(string(p.Style))
	if p.Align == AlignCenter {
		para.Justification(stypes.JustificationCenter)
	}
	prop := para.GetCT().Property
	if p.SpacingBefore > 0 || p.SpacingAfter > 0 {
		before, after := uint64(p.SpacingBefore), uint64(p.SpacingAfter)
		prop.Spacing = &ctypes.Spacing{Before: &before, After: &after}
	}
	if b := p.BottomBorder; b != nil {
		color, space := b.Color, fmt.Sprint(b.Space)
		prop.Border = &ctypes.ParaBorder{
			Bottom: &ctypes.Border{Val: stypes.BorderStyleSingle, Color: &color, Space: &space},
		}
	}
	for _, r := range p.Runs {
		run := para.AddText(xmlSafe(r.Text))
		if r.Bold {
			run.Bold(true)
		}
		if r.Italic {
			run.Italic(true)
		}
		if r.Color != "" {
			run.Color(r.Color)
		}
		size := r.SizeHalfPt
		if size == 0 {
			size = bodySizeHalfPt
		}
		run.Size(uint64(size / 2))
	}
}

// setPage 把模板的 Letter 纸张换成 A4，并设置四边页边距。
func setPage(rd *gdocx.RootDoc, margin int) {
	body := rd.Document.Body
	if body == nil {
		body = gdocx.NewBody(rd)
		rd.Document.Body = body
	}
	if body.SectPr == nil {
		body.SectPr = ctypes.NewSectionProper()
	}
	width, height := uint64(pageWidthTwips), uint64(pageHeightTwips)
	body.SectPr.PageSize = &ctypes.PageSize{Width: &width, Height: &height}
	header, gutter := 708, 0
	body.SectPr.PageMargin = &ctypes.PageMargin{
		Top: &margin, Right: &margin, Bottom: &margin, Left: &margin,
		Header: &header, Footer: &header, Gutter: &gutter,
	}
}

// setCoreProps 在模板的 core.xml 上写入标题与作者；godocx 只提供读取核心属性的接口。
func setCoreProps(rd *gdocx.RootDoc, title string) error {
	v, ok := rd.FileMap.Load(corePart)
	if !ok {
		return fmt.Errorf("docx template: missing %s", corePart)
	}
	var esc strings.Builder
	if err := xml.EscapeText(&esc, []byte(xmlSafe(title))); err != nil {
		return fmt.Errorf("escape docx title: %w", err)
	}
	core := v.([]byte)
	core = bytes.Replace(core, []byte("<dc:title/>"), []byte("<dc:title>"+esc.String()+"</dc:title>"), 1)
	core = bytes.Replace(core, []byte("<dc:creator>gomutex</dc:creator>"), []byte("<dc:creator>resumeKit</dc:creator>"), 1)
	core = bytes.Replace(core, []byte("<dc:description>generated by godocx</dc:description>"), []byte("<dc:description/>"), 1)
	rd.FileMap.Store(corePart, core)
	return nil
}

// xmlSafe 丢弃 XML 1.0 不允许的控制字符。
func xmlSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' || r >= 0x20 {
			return r
		}
		return -1
	}, s)
}
