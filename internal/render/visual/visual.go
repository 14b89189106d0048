// Package visual 生成简历的可视化预览（HTML），同时供屏幕预览与截图导出使用。
package visual

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
)

// PageWidthPx 是 A4 在 96 DPI 下的宽度。
const PageWidthPx = 794

type Column string

const (
	ColumnMain    Column = "main"
	ColumnSidebar Column = "sidebar"
)

// sidebarKinds 双栏布局中放入侧栏的分区。
var sidebarKinds = map[sections.Kind]bool{
	sections.KindCoreCompetencies: true,
	sections.KindTechnicalSkills:  true,
	sections.KindSoftSkills:       true,
	sections.KindLanguages:        true,
	sections.KindCertifications:   true,
}

type Block struct {
	sections.Section
	Column Column
}

// Document 是可视化渲染树。Blocks 保持排序策略给出的顺序。
type Document struct {
	Title  string
	Layout resume.Layout
	Style  Style
	Header *sections.Header
	Blocks []Block
}

// Render 根据排序结果构建渲染树，不会重新推导分区顺序。
func Render(doc resume.Document, list sections.List) *Document {
	out := &Document{
		Title:  doc.Title,
		Layout: doc.Layout,
		Style:  StyleFor(doc),
		Header: list.Header,
	}
	if out.Layout != resume.LayoutTwoColumn {
		out.Layout = resume.LayoutOneColumn
	}
	for _, s := range list.Sections {
		col := ColumnMain
		if out.Layout == resume.LayoutTwoColumn && sidebarKinds[s.Kind] {
			col = ColumnSidebar
		}
		out.Blocks = append(out.Blocks, Block{Section: s, Column: col})
	}
	return out
}

func (d *Document) column(c Column) []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Column == c {
			out = append(out, b)
		}
	}
	return out
}

// Main 返回主栏分区，单栏布局下即全部分区。
func (d *Document) Main() []Block { return d.column(ColumnMain) }

func (d *Document) Sidebar() []Block { return d.column(ColumnSidebar) }

// TwoColumn 供模板判断布局。
func (d *Document) TwoColumn() bool { return d.Layout == resume.LayoutTwoColumn }

// Titles 返回分区标题，顺序与排序策略一致。
func (d *Document) Titles() []string {
	out := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		out = append(out, b.Title)
	}
	return out
}

var pageTemplate = template.Must(template.New("resume").Funcs(template.FuncMap{
	"pageWidth": func() int { return PageWidthPx },
	// 样式变量来自固定的白名单表，直接作为 CSS 输出。
	"css": func(v string) template.CSS { return template.CSS(v) },
}).Parse(pageTemplateString))

// WriteHTML 把渲染树输出为完整的 HTML 页面。
func (d *Document) WriteHTML(w io.Writer) error {
	if err := pageTemplate.Execute(w, d); err != nil {
		return fmt.Errorf("execute visual template: %w", err)
	}
	return nil
}

func (d *Document) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
