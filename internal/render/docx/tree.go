// Package docx 把排序后的分区构造成标题/段落/文字块的结构化文档树，
// 并打包为 WordprocessingML (.docx)。分页交给文字处理软件。
package docx

import (
	"strings"

	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
)

type ParagraphStyle string

const (
	StyleNormal   ParagraphStyle = "Normal"
	StyleHeading1 ParagraphStyle = "Heading1"
	StyleHeading2 ParagraphStyle = "Heading2"
)

type Align string

const (
	AlignLeft   Align = ""
	AlignCenter Align = "center"
)

// 页边距单位为 twip，字号单位为半磅。
const (
	PageMarginTwips  = 720
	accentColor      = "1a91f0"
	sectionRuleSpace = 1
	nameSizeHalfPt   = 36
	titleSizeHalfPt  = 26
)

// BulletPrefix 与文本流 PDF 保持一致。
const BulletPrefix = "• "

type Run struct {
	Text   string
	Bold   bool
	Italic bool
	// SizeHalfPt 为 0 时沿用段落样式的字号。
	SizeHalfPt int
	Color      string
}

// Border 是段落下边框；线宽使用文字处理软件的默认值。
type Border struct {
	Color string
	Space int
}

type Paragraph struct {
	Style         ParagraphStyle
	Align         Align
	SpacingBefore int
	SpacingAfter  int
	BottomBorder  *Border
	Runs          []Run
}

// Text 拼接段落内全部文字块。
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type Document struct {
	Title   string
	Margins int
	Blocks  []Paragraph
}

// Texts 返回全部非空段落文本，顺序即阅读顺序。
func (d *Document) Texts() []string {
	var out []string
	for _, p := range d.Blocks {
		if t := p.Text(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Headings 返回二级标题序列，即分区标题。
func (d *Document) Headings() []string {
	var out []string
	for _, p := range d.Blocks {
		if p.Style == StyleHeading2 {
			out = append(out, p.Text())
		}
	}
	return out
}

type builder struct {
	blocks []Paragraph
}

func (b *builder) add(p Paragraph) {
	if p.Style == "" {
		p.Style = StyleNormal
	}
	b.blocks = append(b.blocks, p)
}

func (b *builder) text(text string, after int, align Align) {
	if text == "" {
		return
	}
	b.add(Paragraph{Align: align, SpacingAfter: after, Runs: []Run{{Text: text}}})
}

func (b *builder) run(r Run, after int) {
	if r.Text == "" {
		return
	}
	b.add(Paragraph{SpacingAfter: after, Runs: []Run{r}})
}

// Render 构建结构化文档树。
func Render(doc resume.Document, list sections.List) *Document {
	b := &builder{}
	if h := list.Header; h != nil {
		if h.Name != "" {
			b.add(Paragraph{
				Style: StyleHeading1, Align: AlignCenter, SpacingAfter: 100,
				Runs: []Run{{Text: h.Name, Bold: true, Color: accentColor, SizeHalfPt: nameSizeHalfPt}},
			})
		}
		b.text(h.Headline, 50, AlignCenter)
		b.text(h.Location, 50, AlignCenter)
		b.text(h.ContactLine(), 50, AlignCenter)
		b.text(h.LinksLine(), 200, AlignCenter)
	}
	for _, s := range list.Sections {
		writeSection(b, s)
	}
	return &Document{Title: doc.Title, Margins: PageMarginTwips, Blocks: b.blocks}
}

func sectionHeading(title string) Paragraph {
	return Paragraph{
		Style:         StyleHeading2,
		SpacingBefore: 300,
		SpacingAfter:  200,
		BottomBorder:  &Border{Color: accentColor, Space: sectionRuleSpace},
		Runs:          []Run{{Text: title, Bold: true, Color: accentColor, SizeHalfPt: titleSizeHalfPt}},
	}
}

func writeSection(b *builder, s sections.Section) {
	b.add(sectionHeading(s.Title))
	switch s.Kind {
	case sections.KindSummary:
		b.text(s.Text, 200, AlignLeft)
	case sections.KindCoreCompetencies, sections.KindSoftSkills, sections.KindLanguages:
		b.text(s.InlineText(), 200, AlignLeft)
	case sections.KindTechnicalSkills:
		for _, g := range s.Groups {
			b.add(Paragraph{SpacingAfter: 100, Runs: []Run{
				{Text: g.Category + ": ", Bold: true},
				{Text: strings.Join(g.Skills, ", ")},
			}})
		}
	default:
		for _, e := range s.Entries {
			writeEntry(b, e)
		}
	}
}

func writeEntry(b *builder, e sections.Entry) {
	start := len(b.blocks)
	minor := e.Kind == sections.EntryCertification || e.Kind == sections.EntryReference
	lineAfter := 50
	if e.Kind == sections.EntryReference {
		lineAfter = 30
	}

	heading := Run{Text: e.Heading, Bold: true}
	if !minor {
		heading.SizeHalfPt = 22
	}
	b.run(heading, 50)
	b.text(e.Subheading, 50, AlignLeft)
	b.run(Run{Text: e.Period, Italic: true, SizeHalfPt: 18}, 100)
	for _, bullet := range e.Bullets {
		b.text(BulletPrefix+bullet, 50, AlignLeft)
	}
	for _, line := range e.Lines {
		b.text(line, lineAfter, AlignLeft)
	}
	if e.Link != nil {
		b.text(e.Link.Text(), lineAfter, AlignLeft)
	}
	// 条目之间的间距放在条目最后一段上
	if n := len(b.blocks); n > start {
		b.blocks[n-1].SpacingAfter = 150
	}
}
