package flow

import (
	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
)

// BulletPrefix 是条目要点的前缀。
const BulletPrefix = "• "

var (
	colorAccent  = Hex("#1a91f0")
	colorHeading = Hex("#1a202c")
	colorStrong  = Hex("#2d3748")
	colorBody    = Hex("#4a5568")
	colorMuted   = Hex("#718096")
)

var (
	fontName      = Font{Size: 20, Style: Bold, Align: AlignCenter, Color: colorAccent}
	fontHeadline  = Font{Size: 12, Align: AlignCenter, Color: colorBody}
	fontContact   = Font{Size: 10, Align: AlignCenter, Color: colorBody}
	fontLinks     = Font{Size: 9, Align: AlignCenter, Color: colorAccent}
	fontSection   = Font{Size: 14, Style: Bold, Color: colorAccent}
	fontSummary   = Font{Size: 10, Color: colorStrong}
	fontBody      = Font{Size: 10, Color: colorBody}
	fontEntry     = Font{Size: 11, Style: Bold, Color: colorHeading}
	fontMinorHead = Font{Size: 10, Style: Bold, Color: colorStrong}
	fontPeriod    = Font{Size: 9, Style: Italic, Color: colorMuted}
	fontDetail    = Font{Size: 9, Color: colorBody}
	fontLink      = Font{Size: 9, Color: colorAccent}
)

// Document 是排版结果：按输出顺序排列的绘制指令与总页数。
type Document struct {
	Title string
	Pages int
	Ops   []Op
}

// Texts 按输出顺序返回全部文本行。
func (d *Document) Texts() []string {
	var out []string
	for _, op := range d.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Render 按排序结果生成绝对定位的文本流。
func Render(doc resume.Document, list sections.List, m Measurer) (*Document, error) {
	l := newLayout(m)
	if list.Header != nil {
		writeHeader(l, *list.Header)
	}
	for _, s := range list.Sections {
		writeSection(l, s)
	}
	if l.err != nil {
		return nil, l.err
	}
	return &Document{Title: doc.Title, Pages: l.pages, Ops: l.ops}, nil
}

func writeHeader(l *layout, h sections.Header) {
	spaced := func(text string, f Font) {
		if text == "" {
			return
		}
		l.addText(text, f)
		l.addSpace(5)
	}
	spaced(h.Name, fontName)
	spaced(h.Headline, fontHeadline)
	spaced(h.Location, fontContact)
	spaced(h.ContactLine(), fontContact)
	l.addText(h.LinksLine(), fontLinks)
}

// addSection 输出分区标题：间距、横线、粗体彩色标题、间距。
func addSection(l *layout, title string) {
	l.addSpace(15)
	l.addRule(2, colorAccent)
	l.addSpace(5)
	l.addText(title, fontSection)
	l.addSpace(10)
}

func writeSection(l *layout, s sections.Section) {
	addSection(l, s.Title)
	switch s.Kind {
	case sections.KindSummary:
		l.addText(s.Text, fontSummary)
	case sections.KindCoreCompetencies:
		l.addText(s.InlineText(), fontSummary)
	case sections.KindTechnicalSkills:
		for _, g := range s.Groups {
			l.addText(g.Line(), fontBody)
			l.addSpace(5)
		}
	case sections.KindSoftSkills, sections.KindLanguages:
		l.addText(s.InlineText(), fontBody)
	default:
		for i, e := range s.Entries {
			if i > 0 {
				l.addSpace(entryGap(e.Kind))
			}
			writeEntry(l, e)
		}
	}
}

func entryGap(k sections.EntryKind) float64 {
	switch k {
	case sections.EntryExperience, sections.EntryProject:
		return 12
	case sections.EntryCertification:
		return 8
	default:
		return 10
	}
}

func writeEntry(l *layout, e sections.Entry) {
	heading := fontEntry
	lineGap := 3.0
	if e.Kind == sections.EntryCertification || e.Kind == sections.EntryReference {
		heading = fontMinorHead
	}
	if e.Kind == sections.EntryReference {
		lineGap = 2
	}
	if e.Heading != "" {
		l.addText(e.Heading, heading)
		l.addSpace(3)
	}
	if e.Subheading != "" {
		l.addText(e.Subheading, fontBody)
		l.addSpace(3)
	}
	if e.Period != "" {
		l.addText(e.Period, fontPeriod)
		l.addSpace(5)
	}
	for _, b := range e.Bullets {
		l.addText(BulletPrefix+b, fontBody)
		l.addSpace(3)
	}
	for _, line := range e.Lines {
		l.addText(line, fontDetail)
		l.addSpace(lineGap)
	}
	if e.Link != nil {
		l.addText(e.Link.Text(), fontLink)
		l.addSpace(lineGap)
	}
}
