package visual

import "resumeKit/internal/resume"

// Style 是模板、配色、字体解析后的样式变量，输出为 CSS 自定义属性。
type Style struct {
	Template  resume.Template
	Accent    string
	Text      string
	Muted     string
	Rule      string
	FontStack string
	// HeaderBand 为 true 时页眉使用强调色底色。
	HeaderBand bool
	// CenterHeader 为 true 时页眉居中。
	CenterHeader bool
	// SidebarFill 是双栏布局侧栏的背景色。
	SidebarFill string
	// HeadingCase 对应 text-transform。
	HeadingCase string
}

var palette = map[resume.ColorTheme]string{
	resume.ThemeBlue:   "#667eea",
	resume.ThemeGreen:  "#48bb78",
	resume.ThemePurple: "#9f7aea",
	resume.ThemeRed:    "#f56565",
	resume.ThemeGray:   "#4a5568",
}

var fontStacks = map[resume.Font]string{
	resume.FontInter:        "'Inter', 'Helvetica Neue', Arial, sans-serif",
	resume.FontRoboto:       "'Roboto', 'Helvetica Neue', Arial, sans-serif",
	resume.FontLato:         "'Lato', 'Helvetica Neue', Arial, sans-serif",
	resume.FontGeorgia:      "Georgia, 'Times New Roman', serif",
	resume.FontMerriweather: "'Merriweather', Georgia, serif",
	resume.FontTimes:        "'Times New Roman', Times, serif",
}

// StyleFor 解析文档的样式变量；未知取值回落到默认模板与配色。
func StyleFor(doc resume.Document) Style {
	accent, ok := palette[doc.ColorTheme]
	if !ok {
		accent = palette[resume.ThemeBlue]
	}
	font, ok := fontStacks[doc.Font]
	if !ok {
		font = fontStacks[resume.FontInter]
	}
	s := Style{
		Template:    doc.Template,
		Accent:      accent,
		Text:        "#1a202c",
		Muted:       "#718096",
		Rule:        accent,
		FontStack:   font,
		SidebarFill: "#f7fafc",
		HeadingCase: "uppercase",
	}
	switch doc.Template {
	case resume.TemplateClassic:
		s.CenterHeader = true
		s.Rule = "#2d3748"
	case resume.TemplateMinimal:
		s.Rule = "#e2e8f0"
		s.HeadingCase = "none"
	case resume.TemplateCreative:
		s.HeaderBand = true
		s.SidebarFill = accent + "1a"
	case resume.TemplateExecutive:
		s.HeaderBand = true
		s.CenterHeader = true
		s.Accent = "#1a202c"
		s.Rule = accent
	case resume.TemplateTechnical:
		s.FontStack = "'JetBrains Mono', 'Fira Code', Menlo, monospace"
	default:
		s.Template = resume.TemplateModern
		s.HeaderBand = true
	}
	return s
}
