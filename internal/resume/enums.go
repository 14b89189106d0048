package resume

import "strings"

type Template string

const (
	TemplateModern    Template = "modern"
	TemplateClassic   Template = "classic"
	TemplateMinimal   Template = "minimal"
	TemplateCreative  Template = "creative"
	TemplateExecutive Template = "executive"
	TemplateTechnical Template = "technical"
)

var templates = []Template{
	TemplateModern, TemplateClassic, TemplateMinimal,
	TemplateCreative, TemplateExecutive, TemplateTechnical,
}

type ColorTheme string

const (
	ThemeBlue   ColorTheme = "blue"
	ThemeGreen  ColorTheme = "green"
	ThemePurple ColorTheme = "purple"
	ThemeRed    ColorTheme = "red"
	ThemeGray   ColorTheme = "gray"
)

var themes = []ColorTheme{ThemeBlue, ThemeGreen, ThemePurple, ThemeRed, ThemeGray}

type Font string

const (
	FontInter        Font = "inter"
	FontRoboto       Font = "roboto"
	FontLato         Font = "lato"
	FontGeorgia      Font = "georgia"
	FontMerriweather Font = "merriweather"
	FontTimes        Font = "times"
)

var fonts = []Font{FontInter, FontRoboto, FontLato, FontGeorgia, FontMerriweather, FontTimes}

type Layout string

const (
	LayoutOneColumn Layout = "one-column"
	LayoutTwoColumn Layout = "two-column"
)

// ExperienceType 控制经历分区的标题。
type ExperienceType string

const (
	ExperienceWork    ExperienceType = "work"
	ExperienceProject ExperienceType = "project"
)

type Proficiency string

const (
	ProficiencyNative       Proficiency = "Native"
	ProficiencyFluent       Proficiency = "Fluent"
	ProficiencyAdvanced     Proficiency = "Advanced"
	ProficiencyIntermediate Proficiency = "Intermediate"
	ProficiencyBasic        Proficiency = "Basic"
)

var proficiencies = []Proficiency{
	ProficiencyNative, ProficiencyFluent, ProficiencyAdvanced,
	ProficiencyIntermediate, ProficiencyBasic,
}

func parseTemplate(raw string) (Template, bool) {
	return matchEnum(raw, templates, TemplateModern)
}

func parseColorTheme(raw string) (ColorTheme, bool) {
	return matchEnum(raw, themes, ThemeBlue)
}

func parseFont(raw string) (Font, bool) {
	return matchEnum(raw, fonts, FontInter)
}

func parseLayout(raw string) (Layout, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return LayoutOneColumn, true
	case "one-column", "single", "single-column", "one_column":
		return LayoutOneColumn, true
	case "two-column", "two_column", "split":
		return LayoutTwoColumn, true
	}
	return LayoutOneColumn, false
}

func parseExperienceType(raw string) (ExperienceType, bool) {
	return matchEnum(raw, []ExperienceType{ExperienceWork, ExperienceProject}, ExperienceWork)
}

// parseProficiency 大小写不敏感；未知取值保留原文，交由渲染层原样输出。
func parseProficiency(raw string) (Proficiency, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	for _, p := range proficiencies {
		if strings.EqualFold(raw, string(p)) {
			return p, true
		}
	}
	return Proficiency(raw), false
}

// matchEnum 空值返回默认值且视为合法，未知值回落到默认值并报告。
func matchEnum[T ~string](raw string, allowed []T, fallback T) (T, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return fallback, true
	}
	for _, a := range allowed {
		if string(a) == v {
			return a, true
		}
	}
	return fallback, false
}
