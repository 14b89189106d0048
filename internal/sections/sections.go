// Package sections 决定简历各分区的顺序、取舍与展示文本。
// 三个渲染器都只消费 Order 的结果，不自行推导顺序。
package sections

import "strings"

type Kind string

const (
	KindSummary          Kind = "summary"
	KindCoreCompetencies Kind = "core_competencies"
	KindExperience       Kind = "experience"
	KindEducation        Kind = "education"
	KindTechnicalSkills  Kind = "technical_skills"
	KindSoftSkills       Kind = "soft_skills"
	KindCertifications   Kind = "certifications"
	KindLanguages        Kind = "languages"
	KindReferences       Kind = "references"
)

const (
	TitleSummary           = "PROFESSIONAL SUMMARY"
	TitleCoreCompetencies  = "CORE COMPETENCIES"
	TitleWorkExperience    = "WORK EXPERIENCE"
	TitleProjectExperience = "PROJECT EXPERIENCE"
	TitleEducation         = "EDUCATION"
	TitleTechnicalSkills   = "TECHNICAL SKILLS"
	TitleSoftSkills        = "SOFT SKILLS"
	TitleCertifications    = "ACHIEVEMENTS & CERTIFICATIONS"
	TitleLanguages         = "LANGUAGES"
	TitleReferences        = "REFEREES"
)

// CoreCompetencyLimit 核心能力最多展示的技能数，超出部分静默截断。
const CoreCompetencyLimit = 12

// InlineSeparator 连接行内列表（核心能力、软技能、语言）。
const InlineSeparator = " • "

// List 是一次排序的完整结果。
type List struct {
	Header   *Header   `json:"header,omitempty"`
	Sections []Section `json:"sections"`
}

// Titles 返回分区标题序列。
func (l List) Titles() []string {
	out := make([]string, 0, len(l.Sections))
	for _, s := range l.Sections {
		out = append(out, s.Title)
	}
	return out
}

// Find 按类型查找分区。
func (l List) Find(kind Kind) (Section, bool) {
	for _, s := range l.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}

// Header 是个人信息区，每个字段都已去掉空值。
type Header struct {
	Name     string `json:"name,omitempty"`
	Headline string `json:"headline,omitempty"`
	Location string `json:"location,omitempty"`
	// Contact 依次为电话、邮箱。
	Contact []string `json:"contact,omitempty"`
	Links   []Link   `json:"links,omitempty"`
}

// ContactLine 形如 "+1 555 | jane@example.com"。
func (h Header) ContactLine() string {
	return strings.Join(h.Contact, " | ")
}

// LinksLine 形如 "LinkedIn: x | Website: y | GitHub: z"。
func (h Header) LinksLine() string {
	parts := make([]string, 0, len(h.Links))
	for _, l := range h.Links {
		parts = append(parts, l.Text())
	}
	return strings.Join(parts, " | ")
}

// Lines 按固定顺序返回头部的全部非空文本行。
func (h Header) Lines() []string {
	var out []string
	for _, s := range []string{h.Name, h.Headline, h.Location, h.ContactLine(), h.LinksLine()} {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

type Section struct {
	Kind  Kind   `json:"kind"`
	Title string `json:"title"`
	// Text 用于摘要段落。
	Text string `json:"text,omitempty"`
	// Items 用于行内列表。
	Items   []string     `json:"items,omitempty"`
	Groups  []SkillGroup `json:"groups,omitempty"`
	Entries []Entry      `json:"entries,omitempty"`
}

// InlineText 把 Items 拼成一行。
func (s Section) InlineText() string {
	return strings.Join(s.Items, InlineSeparator)
}

type SkillGroup struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

// Line 形如 "Programming: Go, Rust"。
func (g SkillGroup) Line() string {
	return g.Category + ": " + strings.Join(g.Skills, ", ")
}

type EntryKind string

const (
	EntryExperience    EntryKind = "experience"
	EntryProject       EntryKind = "project"
	EntryEducation     EntryKind = "education"
	EntryCertification EntryKind = "certification"
	EntryReference     EntryKind = "reference"
)

// Entry 是分区中的一条记录，渲染顺序固定为
// Heading、Subheading、Period、Bullets、Lines、Link。
type Entry struct {
	Kind       EntryKind `json:"kind"`
	Heading    string    `json:"heading,omitempty"`
	Subheading string    `json:"subheading,omitempty"`
	Period     string    `json:"period,omitempty"`
	Bullets    []string  `json:"bullets,omitempty"`
	Lines      []string  `json:"lines,omitempty"`
	Link       *Link     `json:"link,omitempty"`
}

func (e Entry) isBlank() bool {
	return e.Heading == "" && e.Subheading == "" && e.Period == "" &&
		len(e.Bullets) == 0 && len(e.Lines) == 0 && e.Link == nil
}

// Texts 按渲染顺序返回条目的全部文本（项目符号不带前缀）。
func (e Entry) Texts() []string {
	var out []string
	for _, s := range []string{e.Heading, e.Subheading, e.Period} {
		if s != "" {
			out = append(out, s)
		}
	}
	out = append(out, e.Bullets...)
	out = append(out, e.Lines...)
	if e.Link != nil {
		out = append(out, e.Link.Text())
	}
	return out
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	// FileBacked 表示链接指向上传的文件，渲染器只给出查看入口，不内联内容。
	FileBacked bool `json:"file_backed,omitempty"`
}

const (
	LabelViewCertificate = "View certificate"
	LabelCredentialURL   = "Credential URL"
)

// Text 是 ATS 渲染器输出的纯文本形式。
func (l Link) Text() string {
	return l.Label + ": " + l.URL
}
