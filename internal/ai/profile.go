// Package ai 调用外部文本生成服务改写简历内容。
// 服务不可用或返回格式错误时使用确定性的兜底建议，调用方不会因此失败。
package ai

import (
	"fmt"
	"strings"

	"resumeKit/internal/resume"
)

// Profile 是发给生成服务的归一化资料。
type Profile struct {
	PersonalInfo resume.PersonalInfo `json:"personal_info"`
	Education    []resume.Education  `json:"education"`
	Experience   []resume.Experience `json:"experience"`
	Skills       []resume.Skill      `json:"skills"`
	Projects     []resume.Project    `json:"projects"`
	Goals        string              `json:"goals,omitempty"`
}

// ProfileFromDocument 从文档快照构造资料。
func ProfileFromDocument(doc resume.Document, goals string) Profile {
	p := Profile{
		Education:  doc.Education,
		Experience: doc.Experience,
		Skills:     doc.Skills,
		Projects:   doc.Projects,
		Goals:      strings.TrimSpace(goals),
	}
	if doc.PersonalInfo != nil {
		p.PersonalInfo = *doc.PersonalInfo
	}
	return p
}

const systemPrompt = "You are a professional resume writer specializing in creating compelling, ATS-friendly resumes. Always respond with valid JSON format."

// buildPrompt 只写入存在的字段。
func buildPrompt(p Profile) string {
	var b strings.Builder
	b.WriteString("You are a professional resume writer. Create a compelling, ATS-friendly resume based on the following information:\n\n")

	b.WriteString("PERSONAL INFORMATION:\n")
	for _, kv := range [][2]string{
		{"Name", p.PersonalInfo.FullName},
		{"Email", p.PersonalInfo.Email},
		{"Phone", p.PersonalInfo.Phone},
		{"Location", p.PersonalInfo.Location},
	} {
		if kv[1] != "" {
			fmt.Fprintf(&b, "%s: %s\n", kv[0], kv[1])
		}
	}

	b.WriteString("\nEDUCATION:\n")
	for _, e := range p.Education {
		fmt.Fprintf(&b, "- %s\n  %s (%s)\n", joinWords(e.Degree, prefixed("in ", e.FieldOfStudy)), e.Institution, span(e.StartDate, e.EndDate, e.Current))
		if e.GPA != "" {
			fmt.Fprintf(&b, "  GPA: %s\n", e.GPA)
		}
		if e.Description != "" {
			fmt.Fprintf(&b, "  %s\n", e.Description)
		}
	}

	b.WriteString("\nWORK EXPERIENCE:\n")
	for _, e := range p.Experience {
		fmt.Fprintf(&b, "- %s at %s\n  %s (%s)\n", e.Position, e.Company, e.Location, span(e.StartDate, e.EndDate, e.Current))
		if e.Description != "" {
			fmt.Fprintf(&b, "  %s\n", e.Description)
		}
		if len(e.Achievements) > 0 {
			fmt.Fprintf(&b, "  %s\n", strings.Join(e.Achievements, ", "))
		}
	}

	b.WriteString("\nSKILLS:\n")
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n")

	b.WriteString("\nPROJECTS:\n")
	for _, pr := range p.Projects {
		fmt.Fprintf(&b, "- %s\n", pr.Name)
		if pr.Description != "" {
			fmt.Fprintf(&b, "  %s\n", pr.Description)
		}
		if len(pr.Technologies) > 0 {
			fmt.Fprintf(&b, "  Technologies: %s\n", strings.Join(pr.Technologies, ", "))
		}
		if pr.URL != "" {
			fmt.Fprintf(&b, "  %s\n", pr.URL)
		}
	}

	goals := p.Goals
	if goals == "" {
		goals = "Not specified"
	}
	fmt.Fprintf(&b, "\nCAREER GOALS:\n%s\n\n", goals)

	b.WriteString(`Please generate:
1. A compelling professional summary (2-3 sentences)
2. Enhanced descriptions for each work experience (quantify achievements where possible)
3. Improved project descriptions
4. Formatted output as JSON with the following structure:
{
  "summary": "Professional summary text",
  "experience": [{"description": "Enhanced description", "achievements": ["Achievement 1"]}],
  "projects": [{"description": "Enhanced description"}]
}

Keep the experience and projects arrays in the same order as the input. Use action verbs and quantify achievements when possible.`)
	return b.String()
}

func span(start, end *resume.Date, current bool) string {
	from := "?"
	if start != nil {
		from = start.String()
	}
	to := "Present"
	if !current && end != nil {
		to = end.String()
	}
	return from + " - " + to
}

func prefixed(prefix, v string) string {
	if v == "" {
		return ""
	}
	return prefix + v
}

func joinWords(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
