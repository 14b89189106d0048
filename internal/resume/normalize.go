package resume

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldIssue 描述一个在归一化时被丢弃或回落到默认值的字段。
// 导出不会因此失败，调用方可以把它展示为提示。
type FieldIssue struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (i FieldIssue) String() string {
	return fmt.Sprintf("%s=%q: %s", i.Field, i.Value, i.Reason)
}

type normalizer struct {
	issues []FieldIssue
}

func (n *normalizer) report(field, value, reason string) {
	n.issues = append(n.issues, FieldIssue{Field: field, Value: value, Reason: reason})
}

func (n *normalizer) date(field, raw string) *Date {
	d, err := ParseDate(raw)
	if err != nil {
		if !errors.Is(err, errEmptyDate) {
			n.report(field, raw, "unparseable date")
		}
		return nil
	}
	return &d
}

// Normalize 是所有写入路径进入核心的唯一入口：
// 去掉首尾空白，日期要么有效要么为 nil，technologies 统一成列表，
// current 为真时丢弃结束日期，各分区按 SortOrder 稳定排序。
// 内容问题只记录为 FieldIssue，不会返回错误。
func Normalize(raw RawDocument) (Document, []FieldIssue) {
	n := &normalizer{}
	doc := Document{
		ID:      strings.TrimSpace(raw.ID),
		Title:   strings.TrimSpace(raw.Title),
		Summary: strings.TrimSpace(raw.Summary),
	}

	var ok bool
	if doc.Template, ok = parseTemplate(raw.TemplateID); !ok {
		n.report("template_id", raw.TemplateID, "unknown template, using "+string(doc.Template))
	}
	if doc.ColorTheme, ok = parseColorTheme(raw.ColorTheme); !ok {
		n.report("color_theme", raw.ColorTheme, "unknown color theme, using "+string(doc.ColorTheme))
	}
	if doc.Font, ok = parseFont(raw.FontFamily); !ok {
		n.report("font_family", raw.FontFamily, "unknown font, using "+string(doc.Font))
	}
	if doc.Layout, ok = parseLayout(raw.Layout); !ok {
		n.report("layout", raw.Layout, "unknown layout, using "+string(doc.Layout))
	}
	if doc.ExperienceType, ok = parseExperienceType(raw.ExperienceType); !ok {
		n.report("experience_type", raw.ExperienceType, "unknown experience type, using "+string(doc.ExperienceType))
	}

	doc.PersonalInfo = normalizePersonalInfo(raw.PersonalInfo)

	for i, r := range raw.Experience {
		prefix := fmt.Sprintf("experience[%d].", i)
		e := Experience{
			ID:           strings.TrimSpace(r.ID),
			SortOrder:    r.SortOrder,
			Company:      strings.TrimSpace(r.Company),
			Position:     strings.TrimSpace(r.Position),
			Location:     strings.TrimSpace(r.Location),
			StartDate:    n.date(prefix+"start_date", r.StartDate),
			Current:      r.Current,
			Description:  strings.TrimSpace(r.Description),
			Achievements: cleanList(r.Achievements),
		}
		if !e.Current {
			e.EndDate = n.date(prefix+"end_date", r.EndDate)
		}
		doc.Experience = append(doc.Experience, e)
	}
	sortBy(doc.Experience, func(e Experience) int { return e.SortOrder })

	for i, r := range raw.Education {
		prefix := fmt.Sprintf("education[%d].", i)
		e := Education{
			ID:             strings.TrimSpace(r.ID),
			SortOrder:      r.SortOrder,
			Institution:    strings.TrimSpace(r.Institution),
			Degree:         strings.TrimSpace(r.Degree),
			FieldOfStudy:   strings.TrimSpace(r.FieldOfStudy),
			Location:       strings.TrimSpace(r.Location),
			StartDate:      n.date(prefix+"start_date", r.StartDate),
			GraduationDate: n.date(prefix+"graduation_date", r.GraduationDate),
			Current:        r.Current,
			GPA:            strings.TrimSpace(r.GPA),
			Description:    strings.TrimSpace(r.Description),
		}
		if !e.Current {
			e.EndDate = n.date(prefix+"end_date", r.EndDate)
		}
		doc.Education = append(doc.Education, e)
	}
	sortBy(doc.Education, func(e Education) int { return e.SortOrder })

	for _, r := range raw.Skills {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		doc.Skills = append(doc.Skills, Skill{
			ID:        strings.TrimSpace(r.ID),
			SortOrder: r.SortOrder,
			Name:      name,
			// 分类只去空白，不改大小写："soft skills" 仍是技术技能。
			Category: strings.TrimSpace(r.Category),
		})
	}
	sortBy(doc.Skills, func(s Skill) int { return s.SortOrder })

	for i, r := range raw.Projects {
		prefix := fmt.Sprintf("projects[%d].", i)
		doc.Projects = append(doc.Projects, Project{
			ID:            strings.TrimSpace(r.ID),
			SortOrder:     r.SortOrder,
			Name:          strings.TrimSpace(r.Name),
			Description:   strings.TrimSpace(r.Description),
			URL:           strings.TrimSpace(r.URL),
			RepositoryURL: strings.TrimSpace(r.RepositoryURL),
			Technologies:  cleanList(r.Technologies),
			StartDate:     n.date(prefix+"start_date", r.StartDate),
			EndDate:       n.date(prefix+"end_date", r.EndDate),
		})
	}
	sortBy(doc.Projects, func(p Project) int { return p.SortOrder })

	for i, r := range raw.Certifications {
		prefix := fmt.Sprintf("certifications[%d].", i)
		doc.Certifications = append(doc.Certifications, Certification{
			ID:                  strings.TrimSpace(r.ID),
			SortOrder:           r.SortOrder,
			Name:                strings.TrimSpace(r.Name),
			IssuingOrganization: strings.TrimSpace(r.IssuingOrganization),
			IssueDate:           n.date(prefix+"issue_date", r.IssueDate),
			ExpiryDate:          n.date(prefix+"expiry_date", r.ExpiryDate),
			CredentialID:        strings.TrimSpace(r.CredentialID),
			CredentialURL:       strings.TrimSpace(r.CredentialURL),
			Description:         strings.TrimSpace(r.Description),
		})
	}
	sortBy(doc.Certifications, func(c Certification) int { return c.SortOrder })

	for i, r := range raw.Languages {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		p, known := parseProficiency(r.Proficiency)
		if !known {
			n.report(fmt.Sprintf("languages[%d].proficiency", i), r.Proficiency, "unknown proficiency")
		}
		doc.Languages = append(doc.Languages, Language{
			ID:          strings.TrimSpace(r.ID),
			SortOrder:   r.SortOrder,
			Name:        name,
			Proficiency: p,
		})
	}
	sortBy(doc.Languages, func(l Language) int { return l.SortOrder })

	for _, r := range raw.References {
		ref := Reference{
			ID:           strings.TrimSpace(r.ID),
			SortOrder:    r.SortOrder,
			Name:         strings.TrimSpace(r.Name),
			Position:     strings.TrimSpace(r.Position),
			Company:      strings.TrimSpace(r.Company),
			Email:        strings.TrimSpace(r.Email),
			Phone:        strings.TrimSpace(r.Phone),
			Relationship: strings.TrimSpace(r.Relationship),
		}
		doc.References = append(doc.References, ref)
	}
	sortBy(doc.References, func(r Reference) int { return r.SortOrder })

	if len(raw.Visibility) > 0 {
		doc.Visibility = make(Visibility, len(raw.Visibility))
		for k, v := range raw.Visibility {
			doc.Visibility[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}

	return doc, n.issues
}

func normalizePersonalInfo(p *PersonalInfo) *PersonalInfo {
	if p == nil {
		return nil
	}
	out := &PersonalInfo{
		FullName: strings.TrimSpace(p.FullName),
		Title:    strings.TrimSpace(p.Title),
		Email:    strings.TrimSpace(p.Email),
		Phone:    strings.TrimSpace(p.Phone),
		Location: strings.TrimSpace(p.Location),
		Website:  strings.TrimSpace(p.Website),
		LinkedIn: strings.TrimSpace(p.LinkedIn),
		GitHub:   strings.TrimSpace(p.GitHub),
	}
	if out.IsEmpty() {
		return nil
	}
	return out
}

func sortBy[T any](items []T, key func(T) int) {
	sort.SliceStable(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}
