package sections

import (
	"strings"

	"resumeKit/internal/resume"
)

const (
	defaultSkillCategory = "Other"
	presentLabel         = "Present"
)

// Order 把文档映射成有序分区列表。纯函数：不修改 doc，相同输入得到相同输出。
// 分区顺序固定；集合为空或被隐藏的分区整体省略，不输出空标题。
func Order(doc resume.Document) List {
	list := List{Header: header(doc.PersonalInfo)}
	vis := doc.Visibility

	add := func(s Section, ok bool) {
		if ok {
			list.Sections = append(list.Sections, s)
		}
	}

	if vis.Shows(resume.VisibleSummary) {
		add(summary(doc))
	}
	if vis.Shows(resume.VisibleSkills) {
		add(coreCompetencies(doc.Skills))
	}
	add(experience(doc))
	if vis.Shows(resume.VisibleEducation) {
		add(education(doc.Education))
	}
	if vis.Shows(resume.VisibleSkills) {
		add(technicalSkills(doc.Skills))
		add(softSkills(doc.Skills))
	}
	if vis.Shows(resume.VisibleCertifications) {
		add(certifications(doc.Certifications))
	}
	if vis.Shows(resume.VisibleLanguages) {
		add(languages(doc.Languages))
	}
	if vis.Shows(resume.VisibleReferences) {
		add(references(doc.References))
	}
	return list
}

func header(p *resume.PersonalInfo) *Header {
	if p.IsEmpty() {
		return nil
	}
	h := &Header{Name: p.FullName, Headline: p.Title, Location: p.Location}
	h.Contact = nonEmpty(p.Phone, p.Email)
	for _, l := range []Link{
		{Label: "LinkedIn", URL: p.LinkedIn},
		{Label: "Website", URL: p.Website},
		{Label: "GitHub", URL: p.GitHub},
	} {
		if l.URL != "" {
			h.Links = append(h.Links, l)
		}
	}
	return h
}

func summary(doc resume.Document) (Section, bool) {
	if doc.Summary == "" {
		return Section{}, false
	}
	return Section{Kind: KindSummary, Title: TitleSummary, Text: doc.Summary}, true
}

func coreCompetencies(skills []resume.Skill) (Section, bool) {
	if len(skills) == 0 {
		return Section{}, false
	}
	n := min(len(skills), CoreCompetencyLimit)
	items := make([]string, 0, n)
	for _, s := range skills[:n] {
		items = append(items, s.Name)
	}
	return Section{Kind: KindCoreCompetencies, Title: TitleCoreCompetencies, Items: items}, true
}

// experience 工作经历在前、项目在后，共用一个标题；标题由 experience_type 决定。
func experience(doc resume.Document) (Section, bool) {
	s := Section{Kind: KindExperience, Title: TitleWorkExperience}
	if doc.ExperienceType == resume.ExperienceProject {
		s.Title = TitleProjectExperience
	}
	if doc.Visibility.Shows(resume.VisibleExperience) {
		for _, e := range doc.Experience {
			s.Entries = appendEntry(s.Entries, experienceEntry(e))
		}
	}
	if doc.Visibility.Shows(resume.VisibleProjects) {
		for _, p := range doc.Projects {
			s.Entries = appendEntry(s.Entries, projectEntry(p))
		}
	}
	return s, len(s.Entries) > 0
}

func experienceEntry(e resume.Experience) Entry {
	entry := Entry{
		Kind:       EntryExperience,
		Heading:    e.Position,
		Subheading: joinNonEmpty(", ", e.Company, e.Location),
		Period:     dateRange(e.StartDate, e.EndDate, e.Current, resume.Date.MonthYear),
	}
	entry.Bullets = nonEmpty(e.Description)
	entry.Bullets = append(entry.Bullets, e.Achievements...)
	return entry
}

func projectEntry(p resume.Project) Entry {
	entry := Entry{
		Kind:    EntryProject,
		Heading: p.Name,
		Period:  projectRange(p.StartDate, p.EndDate),
		Bullets: nonEmpty(p.Description),
	}
	if len(p.Technologies) > 0 {
		entry.Bullets = append(entry.Bullets, "Technologies: "+strings.Join(p.Technologies, ", "))
	}
	if p.URL != "" {
		entry.Lines = append(entry.Lines, "URL: "+p.URL)
	}
	if p.RepositoryURL != "" {
		entry.Lines = append(entry.Lines, "Repository: "+p.RepositoryURL)
	}
	return entry
}

// projectRange 项目没有 current 标记：只有开始日期时视为进行中。
func projectRange(start, end *resume.Date) string {
	if start != nil && end == nil {
		return start.MonthYear() + " - " + presentLabel
	}
	return dateRange(start, end, false, resume.Date.MonthYear)
}

func education(items []resume.Education) (Section, bool) {
	s := Section{Kind: KindEducation, Title: TitleEducation}
	for _, e := range items {
		end := e.GraduationDate
		if end == nil {
			end = e.EndDate
		}
		entry := Entry{
			Kind:       EntryEducation,
			Heading:    degreeLine(e.Degree, e.FieldOfStudy),
			Subheading: joinNonEmpty(" - ", e.Institution, e.Location),
			Period:     dateRange(e.StartDate, end, e.Current && e.GraduationDate == nil, resume.Date.YearString),
		}
		if e.GPA != "" {
			entry.Lines = append(entry.Lines, "GPA: "+e.GPA)
		}
		entry.Lines = append(entry.Lines, nonEmpty(e.Description)...)
		s.Entries = appendEntry(s.Entries, entry)
	}
	return s, len(s.Entries) > 0
}

func degreeLine(degree, field string) string {
	switch {
	case degree != "" && field != "":
		return degree + " in " + field
	case degree != "":
		return degree
	default:
		return field
	}
}

// technicalSkills 排除分类恰为 "Soft Skills" 的技能，其余按分类首次出现的顺序分组。
func technicalSkills(skills []resume.Skill) (Section, bool) {
	var groups []SkillGroup
	index := map[string]int{}
	for _, sk := range skills {
		if sk.IsSoft() {
			continue
		}
		cat := sk.Category
		if cat == "" {
			cat = defaultSkillCategory
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, SkillGroup{Category: cat})
		}
		groups[i].Skills = append(groups[i].Skills, sk.Name)
	}
	if len(groups) == 0 {
		return Section{}, false
	}
	return Section{Kind: KindTechnicalSkills, Title: TitleTechnicalSkills, Groups: groups}, true
}

func softSkills(skills []resume.Skill) (Section, bool) {
	var items []string
	for _, sk := range skills {
		if sk.IsSoft() {
			items = append(items, sk.Name)
		}
	}
	if len(items) == 0 {
		return Section{}, false
	}
	return Section{Kind: KindSoftSkills, Title: TitleSoftSkills, Items: items}, true
}

func certifications(items []resume.Certification) (Section, bool) {
	s := Section{Kind: KindCertifications, Title: TitleCertifications}
	for _, c := range items {
		var issued string
		if c.IssueDate != nil {
			issued = c.IssueDate.MonthYear()
		}
		entry := Entry{
			Kind:    EntryCertification,
			Heading: joinNonEmpty(" | ", c.Name, issued, c.IssuingOrganization),
			Lines:   nonEmpty(c.Description),
		}
		if c.CredentialID != "" {
			entry.Lines = append(entry.Lines, "Credential ID: "+c.CredentialID)
		}
		if c.ExpiryDate != nil {
			entry.Lines = append(entry.Lines, "Expires: "+c.ExpiryDate.MonthYear())
		}
		if c.CredentialURL != "" {
			link := &Link{Label: LabelCredentialURL, URL: c.CredentialURL}
			if c.HasFileCredential() {
				link.Label = LabelViewCertificate
				link.FileBacked = true
			}
			entry.Link = link
		}
		s.Entries = appendEntry(s.Entries, entry)
	}
	return s, len(s.Entries) > 0
}

func languages(items []resume.Language) (Section, bool) {
	if len(items) == 0 {
		return Section{}, false
	}
	out := make([]string, 0, len(items))
	for _, l := range items {
		if l.Proficiency == "" {
			out = append(out, l.Name)
			continue
		}
		out = append(out, l.Name+" ("+string(l.Proficiency)+")")
	}
	return Section{Kind: KindLanguages, Title: TitleLanguages, Items: out}, true
}

func references(items []resume.Reference) (Section, bool) {
	s := Section{Kind: KindReferences, Title: TitleReferences}
	for _, r := range items {
		entry := Entry{
			Kind:    EntryReference,
			Heading: r.Name,
			Lines:   nonEmpty(r.Position, r.Company),
		}
		if r.Relationship != "" {
			entry.Lines = append(entry.Lines, "Relationship: "+r.Relationship)
		}
		if r.Phone != "" {
			entry.Lines = append(entry.Lines, "Tel: "+r.Phone)
		}
		if r.Email != "" {
			entry.Lines = append(entry.Lines, "Email: "+r.Email)
		}
		s.Entries = appendEntry(s.Entries, entry)
	}
	return s, len(s.Entries) > 0
}

// dateRange 只拼接存在的部分，从不输出孤立的分隔符。
func dateRange(start, end *resume.Date, current bool, format func(resume.Date) string) string {
	var right string
	switch {
	case current:
		right = presentLabel
	case end != nil:
		right = format(*end)
	}
	if start == nil {
		return right
	}
	if right == "" {
		return format(*start)
	}
	return format(*start) + " - " + right
}

func appendEntry(entries []Entry, e Entry) []Entry {
	if e.isBlank() {
		return entries
	}
	return append(entries, e)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonEmpty(values...), sep)
}
