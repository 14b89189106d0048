package resume

// Document 是一份简历在内存中的规范表示，与任何渲染目标无关。
// 所有字段都已经过 Normalize 处理：字符串已 trim、日期要么有效要么为 nil、
// 各分区按 SortOrder 稳定排序。
type Document struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Summary        string         `json:"summary"`
	Template       Template       `json:"template_id"`
	ColorTheme     ColorTheme     `json:"color_theme"`
	Font           Font           `json:"font_family"`
	Layout         Layout         `json:"layout"`
	ExperienceType ExperienceType `json:"experience_type"`
	PersonalInfo   *PersonalInfo  `json:"personal_info,omitempty"`
	Experience     []Experience   `json:"experience"`
	Education      []Education    `json:"education"`
	Skills         []Skill        `json:"skills"`
	Projects       []Project      `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language     `json:"languages"`
	References     []Reference    `json:"references"`
	Visibility     Visibility     `json:"section_visibility"`
}

// PersonalInfo 每份简历至多一条。
type PersonalInfo struct {
	FullName string `json:"full_name,omitempty"`
	Title    string `json:"title,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// IsEmpty reports whether every field is blank.
func (p *PersonalInfo) IsEmpty() bool {
	if p == nil {
		return true
	}
	return *p == PersonalInfo{}
}

type Experience struct {
	ID           string   `json:"id"`
	SortOrder    int      `json:"sort_order"`
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location,omitempty"`
	StartDate    *Date    `json:"start_date,omitempty"`
	EndDate      *Date    `json:"end_date,omitempty"`
	Current      bool     `json:"current"`
	Description  string   `json:"description,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

type Education struct {
	ID             string `json:"id"`
	SortOrder      int    `json:"sort_order"`
	Institution    string `json:"institution"`
	Degree         string `json:"degree,omitempty"`
	FieldOfStudy   string `json:"field_of_study,omitempty"`
	Location       string `json:"location,omitempty"`
	StartDate      *Date  `json:"start_date,omitempty"`
	EndDate        *Date  `json:"end_date,omitempty"`
	GraduationDate *Date  `json:"graduation_date,omitempty"`
	Current        bool   `json:"current"`
	GPA            string `json:"gpa,omitempty"`
	Description    string `json:"description,omitempty"`
}

// SoftSkillsCategory 是唯一具有渲染语义的技能分类，大小写敏感。
const SoftSkillsCategory = "Soft Skills"

type Skill struct {
	ID        string `json:"id"`
	SortOrder int    `json:"sort_order"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
}

// IsSoft 仅在分类与 SoftSkillsCategory 完全一致时返回 true。
func (s Skill) IsSoft() bool {
	return s.Category == SoftSkillsCategory
}

type Project struct {
	ID            string   `json:"id"`
	SortOrder     int      `json:"sort_order"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	URL           string   `json:"url,omitempty"`
	RepositoryURL string   `json:"repository_url,omitempty"`
	Technologies  []string `json:"technologies,omitempty"`
	StartDate     *Date    `json:"start_date,omitempty"`
	EndDate       *Date    `json:"end_date,omitempty"`
}

type Certification struct {
	ID                  string `json:"id"`
	SortOrder           int    `json:"sort_order"`
	Name                string `json:"name"`
	IssuingOrganization string `json:"issuing_organization,omitempty"`
	IssueDate           *Date  `json:"issue_date,omitempty"`
	ExpiryDate          *Date  `json:"expiry_date,omitempty"`
	CredentialID        string `json:"credential_id,omitempty"`
	CredentialURL       string `json:"credential_url,omitempty"`
	Description         string `json:"description,omitempty"`
}

// HasFileCredential 判断凭证链接是否指向上传的文件。
func (c Certification) HasFileCredential() bool {
	return IsFileBackedURL(c.CredentialURL)
}

type Language struct {
	ID          string      `json:"id"`
	SortOrder   int         `json:"sort_order"`
	Name        string      `json:"language"`
	Proficiency Proficiency `json:"proficiency,omitempty"`
}

type Reference struct {
	ID           string `json:"id"`
	SortOrder    int    `json:"sort_order"`
	Name         string `json:"name"`
	Position     string `json:"position,omitempty"`
	Company      string `json:"company,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Relationship string `json:"relationship,omitempty"`
}
