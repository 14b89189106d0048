package resume

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RawDocument 是各写入路径（数据库行、导入 JSON）进入核心前的宽松形态。
// 日期是原始字符串，technologies/achievements 可能是逗号拼接的字符串或数组。
type RawDocument struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Summary        string             `json:"summary"`
	TemplateID     string             `json:"template_id"`
	ColorTheme     string             `json:"color_theme"`
	FontFamily     string             `json:"font_family"`
	Layout         string             `json:"layout"`
	ExperienceType string             `json:"experience_type"`
	PersonalInfo   *PersonalInfo      `json:"personal_info"`
	Experience     []RawExperience    `json:"experience"`
	Education      []RawEducation     `json:"education"`
	Skills         []Skill            `json:"skills"`
	Projects       []RawProject       `json:"projects"`
	Certifications []RawCertification `json:"certifications"`
	Languages      []RawLanguage      `json:"languages"`
	References     []Reference        `json:"references"`
	Visibility     Visibility         `json:"section_visibility"`
}

type RawExperience struct {
	ID           string     `json:"id"`
	SortOrder    int        `json:"sort_order"`
	Company      string     `json:"company"`
	Position     string     `json:"position"`
	Location     string     `json:"location"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Current      bool       `json:"current"`
	Description  string     `json:"description"`
	Achievements StringList `json:"achievements"`
}

type RawEducation struct {
	ID             string `json:"id"`
	SortOrder      int    `json:"sort_order"`
	Institution    string `json:"institution"`
	Degree         string `json:"degree"`
	FieldOfStudy   string `json:"field_of_study"`
	Location       string `json:"location"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	GraduationDate string `json:"graduation_date"`
	Current        bool   `json:"current"`
	GPA            string `json:"gpa"`
	Description    string `json:"description"`
}

type RawProject struct {
	ID            string     `json:"id"`
	SortOrder     int        `json:"sort_order"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	URL           string     `json:"url"`
	RepositoryURL string     `json:"repository_url"`
	Technologies  StringList `json:"technologies"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
}

type RawCertification struct {
	ID                  string `json:"id"`
	SortOrder           int    `json:"sort_order"`
	Name                string `json:"name"`
	IssuingOrganization string `json:"issuing_organization"`
	IssueDate           string `json:"issue_date"`
	ExpiryDate          string `json:"expiry_date"`
	CredentialID        string `json:"credential_id"`
	CredentialURL       string `json:"credential_url"`
	Description         string `json:"description"`
}

type RawLanguage struct {
	ID          string `json:"id"`
	SortOrder   int    `json:"sort_order"`
	Name        string `json:"language"`
	Proficiency string `json:"proficiency"`
}

// StringList 同时接受 JSON 数组与逗号分隔字符串两种写法。
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode string list: %w", err)
		}
		*l = cleanList(items)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	*l = SplitList(joined)
	return nil
}

// SplitList 拆分逗号分隔的文本并丢弃空项。
func SplitList(joined string) []string {
	return cleanList(strings.Split(joined, ","))
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
