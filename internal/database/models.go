package database

import (
	"time"

	"gorm.io/datatypes"
)

// Resume 是简历主表，各分区按 resume_id 存放在独立的表中。
// 用户由外部身份服务管理，这里只保存其 ID。
type Resume struct {
	ID             string `gorm:"primaryKey;size:36"`
	UserID         string `gorm:"index;size:64"`
	Title          string `gorm:"size:255"`
	Summary        string `gorm:"type:text"`
	TemplateID     string `gorm:"size:32"`
	ColorTheme     string `gorm:"size:32"`
	FontFamily     string `gorm:"size:32"`
	Layout         string `gorm:"size:32"`
	ExperienceType string `gorm:"size:32"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PersonalInfo 每份简历至多一行。
type PersonalInfo struct {
	ID          string `gorm:"primaryKey;size:36"`
	ResumeID    string `gorm:"uniqueIndex;size:36"`
	FullName    string `gorm:"size:255"`
	Title       string `gorm:"size:255"`
	Email       string `gorm:"size:255"`
	Phone       string `gorm:"size:64"`
	Location    string `gorm:"size:255"`
	Website     string `gorm:"size:512"`
	LinkedInURL string `gorm:"column:linkedin_url;size:512"`
	GitHubURL   string `gorm:"column:github_url;size:512"`
}

func (PersonalInfo) TableName() string { return "personal_info" }

type Experience struct {
	ID          string `gorm:"primaryKey;size:36"`
	ResumeID    string `gorm:"index;size:36"`
	SortOrder   int
	Company     string `gorm:"size:255"`
	Position    string `gorm:"size:255"`
	Location    string `gorm:"size:255"`
	StartDate   *time.Time `gorm:"type:date"`
	EndDate     *time.Time `gorm:"type:date"`
	Current     bool
	Description string `gorm:"type:text"`
	// Achievements 历史数据里既有 JSON 数组也有逗号分隔的字符串。
	Achievements datatypes.JSON `gorm:"type:jsonb"`
}

func (Experience) TableName() string { return "experience" }

type Education struct {
	ID             string `gorm:"primaryKey;size:36"`
	ResumeID       string `gorm:"index;size:36"`
	SortOrder      int
	Institution    string     `gorm:"size:255"`
	Degree         string     `gorm:"size:255"`
	FieldOfStudy   string     `gorm:"size:255"`
	Location       string     `gorm:"size:255"`
	StartDate      *time.Time `gorm:"type:date"`
	EndDate        *time.Time `gorm:"type:date"`
	GraduationDate *time.Time `gorm:"type:date"`
	Current        bool
	GPA            string `gorm:"column:gpa;size:16"`
	Description    string `gorm:"type:text"`
}

func (Education) TableName() string { return "education" }

type Skill struct {
	ID        string `gorm:"primaryKey;size:36"`
	ResumeID  string `gorm:"index;size:36"`
	SortOrder int
	Name      string `gorm:"size:255"`
	Category  string `gorm:"size:255"`
}

type Project struct {
	ID            string `gorm:"primaryKey;size:36"`
	ResumeID      string `gorm:"index;size:36"`
	SortOrder     int
	Name          string         `gorm:"size:255"`
	Description   string         `gorm:"type:text"`
	URL           string         `gorm:"column:url;size:512"`
	RepositoryURL string         `gorm:"column:repository_url;size:512"`
	Technologies  datatypes.JSON `gorm:"type:jsonb"`
	StartDate     *time.Time     `gorm:"type:date"`
	EndDate       *time.Time     `gorm:"type:date"`
}

type Certification struct {
	ID                  string `gorm:"primaryKey;size:36"`
	ResumeID            string `gorm:"index;size:36"`
	SortOrder           int
	Name                string     `gorm:"size:255"`
	IssuingOrganization string     `gorm:"size:255"`
	IssueDate           *time.Time `gorm:"type:date"`
	ExpiryDate          *time.Time `gorm:"type:date"`
	CredentialID        string     `gorm:"size:255"`
	CredentialURL       string     `gorm:"column:credential_url;size:1024"`
	Description         string     `gorm:"type:text"`
}

type Language struct {
	ID          string `gorm:"primaryKey;size:36"`
	ResumeID    string `gorm:"index;size:36"`
	SortOrder   int
	Language    string `gorm:"size:128"`
	Proficiency string `gorm:"size:32"`
}

type Reference struct {
	ID           string `gorm:"primaryKey;size:36"`
	ResumeID     string `gorm:"index;size:36"`
	SortOrder    int
	Name         string `gorm:"size:255"`
	Position     string `gorm:"size:255"`
	Company      string `gorm:"size:255"`
	Email        string `gorm:"size:255"`
	Phone        string `gorm:"size:64"`
	Relationship string `gorm:"size:255"`
}

func (Reference) TableName() string { return "resume_references" }

// SectionVisibility 每个分区一行，缺失的分区视为可见。
type SectionVisibility struct {
	ID         uint   `gorm:"primaryKey"`
	ResumeID   string `gorm:"uniqueIndex:idx_visibility_section;size:36"`
	SectionKey string `gorm:"uniqueIndex:idx_visibility_section;size:32"`
	Visible    bool
}

func (SectionVisibility) TableName() string { return "section_visibility" }

// 导出任务状态。
const (
	ExportStatusPending    = "pending"
	ExportStatusProcessing = "processing"
	ExportStatusCompleted  = "completed"
	ExportStatusFailed     = "failed"
)

// ExportJob 记录一次异步导出。
type ExportJob struct {
	ID            string `gorm:"primaryKey;size:36"`
	ResumeID      string `gorm:"index;size:36"`
	UserID        string `gorm:"index;size:64"`
	Format        string `gorm:"size:16"`
	Status        string `gorm:"size:16"`
	CorrelationID string `gorm:"size:64"`
	ObjectKey     string `gorm:"size:512"`
	Filename      string `gorm:"size:255"`
	Pages         int
	ErrorCode     int
	ErrorMessage  string `gorm:"size:1024"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Models lists every table owned by this service, in migration order.
func Models() []any {
	return []any{
		&Resume{}, &PersonalInfo{}, &Experience{}, &Education{}, &Skill{},
		&Project{}, &Certification{}, &Language{}, &Reference{},
		&SectionVisibility{}, &ExportJob{},
	}
}
