package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumeKit/internal/resume"
)

// ErrNotFound 表示记录不存在或不属于当前用户，两种情况对调用方不做区分。
var ErrNotFound = errors.New("record not found")

// Store 是简历快照与导出任务的只读/状态存储。简历内容的写入由其他服务负责。
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ownedResume(ctx context.Context, resumeID, userID string) (*Resume, error) {
	var row Resume
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", resumeID, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query resume: %w", err)
	}
	return &row, nil
}

// ResumeUpdatedAt 返回简历主表的更新时间，也用于在入队前确认简历归属。
func (s *Store) ResumeUpdatedAt(ctx context.Context, resumeID, userID string) (time.Time, error) {
	row, err := s.ownedResume(ctx, resumeID, userID)
	if err != nil {
		return time.Time{}, err
	}
	return row.UpdatedAt, nil
}

// LoadDocument 读取完整快照并归一化。每个分区单独查询并按 sort_order 排序。
func (s *Store) LoadDocument(ctx context.Context, resumeID, userID string) (resume.Document, []resume.FieldIssue, error) {
	row, err := s.ownedResume(ctx, resumeID, userID)
	if err != nil {
		return resume.Document{}, nil, err
	}

	raw := resume.RawDocument{
		ID:             row.ID,
		Title:          row.Title,
		Summary:        row.Summary,
		TemplateID:     row.TemplateID,
		ColorTheme:     row.ColorTheme,
		FontFamily:     row.FontFamily,
		Layout:         row.Layout,
		ExperienceType: row.ExperienceType,
	}

	db := s.db.WithContext(ctx)
	section := func(name string, dest any) error {
		if err := db.Where("resume_id = ?", resumeID).Order("sort_order asc").Find(dest).Error; err != nil {
			return fmt.Errorf("query %s: %w", name, err)
		}
		return nil
	}

	var info []PersonalInfo
	if err := db.Where("resume_id = ?", resumeID).Limit(1).Find(&info).Error; err != nil {
		return resume.Document{}, nil, fmt.Errorf("query personal info: %w", err)
	}
	if len(info) > 0 {
		p := info[0]
		raw.PersonalInfo = &resume.PersonalInfo{
			FullName: p.FullName, Title: p.Title, Email: p.Email, Phone: p.Phone,
			Location: p.Location, Website: p.Website, LinkedIn: p.LinkedInURL, GitHub: p.GitHubURL,
		}
	}

	var experience []Experience
	if err := section("experience", &experience); err != nil {
		return resume.Document{}, nil, err
	}
	for _, e := range experience {
		raw.Experience = append(raw.Experience, resume.RawExperience{
			ID: e.ID, SortOrder: e.SortOrder, Company: e.Company, Position: e.Position,
			Location: e.Location, StartDate: dateString(e.StartDate), EndDate: dateString(e.EndDate),
			Current: e.Current, Description: e.Description, Achievements: stringList(e.Achievements),
		})
	}

	var education []Education
	if err := section("education", &education); err != nil {
		return resume.Document{}, nil, err
	}
	for _, e := range education {
		raw.Education = append(raw.Education, resume.RawEducation{
			ID: e.ID, SortOrder: e.SortOrder, Institution: e.Institution, Degree: e.Degree,
			FieldOfStudy: e.FieldOfStudy, Location: e.Location,
			StartDate: dateString(e.StartDate), EndDate: dateString(e.EndDate),
			GraduationDate: dateString(e.GraduationDate), Current: e.Current,
			GPA: e.GPA, Description: e.Description,
		})
	}

	var skills []Skill
	if err := section("skills", &skills); err != nil {
		return resume.Document{}, nil, err
	}
	for _, sk := range skills {
		raw.Skills = append(raw.Skills, resume.Skill{ID: sk.ID, SortOrder: sk.SortOrder, Name: sk.Name, Category: sk.Category})
	}

	var projects []Project
	if err := section("projects", &projects); err != nil {
		return resume.Document{}, nil, err
	}
	for _, p := range projects {
		raw.Projects = append(raw.Projects, resume.RawProject{
			ID: p.ID, SortOrder: p.SortOrder, Name: p.Name, Description: p.Description,
			URL: p.URL, RepositoryURL: p.RepositoryURL, Technologies: stringList(p.Technologies),
			StartDate: dateString(p.StartDate), EndDate: dateString(p.EndDate),
		})
	}

	var certs []Certification
	if err := section("certifications", &certs); err != nil {
		return resume.Document{}, nil, err
	}
	for _, c := range certs {
		raw.Certifications = append(raw.Certifications, resume.RawCertification{
			ID: c.ID, SortOrder: c.SortOrder, Name: c.Name, IssuingOrganization: c.IssuingOrganization,
			IssueDate: dateString(c.IssueDate), ExpiryDate: dateString(c.ExpiryDate),
			CredentialID: c.CredentialID, CredentialURL: c.CredentialURL, Description: c.Description,
		})
	}

	var languages []Language
	if err := section("languages", &languages); err != nil {
		return resume.Document{}, nil, err
	}
	for _, l := range languages {
		raw.Languages = append(raw.Languages, resume.RawLanguage{ID: l.ID, SortOrder: l.SortOrder, Name: l.Language, Proficiency: l.Proficiency})
	}

	var refs []Reference
	if err := section("references", &refs); err != nil {
		return resume.Document{}, nil, err
	}
	for _, r := range refs {
		raw.References = append(raw.References, resume.Reference{
			ID: r.ID, SortOrder: r.SortOrder, Name: r.Name, Position: r.Position, Company: r.Company,
			Email: r.Email, Phone: r.Phone, Relationship: r.Relationship,
		})
	}

	var visibility []SectionVisibility
	if err := db.Where("resume_id = ?", resumeID).Find(&visibility).Error; err != nil {
		return resume.Document{}, nil, fmt.Errorf("query section visibility: %w", err)
	}
	if len(visibility) > 0 {
		raw.Visibility = resume.Visibility{}
		for _, v := range visibility {
			raw.Visibility[v.SectionKey] = v.Visible
		}
	}

	doc, issues := resume.Normalize(raw)
	return doc, issues, nil
}

func dateString(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// stringList 兼容 JSON 数组、JSON 字符串以及未加引号的逗号分隔文本。
func stringList(raw datatypes.JSON) resume.StringList {
	if len(raw) == 0 {
		return nil
	}
	var list resume.StringList
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return resume.SplitList(strings.Trim(string(raw), `"`))
}

// CreateExportJob 保存新任务，状态为 pending。
func (s *Store) CreateExportJob(ctx context.Context, job *ExportJob) error {
	if job.Status == "" {
		job.Status = ExportStatusPending
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// GetExportJob 只返回属于 userID 的任务。
func (s *Store) GetExportJob(ctx context.Context, jobID, userID string) (*ExportJob, error) {
	var job ExportJob
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", jobID, userID).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query export job: %w", err)
	}
	return &job, nil
}

// ExportJobUpdate 是任务状态迁移时写入的字段，零值字段不会覆盖已有值。
type ExportJobUpdate struct {
	ObjectKey    string
	Filename     string
	Pages        int
	ErrorCode    int
	ErrorMessage string
}

// MarkExportJob 更新任务状态。
func (s *Store) MarkExportJob(ctx context.Context, jobID, status string, upd ExportJobUpdate) error {
	fields := map[string]any{"status": status}
	if upd.ObjectKey != "" {
		fields["object_key"] = upd.ObjectKey
	}
	if upd.Filename != "" {
		fields["filename"] = upd.Filename
	}
	if upd.Pages > 0 {
		fields["pages"] = upd.Pages
	}
	if upd.ErrorCode != 0 {
		fields["error_code"] = upd.ErrorCode
	}
	if upd.ErrorMessage != "" {
		fields["error_message"] = upd.ErrorMessage
	}

	res := s.db.WithContext(ctx).Model(&ExportJob{}).Where("id = ?", jobID).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update export job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpiredExportJobs 返回 before 之前结束（完成或失败）的任务，供清理使用。
func (s *Store) ExpiredExportJobs(ctx context.Context, before time.Time, limit int) ([]ExportJob, error) {
	var jobs []ExportJob
	err := s.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", []string{ExportStatusCompleted, ExportStatusFailed}, before).
		Order("updated_at").
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("query expired export jobs: %w", err)
	}
	return jobs, nil
}

// DeleteExportJob 删除任务记录；对象存储中的文件由调用方先行清理。
func (s *Store) DeleteExportJob(ctx context.Context, jobID string) error {
	if err := s.db.WithContext(ctx).Delete(&ExportJob{}, "id = ?", jobID).Error; err != nil {
		return fmt.Errorf("delete export job: %w", err)
	}
	return nil
}
