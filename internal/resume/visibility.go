package resume

// 分区可见性开关的键，对应 section_visibility 表的列。
const (
	VisibleSummary        = "summary"
	VisibleExperience     = "experience"
	VisibleEducation      = "education"
	VisibleSkills         = "skills"
	VisibleProjects       = "projects"
	VisibleCertifications = "certifications"
	VisibleLanguages      = "languages"
	VisibleReferences     = "references"
)

// Visibility 记录被用户隐藏的分区；缺省的键视为可见。
type Visibility map[string]bool

// Shows 返回分区是否可见。
func (v Visibility) Shows(key string) bool {
	if v == nil {
		return true
	}
	shown, ok := v[key]
	return !ok || shown
}
