package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"resumeKit/internal/resume"
)

// ErrMalformedReply 表示生成服务的回复中没有可用的 JSON 对象。
var ErrMalformedReply = errors.New("malformed suggestion reply")

// ErrNotConfigured 表示没有可用的生成服务。
var ErrNotConfigured = errors.New("suggestion generator not configured")

type ExperienceSuggestion struct {
	Company      string   `json:"company,omitempty"`
	Position     string   `json:"position,omitempty"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements,omitempty"`
}

type ProjectSuggestion struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description"`
}

// Suggestion 是生成服务返回的改写内容，数组下标与 Profile 中的条目一一对应。
type Suggestion struct {
	Summary    string                 `json:"summary"`
	Experience []ExperienceSuggestion `json:"experience"`
	Projects   []ProjectSuggestion    `json:"projects"`
}

const (
	fallbackSummary = "Results-driven professional with proven expertise in software development and project management. " +
		"Skilled in leveraging cutting-edge technologies to deliver high-impact solutions. " +
		"Committed to continuous learning and driving innovation in fast-paced environments."
	fallbackExperience = "Led cross-functional teams in developing and deploying scalable web applications, " +
		"resulting in 40% improvement in system performance and 25% increase in user engagement."
	fallbackProject = "Architected and developed a full-stack application utilizing modern frameworks, " +
		"serving 10,000+ active users with 99.9% uptime."
)

// Fallback 返回确定性的兜底建议，条目数量与 profile 一致。
func Fallback(p Profile) Suggestion {
	s := Suggestion{Summary: fallbackSummary}
	for _, e := range p.Experience {
		s.Experience = append(s.Experience, ExperienceSuggestion{
			Company:      e.Company,
			Position:     e.Position,
			Description:  fallbackExperience,
			Achievements: append([]string(nil), e.Achievements...),
		})
	}
	for _, pr := range p.Projects {
		s.Projects = append(s.Projects, ProjectSuggestion{Name: pr.Name, Description: fallbackProject})
	}
	return s
}

var jsonObject = regexp.MustCompile(`\{[\s\S]*\}`)

// parseReply 先取回复中第一个 { 到最后一个 } 之间的内容，失败再整体解析。
func parseReply(reply string) (Suggestion, error) {
	var s Suggestion
	if m := jsonObject.FindString(reply); m != "" {
		if err := json.Unmarshal([]byte(m), &s); err == nil {
			return s, nil
		}
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(reply)), &s); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return s, nil
}

type Service struct {
	gen    Generator
	logger *slog.Logger
}

// NewService 中 gen 可以为 nil，此时总是返回兜底建议。
func NewService(gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, logger: logger}
}

// Suggest 总是返回可用的建议。返回的 error 只是告警：非 nil 时建议来自 Fallback。
func (s *Service) Suggest(ctx context.Context, p Profile) (Suggestion, error) {
	if s.gen == nil {
		return Fallback(p), ErrNotConfigured
	}
	reply, err := s.gen.Generate(ctx, systemPrompt, buildPrompt(p))
	if err != nil {
		s.logger.Warn("suggestion generator failed, using fallback", slog.Any("error", err))
		return Fallback(p), fmt.Errorf("generate suggestion: %w", err)
	}
	sug, err := parseReply(reply)
	if err != nil {
		s.logger.Warn("suggestion reply unparseable, using fallback", slog.Any("error", err))
		return Fallback(p), err
	}
	return sug, nil
}

// Apply 返回应用了建议的文档副本，doc 本身不会被修改。
// 建议中的空字段保留原值，多出的条目被忽略。
func Apply(doc resume.Document, s Suggestion) resume.Document {
	out := doc
	if v := strings.TrimSpace(s.Summary); v != "" {
		out.Summary = v
	}

	out.Experience = append([]resume.Experience(nil), doc.Experience...)
	for i := range out.Experience {
		out.Experience[i].Achievements = append([]string(nil), doc.Experience[i].Achievements...)
		if i >= len(s.Experience) {
			continue
		}
		if v := strings.TrimSpace(s.Experience[i].Description); v != "" {
			out.Experience[i].Description = v
		}
		if ach := trimmed(s.Experience[i].Achievements); len(ach) > 0 {
			out.Experience[i].Achievements = ach
		}
	}

	out.Projects = append([]resume.Project(nil), doc.Projects...)
	for i := range out.Projects {
		out.Projects[i].Technologies = append([]string(nil), doc.Projects[i].Technologies...)
		if i >= len(s.Projects) {
			continue
		}
		if v := strings.TrimSpace(s.Projects[i].Description); v != "" {
			out.Projects[i].Description = v
		}
	}
	return out
}

func trimmed(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
