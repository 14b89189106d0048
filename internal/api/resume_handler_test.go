package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeKit/internal/ai"
	"resumeKit/internal/api/middleware"
	"resumeKit/internal/auth"
	"resumeKit/internal/database"
	"resumeKit/internal/errcode"
	"resumeKit/internal/export"
	"resumeKit/internal/resume"
	"resumeKit/internal/tasks"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.TokenClaims, error) {
	if token != "token-u1" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, nil
}

type fakeStore struct {
	docs      map[string]resume.Document
	loadErr   error
	loads     int
	updatedAt time.Time
	jobs      map[string]*database.ExportJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs: map[string]resume.Document{"r1": {
			ID:           "r1",
			Title:        "Backend",
			Summary:      "Builds reliable systems.",
			PersonalInfo: &resume.PersonalInfo{FullName: "Jane Doe"},
			Experience:   []resume.Experience{{Company: "Acme", Position: "Engineer", Description: "Built things."}},
			Skills:       []resume.Skill{{Name: "Go"}},
		}},
		updatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		jobs:      map[string]*database.ExportJob{},
	}
}

func (s *fakeStore) LoadDocument(_ context.Context, resumeID, userID string) (resume.Document, []resume.FieldIssue, error) {
	s.loads++
	if s.loadErr != nil {
		return resume.Document{}, nil, s.loadErr
	}
	doc, ok := s.docs[resumeID]
	if !ok || userID != "u1" {
		return resume.Document{}, nil, database.ErrNotFound
	}
	return doc, []resume.FieldIssue{{Field: "experience[0].start_date", Value: "soon", Reason: "unparseable date"}}, nil
}

func (s *fakeStore) ResumeUpdatedAt(_ context.Context, resumeID, userID string) (time.Time, error) {
	if _, ok := s.docs[resumeID]; !ok || userID != "u1" {
		return time.Time{}, database.ErrNotFound
	}
	return s.updatedAt, nil
}

func (s *fakeStore) CreateExportJob(_ context.Context, job *database.ExportJob) error {
	s.jobs[job.ID] = job
	return nil
}

func (s *fakeStore) GetExportJob(_ context.Context, jobID, userID string) (*database.ExportJob, error) {
	job, ok := s.jobs[jobID]
	if !ok || job.UserID != userID {
		return nil, database.ErrNotFound
	}
	return job, nil
}

func (s *fakeStore) MarkExportJob(_ context.Context, jobID, status string, upd database.ExportJobUpdate) error {
	job, ok := s.jobs[jobID]
	if !ok {
		return database.ErrNotFound
	}
	job.Status = status
	job.ErrorCode = upd.ErrorCode
	return nil
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "t"}, nil
}

type fakePresigner struct{}

func (fakePresigner) GeneratePresignedURL(_ context.Context, key, filename string, _ time.Duration) (string, error) {
	return "https://files.example.com/" + key + "?name=" + filename, nil
}

type fakeLocker struct {
	held map[string]bool
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, ErrLocked
	}
	l.held[key] = true
	return func() { delete(l.held, key) }, nil
}

type fakeGenerator struct {
	reply string
	err   error
}

func (g fakeGenerator) Generate(context.Context, string, string) (string, error) {
	return g.reply, g.err
}

type testEnv struct {
	store  *fakeStore
	queue  *fakeQueue
	locker *fakeLocker
	engine *gin.Engine
}

func newTestEnv(gen ai.Generator) *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{store: newFakeStore(), queue: &fakeQueue{}, locker: &fakeLocker{}}
	exporter := export.New(export.WithClock(func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }))
	h := NewResumeHandler(env.store, exporter, env.queue, fakePresigner{}, env.locker, ai.NewService(gen, nil), ResumeHandlerOptions{
		PreviewCache: cache.New(5*time.Minute, 10*time.Minute),
	})

	r := gin.New()
	r.Use(middleware.CorrelationIDMiddleware())
	g := r.Group("/v1/resumes", middleware.AuthMiddleware(stubValidator{}))
	registerResumeRoutes(g, h)
	env.engine = r
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer token-u1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func TestGetResume(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodGet, "/v1/resumes/r1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Document resume.Document `json:"document"`
		Issues   []string        `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Backend", resp.Document.Title)
	assert.Len(t, resp.Issues, 1)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/resumes/missing", "").Code)

	env.store.loadErr = errors.New("db down")
	assert.Equal(t, http.StatusInternalServerError, env.do(http.MethodGet, "/v1/resumes/r1", "").Code)
}

func TestGetResumeRequiresToken(t *testing.T) {
	env := newTestEnv(nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/r1", nil)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetSections(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodGet, "/v1/resumes/r1/sections", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Sections []string `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Sections)
	assert.Equal(t, "PROFESSIONAL SUMMARY", resp.Sections[0])
}

func TestGetPreviewCachedBySnapshot(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodGet, "/v1/resumes/r1/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Jane Doe")
	assert.Empty(t, w.Header().Get("X-Preview-Cache"))

	w = env.do(http.MethodGet, "/v1/resumes/r1/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-Preview-Cache"))

	// 只改分区内容，主表时间戳不变
	doc := env.store.docs["r1"]
	doc.Skills = []resume.Skill{{Name: "Kubernetes"}}
	env.store.docs["r1"] = doc
	w = env.do(http.MethodGet, "/v1/resumes/r1/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Preview-Cache"))
	assert.Contains(t, w.Body.String(), "Kubernetes")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/resumes/missing/preview", "").Code)
}

func TestPreviewCacheKey(t *testing.T) {
	doc := resume.Document{ID: "r1", Skills: []resume.Skill{{Name: "Go"}}}
	a, err := previewCacheKey("u1", doc)
	require.NoError(t, err)
	b, err := previewCacheKey("u1", doc)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "preview:u1:r1:"))

	other, err := previewCacheKey("u2", doc)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	doc.Skills[0].Name = "Rust"
	changed, err := previewCacheKey("u1", doc)
	require.NoError(t, err)
	assert.NotEqual(t, a, changed)
}

func TestExportATSStreamsAttachment(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPost, "/v1/resumes/r1/export", `{"format":"ats-pdf"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Backend_2024-03-09.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", w.Header().Get("X-Export-Pages"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	// 同步导出结束后释放锁
	assert.Empty(t, env.locker.held)

	w = env.do(http.MethodPost, "/v1/resumes/r1/export", `{"format":"ats-docx"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasSuffix(w.Header().Get("Content-Disposition"), `.docx"`))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestExportRejectsBadRequests(t *testing.T) {
	env := newTestEnv(nil)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/v1/resumes/r1/export", `{}`).Code)

	w := env.do(http.MethodPost, "/v1/resumes/r1/export", `{"format":"pptx"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"code":4220`)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/v1/resumes/missing/export", `{"format":"ats-pdf"}`).Code)
}

func TestExportConflictWhileLocked(t *testing.T) {
	env := newTestEnv(nil)
	env.locker.held = map[string]bool{exportLockKey("r1"): true}

	// 锁覆盖整份简历，换格式同样冲突
	for _, format := range []string{"ats-pdf", "ats-docx", "visual-pdf"} {
		w := env.do(http.MethodPost, "/v1/resumes/r1/export", `{"format":"`+format+`"}`)
		assert.Equal(t, http.StatusConflict, w.Code, format)
	}
	assert.Empty(t, env.queue.tasks)

	// 其他简历不受影响
	env.store.docs["r2"] = env.store.docs["r1"]
	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/v1/resumes/r2/export", `{"format":"ats-pdf"}`).Code)
}

func TestExportVisualEnqueuesJob(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPost, "/v1/resumes/r1/export", `{"format":"visual-pdf"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, database.ExportStatusPending, resp.Status)
	require.Contains(t, env.store.jobs, resp.JobID)

	require.Len(t, env.queue.tasks, 1)
	payload, err := tasks.ParseExportGeneratePayload(env.queue.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, resp.JobID, payload.JobID)
	assert.Equal(t, "u1", payload.UserID)
	assert.NotEmpty(t, payload.CorrelationID)

	// 锁在 TTL 内保持，重复请求被拒绝
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/v1/resumes/r1/export", `{"format":"visual-pdf"}`).Code)
}

func TestExportVisualEnqueueFailure(t *testing.T) {
	env := newTestEnv(nil)
	env.queue.err = errors.New("redis down")

	w := env.do(http.MethodPost, "/v1/resumes/r1/export", `{"format":"visual-pdf"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, env.locker.held)
	require.Len(t, env.store.jobs, 1)
	for _, job := range env.store.jobs {
		assert.Equal(t, database.ExportStatusFailed, job.Status)
		assert.Equal(t, errcode.SystemError, job.ErrorCode)
	}
}

func TestGetExportJob(t *testing.T) {
	env := newTestEnv(nil)
	env.store.jobs["j1"] = &database.ExportJob{ID: "j1", ResumeID: "r1", UserID: "u1", Format: "visual-pdf",
		Status: database.ExportStatusCompleted, ObjectKey: "exports/u1/j1.pdf", Filename: "Backend_2024-03-09.pdf", Pages: 2}
	env.store.jobs["j2"] = &database.ExportJob{ID: "j2", ResumeID: "r1", UserID: "u1", Status: database.ExportStatusProcessing}
	env.store.jobs["j3"] = &database.ExportJob{ID: "j3", ResumeID: "r1", UserID: "u2", Status: database.ExportStatusCompleted}

	w := env.do(http.MethodGet, "/v1/resumes/r1/exports/j1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp exportJobResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Pages)
	assert.Equal(t, "https://files.example.com/exports/u1/j1.pdf?name=Backend_2024-03-09.pdf", resp.URL)

	w = env.do(http.MethodGet, "/v1/resumes/r1/exports/j2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"url"`)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/resumes/r1/exports/j3", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/v1/resumes/r2/exports/j1", "").Code)
}

func TestSuggestFallsBackWithoutGenerator(t *testing.T) {
	env := newTestEnv(nil)

	w := env.do(http.MethodPost, "/v1/resumes/r1/suggestions", `{"goals":"staff engineer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp suggestionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Fallback)
	assert.Equal(t, errcode.FallbackUsed, resp.Code)
	assert.NotEmpty(t, resp.Warning)
	assert.Equal(t, resp.Suggestion.Summary, resp.Preview.Summary)
	// 原始快照不受影响
	assert.Equal(t, "Builds reliable systems.", env.store.docs["r1"].Summary)
}

func TestSuggestUsesGeneratorReply(t *testing.T) {
	env := newTestEnv(fakeGenerator{reply: `Sure! {"summary":"Seasoned engineer.","experience":[{"description":"Led the platform team."}]}`})

	w := env.do(http.MethodPost, "/v1/resumes/r1/suggestions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp suggestionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Fallback)
	assert.Equal(t, errcode.OK, resp.Code)
	assert.Equal(t, "Seasoned engineer.", resp.Preview.Summary)
	require.Len(t, resp.Preview.Experience, 1)
	assert.Equal(t, "Led the platform team.", resp.Preview.Experience[0].Description)
}
