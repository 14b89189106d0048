package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/patrickmn/go-cache"

	"resumeKit/internal/ai"
	"resumeKit/internal/api/middleware"
	"resumeKit/internal/database"
	"resumeKit/internal/errcode"
	"resumeKit/internal/export"
	"resumeKit/internal/render/visual"
	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
	"resumeKit/internal/tasks"
)

// DocumentStore 是 API 读取简历快照与导出任务所需的存储能力，*database.Store 实现了它。
type DocumentStore interface {
	LoadDocument(ctx context.Context, resumeID, userID string) (resume.Document, []resume.FieldIssue, error)
	ResumeUpdatedAt(ctx context.Context, resumeID, userID string) (time.Time, error)
	CreateExportJob(ctx context.Context, job *database.ExportJob) error
	GetExportJob(ctx context.Context, jobID, userID string) (*database.ExportJob, error)
	MarkExportJob(ctx context.Context, jobID, status string, upd database.ExportJobUpdate) error
}

// TaskEnqueuer 由 *asynq.Client 实现。
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Presigner 生成带下载文件名的临时链接，*storage.Client 实现了它。
type Presigner interface {
	GeneratePresignedURL(ctx context.Context, objectKey, filename string, duration time.Duration) (string, error)
}

// ResumeHandlerOptions 汇总 ResumeHandler 的可调参数。
type ResumeHandlerOptions struct {
	LockTTL        time.Duration
	DownloadURLTTL time.Duration
	MaxRetry       int
	// PreviewCache 为 nil 时不缓存预览 HTML。
	PreviewCache *cache.Cache
}

// ResumeHandler 提供简历快照、预览、导出与 AI 建议接口。
type ResumeHandler struct {
	store     DocumentStore
	exporter  *export.Service
	queue     TaskEnqueuer
	presigner Presigner
	locker    Locker
	suggester *ai.Service
	opts      ResumeHandlerOptions
}

// NewResumeHandler 创建处理器。
func NewResumeHandler(
	store DocumentStore,
	exporter *export.Service,
	queue TaskEnqueuer,
	presigner Presigner,
	locker Locker,
	suggester *ai.Service,
	opts ResumeHandlerOptions,
) *ResumeHandler {
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	if opts.DownloadURLTTL <= 0 {
		opts.DownloadURLTTL = 15 * time.Minute
	}
	if opts.MaxRetry <= 0 {
		opts.MaxRetry = 3
	}
	return &ResumeHandler{
		store:     store,
		exporter:  exporter,
		queue:     queue,
		presigner: presigner,
		locker:    locker,
		suggester: suggester,
		opts:      opts,
	}
}

type documentResponse struct {
	Document resume.Document `json:"document"`
	Issues   []string        `json:"issues,omitempty"`
}

func issueStrings(issues []resume.FieldIssue) []string {
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.String())
	}
	return out
}

// loadDocument 读取当前用户的快照，失败时已经写好响应。
func (h *ResumeHandler) loadDocument(c *gin.Context) (resume.Document, []resume.FieldIssue, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		AbortUnauthorized(c)
		return resume.Document{}, nil, false
	}
	resumeID := c.Param("id")
	doc, issues, err := h.store.LoadDocument(c.Request.Context(), resumeID, userID)
	if errors.Is(err, database.ErrNotFound) {
		NotFound(c, "resume not found")
		return resume.Document{}, nil, false
	}
	if err != nil {
		middleware.LoggerFromContext(c).Error("load resume failed", slog.String("resume_id", resumeID), slog.Any("error", err))
		Internal(c, "failed to load resume")
		return resume.Document{}, nil, false
	}
	if len(issues) > 0 {
		middleware.LoggerFromContext(c).Warn("resume normalized with issues",
			slog.String("resume_id", resumeID),
			slog.Int("issue_count", len(issues)),
		)
	}
	return doc, issues, true
}

// GetResume 返回规范化后的简历快照。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	doc, issues, ok := h.loadDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, documentResponse{Document: doc, Issues: issueStrings(issues)})
}

// GetSections 返回按排序策略排列的分区标题。
func (h *ResumeHandler) GetSections(c *gin.Context) {
	doc, _, ok := h.loadDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"sections": sections.Order(doc).Titles()})
}

// GetPreview 返回可视化预览 HTML。缓存键取快照内容的哈希，
// 分区表的增删改都会换键；命中时省去渲染。
func (h *ResumeHandler) GetPreview(c *gin.Context) {
	doc, _, ok := h.loadDocument(c)
	if !ok {
		return
	}
	userID, _ := middleware.GetUserID(c)
	log := middleware.LoggerFromContext(c).With(slog.String("resume_id", doc.ID))

	var cacheKey string
	if h.opts.PreviewCache != nil {
		key, err := previewCacheKey(userID, doc)
		if err != nil {
			log.Warn("hash preview snapshot failed", slog.Any("error", err))
		}
		cacheKey = key
	}
	if cacheKey != "" {
		if cached, found := h.opts.PreviewCache.Get(cacheKey); found {
			c.Header("X-Preview-Cache", "hit")
			c.Data(http.StatusOK, "text/html; charset=utf-8", cached.([]byte))
			return
		}
	}

	html, err := visual.Render(doc, sections.Order(doc)).HTML()
	if err != nil {
		log.Error("render preview failed", slog.Any("error", err))
		ErrorWithCode(c, http.StatusInternalServerError, errcode.RenderFailed, "failed to render preview")
		return
	}
	body := []byte(html)
	if cacheKey != "" {
		h.opts.PreviewCache.Set(cacheKey, body, cache.DefaultExpiration)
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}

// previewCacheKey 对规范化后的快照做 xxhash；Visibility 是 map，json 按键排序输出。
func previewCacheKey(userID string, doc resume.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return fmt.Sprintf("preview:%s:%s:%016x", userID, doc.ID, xxhash.Sum64(data)), nil
}

type exportRequest struct {
	Format string `json:"format" binding:"required"`
}

// Export 对 ATS 格式同步生成并以附件返回；visual-pdf 需要浏览器，交给 worker 异步处理。
func (h *ResumeHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "format is required")
		return
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		Unprocessable(c, err.Error())
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	resumeID := c.Param("id")
	log := middleware.LoggerFromContext(c).With(
		slog.String("resume_id", resumeID),
		slog.String("format", string(format)),
	)

	release, err := h.locker.Acquire(c.Request.Context(), exportLockKey(resumeID), h.opts.LockTTL)
	if errors.Is(err, ErrLocked) {
		Conflict(c, "export already in progress")
		return
	}
	if err != nil {
		log.Error("acquire export lock failed", slog.Any("error", err))
		Internal(c, "failed to start export")
		return
	}

	if format.NeedsSurface() {
		// 入队成功后锁随 TTL 过期，期间的重复请求返回 409
		if !h.enqueueVisual(c, log, userID, resumeID, format) {
			release()
		}
		return
	}
	defer release()

	doc, _, ok := h.loadDocument(c)
	if !ok {
		return
	}
	art, err := h.exporter.Export(c.Request.Context(), export.Request{Document: doc, Format: format})
	if err != nil {
		if export.IsPrecondition(err) {
			Unprocessable(c, err.Error())
			return
		}
		log.Error("export failed", slog.Any("error", err))
		ErrorWithCode(c, http.StatusInternalServerError, errcode.RenderFailed, "failed to export resume")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, strings.ReplaceAll(art.Filename, `"`, "_")))
	if art.Pages > 0 {
		c.Header("X-Export-Pages", fmt.Sprintf("%d", art.Pages))
	}
	c.Data(http.StatusOK, art.ContentType, art.Data)
}

// enqueueVisual 创建任务记录并入队，失败时已经写好响应并返回 false。
func (h *ResumeHandler) enqueueVisual(c *gin.Context, log *slog.Logger, userID, resumeID string, format export.Format) bool {
	ctx := c.Request.Context()
	if _, err := h.store.ResumeUpdatedAt(ctx, resumeID, userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			NotFound(c, "resume not found")
			return false
		}
		log.Error("load resume failed", slog.Any("error", err))
		Internal(c, "failed to load resume")
		return false
	}

	job := &database.ExportJob{
		ID:            uuid.NewString(),
		ResumeID:      resumeID,
		UserID:        userID,
		Format:        string(format),
		Status:        database.ExportStatusPending,
		CorrelationID: middleware.GetCorrelationID(c),
	}
	if err := h.store.CreateExportJob(ctx, job); err != nil {
		log.Error("create export job failed", slog.Any("error", err))
		Internal(c, "failed to create export job")
		return false
	}

	task, err := tasks.NewExportGenerateTask(tasks.ExportGeneratePayload{
		JobID:         job.ID,
		ResumeID:      resumeID,
		UserID:        userID,
		Format:        string(format),
		CorrelationID: job.CorrelationID,
	}, asynq.MaxRetry(h.opts.MaxRetry))
	if err != nil {
		log.Error("build export task failed", slog.Any("error", err))
		Internal(c, "failed to create export job")
		return false
	}
	if _, err := h.queue.EnqueueContext(ctx, task); err != nil {
		log.Error("enqueue export task failed", slog.String("job_id", job.ID), slog.Any("error", err))
		if markErr := h.store.MarkExportJob(ctx, job.ID, database.ExportStatusFailed, database.ExportJobUpdate{
			ErrorCode: errcode.SystemError, ErrorMessage: "enqueue failed",
		}); markErr != nil {
			log.Error("mark export job failed", slog.Any("error", markErr))
		}
		Internal(c, "failed to enqueue export job")
		return false
	}

	log.Info("visual export enqueued", slog.String("job_id", job.ID))
	c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID, "status": job.Status})
	return true
}

type exportJobResponse struct {
	JobID        string `json:"job_id"`
	Format       string `json:"format"`
	Status       string `json:"status"`
	Filename     string `json:"filename,omitempty"`
	Pages        int    `json:"pages,omitempty"`
	URL          string `json:"url,omitempty"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// GetExportJob 返回导出任务状态，完成后附带临时下载链接。
func (h *ResumeHandler) GetExportJob(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}
	jobID := c.Param("job_id")
	job, err := h.store.GetExportJob(c.Request.Context(), jobID, userID)
	if errors.Is(err, database.ErrNotFound) || (err == nil && job.ResumeID != c.Param("id")) {
		NotFound(c, "export job not found")
		return
	}
	if err != nil {
		middleware.LoggerFromContext(c).Error("load export job failed", slog.String("job_id", jobID), slog.Any("error", err))
		Internal(c, "failed to load export job")
		return
	}

	resp := exportJobResponse{
		JobID:        job.ID,
		Format:       job.Format,
		Status:       job.Status,
		Filename:     job.Filename,
		Pages:        job.Pages,
		ErrorCode:    job.ErrorCode,
		ErrorMessage: job.ErrorMessage,
	}
	if job.Status == database.ExportStatusCompleted && job.ObjectKey != "" {
		url, err := h.presigner.GeneratePresignedURL(c.Request.Context(), job.ObjectKey, job.Filename, h.opts.DownloadURLTTL)
		if err != nil {
			middleware.LoggerFromContext(c).Error("generate download url failed", slog.String("job_id", jobID), slog.Any("error", err))
			ErrorWithCode(c, http.StatusInternalServerError, errcode.DeliverFailed, "failed to generate download url")
			return
		}
		resp.URL = url
	}
	c.JSON(http.StatusOK, resp)
}

type suggestionRequest struct {
	Goals string `json:"goals"`
}

type suggestionResponse struct {
	Suggestion ai.Suggestion   `json:"suggestion"`
	Fallback   bool            `json:"fallback"`
	Warning    string          `json:"warning,omitempty"`
	Code       int             `json:"code"`
	Preview    resume.Document `json:"preview"`
}

// Suggest 请求 AI 润色建议并返回应用后的预览文档；原始数据不会被修改。
func (h *ResumeHandler) Suggest(c *gin.Context) {
	var req suggestionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "invalid request body")
			return
		}
	}
	doc, _, ok := h.loadDocument(c)
	if !ok {
		return
	}

	s, err := h.suggester.Suggest(c.Request.Context(), ai.ProfileFromDocument(doc, req.Goals))
	resp := suggestionResponse{Suggestion: s, Code: errcode.OK}
	if err != nil {
		resp.Fallback = true
		resp.Warning = err.Error()
		resp.Code = errcode.FallbackUsed
	}
	resp.Preview = ai.Apply(doc, s)
	c.JSON(http.StatusOK, resp)
}
