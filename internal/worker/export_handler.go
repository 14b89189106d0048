package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"resumeKit/internal/database"
	"resumeKit/internal/errcode"
	"resumeKit/internal/export"
	"resumeKit/internal/render/visual"
	"resumeKit/internal/resume"
	"resumeKit/internal/sections"
	"resumeKit/internal/storage"
	"resumeKit/internal/tasks"
)

// JobStore 是导出任务需要的存储能力，*database.Store 实现了它。
type JobStore interface {
	LoadDocument(ctx context.Context, resumeID, userID string) (resume.Document, []resume.FieldIssue, error)
	MarkExportJob(ctx context.Context, jobID, status string, upd database.ExportJobUpdate) error
}

// OpenSurfaceFunc 物化可视化预览页面，release 必须被调用。
type OpenSurfaceFunc func(ctx context.Context, html string) (surface export.Surface, release func(), err error)

// ExportTaskHandler 负责消费导出任务。
type ExportTaskHandler struct {
	store     JobStore
	exporter  *export.Service
	uploader  storage.Uploader
	open      OpenSurfaceFunc
	publisher Publisher
	logger    *slog.Logger
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(
	store JobStore,
	exporter *export.Service,
	uploader storage.Uploader,
	open OpenSurfaceFunc,
	publisher Publisher,
	logger *slog.Logger,
) *ExportTaskHandler {
	return &ExportTaskHandler{
		store:     store,
		exporter:  exporter,
		uploader:  uploader,
		open:      open,
		publisher: publisher,
		logger:    logger,
	}
}

// ObjectKey 返回导出产物在对象存储中的位置。
func ObjectKey(userID, jobID string, f export.Format) string {
	return fmt.Sprintf("exports/%s/%s.%s", userID, jobID, f.Extension())
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	payload, err := tasks.ParseExportGeneratePayload(t)
	if err != nil {
		h.logger.Error("parse task payload failed", slog.Any("error", err))
		return err
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("job_id", payload.JobID),
		slog.String("resume_id", payload.ResumeID),
		slog.String("user_id", payload.UserID),
		slog.String("format", payload.Format),
	)
	log.Info("export task started")

	notify := ExportNotifyMessage{
		Type:          notifyTypeExport,
		JobID:         payload.JobID,
		ResumeID:      payload.ResumeID,
		Format:        payload.Format,
		CorrelationID: payload.CorrelationID,
	}

	// fail 标记任务失败并通知用户，用于不会再重试的情况
	fail := func(code int, cause error) {
		msg := strings.TrimSpace(cause.Error())
		if err := h.store.MarkExportJob(ctx, payload.JobID, database.ExportStatusFailed, database.ExportJobUpdate{
			ErrorCode: code, ErrorMessage: msg,
		}); err != nil {
			log.Error("mark export job failed", slog.Any("error", err))
		}
		n := notify
		n.Status = "error"
		n.ErrorCode = code
		n.ErrorMessage = msg
		if err := h.publisher.Publish(ctx, payload.UserID, n); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}

	format, err := export.ParseFormat(payload.Format)
	if err != nil {
		fail(errcode.InvalidRequest, err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := h.store.MarkExportJob(ctx, payload.JobID, database.ExportStatusProcessing, database.ExportJobUpdate{}); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			log.Warn("export job not found, skipping task")
			return nil
		}
		return err
	}

	defer func() {
		if retErr == nil || errors.Is(retErr, asynq.SkipRetry) {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}
		fail(errorCode(retErr), retErr)
	}()

	doc, issues, err := h.store.LoadDocument(ctx, payload.ResumeID, payload.UserID)
	if errors.Is(err, database.ErrNotFound) {
		log.Warn("resume not found, skipping task")
		fail(errcode.ResourceMissing, err)
		return nil
	}
	if err != nil {
		log.Error("load resume snapshot failed", slog.Any("error", err))
		return err
	}
	if len(issues) > 0 {
		log.Warn("resume snapshot normalized with issues", slog.Int("issue_count", len(issues)))
	}

	req := export.Request{Document: doc, Format: format}
	if format.NeedsSurface() {
		html, err := visual.Render(doc, sections.Order(doc)).HTML()
		if err != nil {
			return fmt.Errorf("render preview html: %w", err)
		}
		surface, release, err := h.open(ctx, html)
		if err != nil {
			log.Error("materialize preview surface failed", slog.Any("error", err))
			return fmt.Errorf("materialize preview: %w", err)
		}
		defer release()
		req.Surface = surface
	}

	key := ObjectKey(payload.UserID, payload.JobID, format)
	sink := storage.ObjectSink{Uploader: h.uploader, Key: key}
	art, location, err := h.exporter.ExportTo(ctx, req, sink)
	if err != nil {
		if export.IsPrecondition(err) {
			fail(errcode.InvalidRequest, err)
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		log.Error("export failed", slog.Any("error", err))
		return err
	}

	if err := h.store.MarkExportJob(ctx, payload.JobID, database.ExportStatusCompleted, database.ExportJobUpdate{
		ObjectKey: location,
		Filename:  art.Filename,
		Pages:     art.Pages,
	}); err != nil {
		log.Error("mark export job completed failed", slog.Any("error", err))
		return err
	}

	done := notify
	done.Status = "completed"
	done.Filename = art.Filename
	done.ErrorCode = errcode.OK
	if err := h.publisher.Publish(ctx, payload.UserID, done); err != nil {
		// 任务本身已完成，通知失败只记录
		log.Error("publish export notification failed", slog.Any("error", err))
	}

	log.Info("export task completed", slog.String("object_key", location), slog.Int("pages", art.Pages))
	return nil
}

// errorCode 按失败阶段映射错误码。
func errorCode(err error) int {
	var exportErr *export.Error
	if errors.As(err, &exportErr) {
		if exportErr.Stage == export.StageDeliver {
			return errcode.DeliverFailed
		}
		return errcode.RenderFailed
	}
	return errcode.SystemError
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
