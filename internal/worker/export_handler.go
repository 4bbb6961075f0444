package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/errcode"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/export"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/resume"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/storage"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/tasks"
)

// notifyPublisher 抽象通知发布端，*redis.Client 即生产实现。
type notifyPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// PDFTaskHandler 负责消费 PDF 导出任务。
type PDFTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient notifyPublisher
	logger      *slog.Logger
}

// NewPDFTaskHandler 创建任务处理器。
func NewPDFTaskHandler(
	db *gorm.DB,
	storage *storage.Client,
	redisClient *redis.Client,
	logger *slog.Logger,
) *PDFTaskHandler {
	return &PDFTaskHandler{
		db:          db,
		storage:     storage,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.PDFExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("resume_id", int(payload.ResumeID)),
	)
	log.Info("Starting PDF export task...")

	var row database.Resume
	if err := h.db.WithContext(ctx).First(&row, payload.ResumeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("resume not found, skipping task")
			return nil
		}
		log.Error("query resume failed", slog.Any("error", err))
		return err
	}

	log = log.With(slog.Uint64("user_id", uint64(row.UserID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		notify := PDFExportNotifyMessage{
			Status:        NotifyError,
			ResumeID:      row.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     exportFailureCode(retErr),
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishPDFExportNotify(ctx, row.UserID, notify); err != nil {
			log.Error("publish pdf error notification failed", slog.Any("error", err))
		}
	}()

	doc, err := row.Document()
	if err != nil {
		log.Error("decode resume sections failed", slog.Any("error", err))
		return err
	}

	html, err := export.RenderHTML(doc)
	if err != nil {
		log.Error("render resume html failed", slog.Any("error", err))
		return err
	}

	pngData, cleanup, err := renderResumeSnapshot(log, html)
	defer cleanup()
	if err != nil {
		log.Error("rasterize resume failed", slog.Any("error", err))
		return err
	}

	pdfBytes, pages, err := export.BuildPDF(pngData)
	if err != nil {
		log.Error("build pdf from snapshot failed", slog.Any("error", err))
		return err
	}
	log.Info("Snapshot paginated into PDF.", slog.Int("pages", pages))

	objectName := fmt.Sprintf("exports/%d/%s.pdf", row.UserID, uuid.NewString())
	pdfReader := bytes.NewReader(pdfBytes)
	if _, err := h.storage.UploadFile(ctx, objectName, pdfReader, int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	update := map[string]any{
		"pdf_object_key": objectName,
		"status":         string(resume.StatusComplete),
	}
	if err := h.db.WithContext(ctx).Model(&row).Updates(update).Error; err != nil {
		log.Error("update resume failed", slog.Any("error", err))
		return err
	}

	notify := PDFExportNotifyMessage{
		Status:        NotifyCompleted,
		ResumeID:      row.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		ErrorMessage:  "",
	}
	if err := h.publishPDFExportNotify(ctx, row.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("PDF export task completed successfully.")
	return nil
}

func (h *PDFTaskHandler) publishPDFExportNotify(ctx context.Context, userID uint, notify PDFExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

// exportFailureCode 把导出失败映射到通知错误码：
// 渲染目标缺失是内容问题（4004），其余一律系统错误（5000）。
func exportFailureCode(err error) int {
	if errors.Is(err, ErrRenderTargetMissing) {
		return errcode.RenderTargetMissing
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
