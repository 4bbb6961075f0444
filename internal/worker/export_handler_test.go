package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/errcode"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/tasks"
)

type fakePublisher struct {
	channels []string
	payloads [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channels = append(f.channels, channel)
	if data, ok := message.([]byte); ok {
		f.payloads = append(f.payloads, data)
	}
	return redis.NewIntCmd(ctx)
}

func newWorkerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestHandler(db *gorm.DB, publisher *fakePublisher) *PDFTaskHandler {
	return &PDFTaskHandler{
		db:          db,
		redisClient: publisher,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExportFailureCode(t *testing.T) {
	// 包裹后的渲染目标缺失错误仍被识别。
	wrapped := fmt.Errorf("%w: element #resume-preview not found", ErrRenderTargetMissing)
	if got := exportFailureCode(wrapped); got != errcode.RenderTargetMissing {
		t.Fatalf("code = %d, want %d", got, errcode.RenderTargetMissing)
	}

	if got := exportFailureCode(errors.New("chromium crashed")); got != errcode.SystemError {
		t.Fatalf("code = %d, want %d", got, errcode.SystemError)
	}
}

func TestPublishPDFExportNotify(t *testing.T) {
	publisher := &fakePublisher{}
	h := newTestHandler(nil, publisher)

	notify := PDFExportNotifyMessage{
		Status:        NotifyError,
		ResumeID:      12,
		CorrelationID: "corr-1",
		ErrorCode:     errcode.RenderTargetMissing,
		ErrorMessage:  "rendering target missing",
	}
	if err := h.publishPDFExportNotify(context.Background(), 42, notify); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(publisher.channels) != 1 || publisher.channels[0] != "user_notify:42" {
		t.Fatalf("channels = %v, want [user_notify:42]", publisher.channels)
	}

	var got PDFExportNotifyMessage
	if err := json.Unmarshal(publisher.payloads[0], &got); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got != notify {
		t.Fatalf("payload = %+v, want %+v", got, notify)
	}
}

func TestProcessTaskSkipsMissingResume(t *testing.T) {
	db := newWorkerTestDB(t)
	publisher := &fakePublisher{}
	h := newTestHandler(db, publisher)

	task, err := tasks.NewPDFExportTask(9999, "corr-1")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	// 行已不存在：任务吞掉而非重试，也不向用户推送。
	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask = %v, want nil for missing resume", err)
	}
	if len(publisher.channels) != 0 {
		t.Fatalf("unexpected notifications: %v", publisher.channels)
	}
}

func TestProcessTaskNoErrorNotifyBeforeFinalAttempt(t *testing.T) {
	db := newWorkerTestDB(t)
	publisher := &fakePublisher{}
	h := newTestHandler(db, publisher)

	// 损坏的 JSONB 让任务在解码阶段失败。
	row := database.Resume{
		UserID:       7,
		Title:        "Broken",
		PersonalInfo: datatypes.JSON([]byte("{not json")),
		Status:       "complete",
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed resume: %v", err)
	}

	task, err := tasks.NewPDFExportTask(row.ID, "corr-2")
	if err != nil {
		t.Fatalf("build task: %v", err)
	}

	if err := h.ProcessTask(context.Background(), task); err == nil {
		t.Fatalf("ProcessTask should fail on corrupt sections")
	}

	// 上下文中没有重试元数据（非末次尝试），错误通知不发。
	if len(publisher.channels) != 0 {
		t.Fatalf("error notify sent before final attempt: %v", publisher.channels)
	}
}

func TestIsFinalAsynqAttemptWithoutMetadata(t *testing.T) {
	if isFinalAsynqAttempt(context.Background()) {
		t.Fatalf("context without asynq metadata must not count as final attempt")
	}
}
