package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
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

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newWebhookRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	router := gin.New()
	handler := NewWebhookHandler(db, discardLogger())
	router.Any("/webhooks/chatbot", handler.HandleChatbot)
	return router, db
}

func TestWebhookPreflight(t *testing.T) {
	router, _ := newWebhookRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/webhooks/chatbot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("preflight body should be empty, got %q", rec.Body.String())
	}
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization, X-Client-Info, Apikey",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}
}

func TestWebhookRejectsNonPost(t *testing.T) {
	router, _ := newWebhookRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/webhooks/chatbot", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s status = %d, want 405", method, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Method not allowed") {
			t.Errorf("%s body = %q", method, rec.Body.String())
		}
		// 错误响应同样携带 CORS 头。
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s missing CORS origin header", method)
		}
	}
}

func TestWebhookMissingRequiredFields(t *testing.T) {
	router, _ := newWebhookRouter(t)

	bodies := []string{
		`{}`,
		`{"userId": 1}`,
		`{"userId": 1, "title": "My Resume"}`,
		`{"title": "My Resume", "personalInfo": {"name": "Jane", "email": "j@e.com"}}`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/chatbot", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Missing required fields: userId, title, personalInfo") {
			t.Errorf("body %s: unexpected error message %q", body, rec.Body.String())
		}
	}
}

func TestWebhookInvalidJSON(t *testing.T) {
	router, _ := newWebhookRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/chatbot", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid JSON body") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestWebhookInvalidStatus(t *testing.T) {
	router, _ := newWebhookRouter(t)

	body := `{"userId": 1, "title": "My Resume", "personalInfo": {"name": "Jane", "email": "j@e.com"}, "status": "published"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/chatbot", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid status") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestWebhookSavesResume(t *testing.T) {
	router, db := newWebhookRouter(t)

	body := `{
		"userId": 7,
		"title": "Chatbot Resume",
		"personalInfo": {"name": "Jane Doe", "email": "jane@example.com"},
		"workExperience": [{"jobTitle": "Engineer", "companyName": "Acme", "startDate": "2020-01-01", "isCurrent": true}],
		"skills": ["Go", "Redis"]
	}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/chatbot", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success    bool   `json:"success"`
		Message    string `json:"message"`
		ResumeID   uint   `json:"resumeId"`
		ShareToken string `json:"shareToken"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Message != "Resume saved successfully" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.ResumeID == 0 || resp.ShareToken == "" {
		t.Fatalf("response missing identifiers: %+v", resp)
	}

	var row database.Resume
	if err := db.First(&row, resp.ResumeID).Error; err != nil {
		t.Fatalf("load saved resume: %v", err)
	}
	if row.UserID != 7 {
		t.Errorf("user_id = %d, want 7", row.UserID)
	}
	if row.Status != "complete" {
		t.Errorf("status = %q, want complete (default)", row.Status)
	}
	if row.TemplateName != "chatbot" {
		t.Errorf("template = %q, want chatbot", row.TemplateName)
	}
	if row.IsPublic {
		t.Errorf("new resume should not be public")
	}
	if !strings.HasSuffix(row.FileSize, " KB") {
		t.Errorf("file_size = %q, want KB suffix", row.FileSize)
	}
	if row.ShareToken != resp.ShareToken {
		t.Errorf("share token mismatch: %q vs %q", row.ShareToken, resp.ShareToken)
	}

	// 未提供 education 时落库为空数组而非 null。
	if string(row.Education) != "[]" {
		t.Errorf("education = %s, want []", row.Education)
	}
}

func TestWebhookPostRawBytesBody(t *testing.T) {
	router, _ := newWebhookRouter(t)

	payload := map[string]any{
		"userId":       3,
		"title":        "Resume",
		"personalInfo": map[string]string{"name": "A", "email": "a@b.c"},
		"status":       "draft",
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/webhooks/chatbot", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
