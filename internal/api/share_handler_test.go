package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/resume"
)

func newShareRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	router := gin.New()
	handler := NewShareHandler(db)
	router.GET("/shared-resume/:shareToken", handler.GetSharedResume)
	return router, db
}

func seedResume(t *testing.T, db *gorm.DB, isPublic bool) database.Resume {
	t.Helper()
	row := database.Resume{
		UserID:       1,
		Title:        "Shared Resume",
		ResumeName:   "Shared Resume",
		TemplateName: "professional",
		PersonalInfo: mustJSON(resume.PersonalInfo{Name: "Jane Doe", Email: "jane@example.com"}),
		WorkExperience: mustJSON([]resume.WorkExperience{{
			JobTitle:    "Engineer",
			CompanyName: "Acme",
			StartDate:   "2020-01-01",
			IsCurrent:   true,
		}}),
		Skills:    mustJSON([]string{"Go"}),
		Education: mustJSON([]resume.Education{}),
		Status:    string(resume.StatusComplete),
		IsPublic:  isPublic,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed resume: %v", err)
	}
	return row
}

func TestGetSharedResume(t *testing.T) {
	router, db := newShareRouter(t)
	row := seedResume(t, db, true)

	req := httptest.NewRequest(http.MethodGet, "/shared-resume/"+row.ShareToken, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["title"] != "Shared Resume" {
		t.Errorf("title = %v", resp["title"])
	}
}

func TestGetSharedResumeHTMLFormat(t *testing.T) {
	router, db := newShareRouter(t)
	row := seedResume(t, db, true)

	req := httptest.NewRequest(http.MethodGet, "/shared-resume/"+row.ShareToken+"?format=html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `<div id="resume-preview">`) {
		t.Errorf("html output missing preview container")
	}
	if !strings.Contains(body, "Jane Doe") {
		t.Errorf("html output missing name")
	}
}

func TestGetSharedResumeNotPublic(t *testing.T) {
	router, db := newShareRouter(t)
	row := seedResume(t, db, false)

	// 令牌正确但未公开，仍然 404。
	req := httptest.NewRequest(http.MethodGet, "/shared-resume/"+row.ShareToken, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Resume not found or is not publicly shared") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestGetSharedResumeUnknownToken(t *testing.T) {
	router, db := newShareRouter(t)
	seedResume(t, db, true)

	req := httptest.NewRequest(http.MethodGet, "/shared-resume/no-such-token", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Resume not found or is not publicly shared") {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestUnshareHidesResume(t *testing.T) {
	router, db := newShareRouter(t)
	row := seedResume(t, db, true)

	if err := db.Model(&row).Update("is_public", false).Error; err != nil {
		t.Fatalf("unshare: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/shared-resume/"+row.ShareToken, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status after unshare = %d, want 404", rec.Code)
	}
}
