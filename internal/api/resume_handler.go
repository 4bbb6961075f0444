package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/api/middleware"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/export"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/resume"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/storage"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/tasks"
)

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	db            *gorm.DB
	asynqClient   *asynq.Client
	storage       *storage.Client
	publicBaseURL string
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(db *gorm.DB, asynqClient *asynq.Client, storageClient *storage.Client, publicBaseURL string) *ResumeHandler {
	return &ResumeHandler{
		db:            db,
		asynqClient:   asynqClient,
		storage:       storageClient,
		publicBaseURL: publicBaseURL,
	}
}

var errInvalidResumeID = errors.New("invalid resume id")

type resumeListItem struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	ResumeName   string    `json:"resume_name"`
	TemplateName string    `json:"template_name"`
	Status       string    `json:"status"`
	FileSize     string    `json:"file_size"`
	IsPublic     bool      `json:"is_public"`
	ShareToken   string    `json:"share_token"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type resumeResponse struct {
	resumeListItem
	PersonalInfo   datatypes.JSON `json:"personal_info"`
	WorkExperience datatypes.JSON `json:"work_experience"`
	Skills         datatypes.JSON `json:"skills"`
	Education      datatypes.JSON `json:"education"`
}

func newResumeListItem(r database.Resume) resumeListItem {
	return resumeListItem{
		ID:           r.ID,
		Title:        r.Title,
		ResumeName:   r.ResumeName,
		TemplateName: r.TemplateName,
		Status:       r.Status,
		FileSize:     r.FileSize,
		IsPublic:     r.IsPublic,
		ShareToken:   r.ShareToken,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func newResumeResponse(r database.Resume) resumeResponse {
	return resumeResponse{
		resumeListItem: newResumeListItem(r),
		PersonalInfo:   r.PersonalInfo,
		WorkExperience: r.WorkExperience,
		Skills:         r.Skills,
		Education:      r.Education,
	}
}

// ListResumes 按创建时间倒序列出用户全部简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var resumes []database.Resume
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&resumes).Error; err != nil {
		Internal(c, "failed to list resumes")
		return
	}

	items := make([]resumeListItem, 0, len(resumes))
	for _, r := range resumes {
		items = append(items, newResumeListItem(r))
	}

	c.JSON(http.StatusOK, items)
}

// GetResume 返回指定 ID 的简历。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondResumeLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*row))
}

// GenerateResume 聚合用户资料库的各个 section，生成一份新的简历快照。
func (h *ResumeHandler) GenerateResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()

	var profile database.Profile
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "profile is empty, fill it in before generating a resume")
			return
		}
		Internal(c, "failed to load profile")
		return
	}

	var workRows []database.WorkExperience
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&workRows).Error; err != nil {
		Internal(c, "failed to load work experiences")
		return
	}

	var eduRows []database.Education
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&eduRows).Error; err != nil {
		Internal(c, "failed to load education")
		return
	}

	var skillRows []database.Skill
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&skillRows).Error; err != nil {
		Internal(c, "failed to load skills")
		return
	}

	var certRows []database.Certification
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&certRows).Error; err != nil {
		Internal(c, "failed to load certifications")
		return
	}

	var langRows []database.Language
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&langRows).Error; err != nil {
		Internal(c, "failed to load languages")
		return
	}

	personalInfo := resume.PersonalInfo{
		Name:     profile.FullName,
		Email:    profile.Email,
		Phone:    profile.Phone,
		Location: profile.Location,
	}

	workExperience := make([]resume.WorkExperience, 0, len(workRows))
	for _, w := range workRows {
		workExperience = append(workExperience, resume.WorkExperience{
			JobTitle:    w.JobTitle,
			CompanyName: w.CompanyName,
			Location:    w.Location,
			StartDate:   w.StartDate,
			EndDate:     w.EndDate,
			IsCurrent:   w.IsCurrent,
			Description: w.Description,
		})
	}

	education := make([]resume.Education, 0, len(eduRows))
	for _, e := range eduRows {
		education = append(education, resume.Education{
			InstitutionName: e.InstitutionName,
			DegreeOrProgram: e.DegreeOrProgram,
			FieldOfStudy:    e.FieldOfStudy,
			StartDate:       e.StartDate,
			EndDate:         e.EndDate,
			IsCurrent:       e.IsCurrent,
		})
	}

	skills := make([]string, 0, len(skillRows))
	for _, s := range skillRows {
		skills = append(skills, s.Name)
	}

	// 原始 payload 保留 certifications/languages，渲染路径目前只消费四个核心 section。
	rawData := mustJSON(gin.H{
		"profile":         profile,
		"workExperiences": workRows,
		"skills":          skillRows,
		"certifications":  certRows,
		"education":       eduRows,
		"languages":       langRows,
	})

	title := fmt.Sprintf("Resume - %s", time.Now().Format("2006-01-02"))
	fileSize := fmt.Sprintf("%.2f KB", float64(len(rawData))/1024)

	row := database.Resume{
		UserID:         userID,
		Title:          title,
		ResumeName:     title,
		TemplateName:   "professional",
		ResumeData:     rawData,
		PersonalInfo:   mustJSON(personalInfo),
		WorkExperience: mustJSON(workExperience),
		Skills:         mustJSON(skills),
		Education:      mustJSON(education),
		Status:         string(resume.StatusComplete),
		FileSize:       fileSize,
	}

	if err := h.db.WithContext(ctx).Create(&row).Error; err != nil {
		Internal(c, "failed to create resume")
		return
	}

	c.JSON(http.StatusCreated, newResumeResponse(row))
}

// DeleteResume 删除指定简历，并顺带清理已生成的 PDF 对象。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondResumeLookupError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Delete(&database.Resume{}, row.ID).Error; err != nil {
		Internal(c, "failed to delete resume")
		return
	}

	if row.PdfObjectKey != "" && h.storage != nil {
		if err := h.storage.DeleteObject(ctx, row.PdfObjectKey); err != nil {
			middleware.LoggerFromContext(c).Warn("delete generated pdf failed", "object_key", row.PdfObjectKey, "error", err)
		}
	}

	c.Status(http.StatusNoContent)
}

// ShareResume 打开公开分享开关并返回分享链接。
func (h *ResumeHandler) ShareResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondResumeLookupError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(row).Update("is_public", true).Error; err != nil {
		Internal(c, "failed to share resume")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"share_token": row.ShareToken,
		"share_url":   fmt.Sprintf("%s/shared-resume/%s", h.publicBaseURL, row.ShareToken),
	})
}

// UnshareResume 关闭公开分享开关。分享令牌保持不变，重新打开后旧链接继续有效。
func (h *ResumeHandler) UnshareResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondResumeLookupError(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(row).Update("is_public", false).Error; err != nil {
		Internal(c, "failed to unshare resume")
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportHTML 把简历序列化为独立 HTML 文档并以附件返回。
// 纯序列化路径，无异步环节。
func (h *ResumeHandler) ExportHTML(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondResumeLookupError(c, err)
		return
	}

	doc, err := row.Document()
	if err != nil {
		Internal(c, "failed to decode resume")
		return
	}

	htmlDoc, err := export.RenderHTML(doc)
	if err != nil {
		if errors.Is(err, export.ErrEmptyTitle) {
			BadRequest(c, "resume title is empty")
			return
		}
		Internal(c, "failed to render resume")
		return
	}

	filename := resume.ExportFilename(row.Title, "html")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(htmlDoc))
}

// ExportPDF 将 PDF 导出任务入队并立即返回 202。
func (h *ResumeHandler) ExportPDF(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondResumeLookupError(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewPDFExportTask(row.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue pdf export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "PDF export request accepted",
		"task_id": info.ID,
	})
}

// GetDownloadLink 生成简历 PDF 的预签名下载链接。
func (h *ResumeHandler) GetDownloadLink(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.respondResumeLookupError(c, err)
		return
	}

	if row.PdfObjectKey == "" {
		Conflict(c, "pdf not ready")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(c.Request.Context(), row.PdfObjectKey, 5*time.Minute)
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *ResumeHandler) respondResumeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidResumeID):
		BadRequest(c, "invalid resume id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "resume not found")
	default:
		Internal(c, "failed to query resume")
	}
}

func (h *ResumeHandler) getResumeForUser(ctx context.Context, idParam string, userID uint) (*database.Resume, error) {
	resumeID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidResumeID
	}

	var row database.Resume
	if err := h.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(resumeID), userID).
		First(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}
