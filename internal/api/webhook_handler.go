package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/resume"
)

// WebhookHandler 接收聊天机器人回调，把对话收集到的简历数据落库。
// 该端点由外部 bot 平台直接调用，不走 /v1 的 JWT 鉴权。
type WebhookHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewWebhookHandler 构造 WebhookHandler。
func NewWebhookHandler(db *gorm.DB, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{db: db, logger: logger}
}

// chatbotPayload 是机器人平台提交的完整简历 payload。
type chatbotPayload struct {
	UserID         uint                    `json:"userId"`
	Title          string                  `json:"title"`
	PersonalInfo   *resume.PersonalInfo    `json:"personalInfo"`
	WorkExperience []resume.WorkExperience `json:"workExperience"`
	Skills         []string                `json:"skills"`
	Education      []resume.Education      `json:"education"`
	Status         resume.Status           `json:"status"`
}

func setWebhookCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Info, Apikey")
}

// HandleChatbot 处理 /webhooks/chatbot 的全部动词。
// OPTIONS 预检直接 200 空响应；除 POST 外一律 405。
func (h *WebhookHandler) HandleChatbot(c *gin.Context) {
	setWebhookCORSHeaders(c)

	// 兜底：任何未预期的 panic 收敛为结构化 500，不让 handler 崩溃。
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("chatbot webhook panicked", slog.Any("panic", r))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"details": fmt.Sprint(r),
			})
		}
	}()

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
		return
	case http.MethodPost:
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	var payload chatbotPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid JSON body",
			"details": err.Error(),
		})
		return
	}

	// 先做必填校验，任何持久化动作之前拒绝。
	if payload.UserID == 0 || payload.Title == "" || payload.PersonalInfo == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing required fields: userId, title, personalInfo",
		})
		return
	}

	if payload.Status == "" {
		payload.Status = resume.StatusComplete
	}
	if !payload.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid status: %s", payload.Status),
		})
		return
	}
	if payload.WorkExperience == nil {
		payload.WorkExperience = []resume.WorkExperience{}
	}
	if payload.Skills == nil {
		payload.Skills = []string{}
	}
	if payload.Education == nil {
		payload.Education = []resume.Education{}
	}

	rawPayload, err := json.Marshal(payload)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"details": err.Error(),
		})
		return
	}

	// 体积是序列化字节数的估算值，仅作展示，不追求与存储引擎一致。
	fileSize := fmt.Sprintf("%.2f KB", float64(len(rawPayload))/1024)

	row := database.Resume{
		UserID:         payload.UserID,
		Title:          payload.Title,
		ResumeName:     payload.Title,
		TemplateName:   "chatbot",
		ResumeData:     rawPayload,
		PersonalInfo:   mustJSON(payload.PersonalInfo),
		WorkExperience: mustJSON(payload.WorkExperience),
		Skills:         mustJSON(payload.Skills),
		Education:      mustJSON(payload.Education),
		Status:         string(payload.Status),
		FileSize:       fileSize,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		h.logger.Error("insert chatbot resume failed",
			slog.Uint64("user_id", uint64(payload.UserID)),
			slog.Any("error", err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save resume",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Resume saved successfully",
		"resumeId":   row.ID,
		"shareToken": row.ShareToken,
	})
}

func mustJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(data)
}
