package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
	"github.com/chiranjibts89/Blu-Ko-AI/internal/export"
)

// ShareHandler 负责公开分享页的只读访问。
type ShareHandler struct {
	db *gorm.DB
}

// NewShareHandler 构造 ShareHandler。
func NewShareHandler(db *gorm.DB) *ShareHandler {
	return &ShareHandler{db: db}
}

// GetSharedResume 通过分享令牌读取公开简历。
// 查询同时匹配 share_token 与 is_public：未开启公开分享的简历即便令牌正确也不可见。
// 默认返回 JSON 快照；?format=html 返回渲染好的预览文档。
func (h *ShareHandler) GetSharedResume(c *gin.Context) {
	shareToken := strings.TrimSpace(c.Param("shareToken"))
	if shareToken == "" {
		BadRequest(c, "invalid share link")
		return
	}

	var row database.Resume
	err := h.db.WithContext(c.Request.Context()).
		Where("share_token = ? AND is_public = ?", shareToken, true).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Resume not found or is not publicly shared")
			return
		}
		Internal(c, "failed to query shared resume")
		return
	}

	if c.Query("format") == "html" {
		doc, err := row.Document()
		if err != nil {
			Internal(c, "failed to decode resume")
			return
		}
		htmlDoc, err := export.RenderHTML(doc)
		if err != nil {
			Internal(c, "failed to render resume")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(htmlDoc))
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(row))
}
