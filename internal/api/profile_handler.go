package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/database"
)

// ProfileHandler 负责用户资料主档与各 section 的读取维护。
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler 构造 ProfileHandler。
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

type profileResponse struct {
	FullName            string `json:"full_name"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	Location            string `json:"location,omitempty"`
	ProfessionalSummary string `json:"professional_summary,omitempty"`
	ProfileCompleted    bool   `json:"profile_completed"`
}

// getOrCreateProfile 是读即建的幂等操作：首次读取在同一事务内建出空白主档，
// 并发的首次读取收敛到同一行，不存在读后插的双写窗口。
func (h *ProfileHandler) getOrCreateProfile(ctx context.Context, userID uint) (database.Profile, error) {
	var profile database.Profile
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Where(database.Profile{UserID: userID}).
			FirstOrCreate(&profile).Error
	})
	return profile, err
}

// GetProfile 返回当前用户的资料主档，不存在时创建空白主档。
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	profile, err := h.getOrCreateProfile(c.Request.Context(), userID)
	if err != nil {
		Internal(c, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		FullName:            profile.FullName,
		Email:               profile.Email,
		Phone:               profile.Phone,
		Location:            profile.Location,
		ProfessionalSummary: profile.ProfessionalSummary,
		ProfileCompleted:    profile.ProfileCompleted,
	})
}

type updateProfileRequest struct {
	FullName            string `json:"full_name" binding:"required"`
	Email               string `json:"email" binding:"required,email"`
	Phone               string `json:"phone"`
	Location            string `json:"location"`
	ProfessionalSummary string `json:"professional_summary"`
}

// UpdateProfile 覆盖资料主档并标记已完成。
// 失败不会丢弃客户端表单状态，调用方可直接重试。
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	profile, err := h.getOrCreateProfile(ctx, userID)
	if err != nil {
		Internal(c, "failed to load profile")
		return
	}

	updates := map[string]any{
		"full_name":            req.FullName,
		"email":                req.Email,
		"phone":                req.Phone,
		"location":             req.Location,
		"professional_summary": req.ProfessionalSummary,
		"profile_completed":    true,
	}
	if err := h.db.WithContext(ctx).Model(&profile).Updates(updates).Error; err != nil {
		Internal(c, "failed to update profile")
		return
	}

	c.Status(http.StatusNoContent)
}

type profileSectionsResponse struct {
	WorkExperiences []database.WorkExperience `json:"work_experiences"`
	Education       []database.Education      `json:"education"`
	Skills          []database.Skill          `json:"skills"`
	Certifications  []database.Certification  `json:"certifications"`
	Languages       []database.Language       `json:"languages"`
}

// GetSections 一次性返回资料库的全部 section，供前端表单回显。
func (h *ProfileHandler) GetSections(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var resp profileSectionsResponse

	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&resp.WorkExperiences).Error; err != nil {
		Internal(c, "failed to load work experiences")
		return
	}
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&resp.Education).Error; err != nil {
		Internal(c, "failed to load education")
		return
	}
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&resp.Skills).Error; err != nil {
		Internal(c, "failed to load skills")
		return
	}
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&resp.Certifications).Error; err != nil {
		Internal(c, "failed to load certifications")
		return
	}
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Find(&resp.Languages).Error; err != nil {
		Internal(c, "failed to load languages")
		return
	}

	c.JSON(http.StatusOK, resp)
}
