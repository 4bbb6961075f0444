package database

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/chiranjibts89/Blu-Ko-AI/internal/resume"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;size:64"`
	PasswordHash string   `gorm:"size:255"`
	Resumes      []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 表示一份持久化的简历快照。
// 各 section 以 JSONB 整体存储、整体替换；ResumeData 保留摄入时的原始 payload。
type Resume struct {
	gorm.Model
	UserID         uint           `gorm:"index"`
	User           User           `gorm:"constraint:OnDelete:CASCADE"`
	Title          string         `gorm:"size:255"`
	ResumeName     string         `gorm:"size:255"`
	TemplateName   string         `gorm:"size:64"`
	ResumeData     datatypes.JSON `gorm:"type:jsonb"`
	PersonalInfo   datatypes.JSON `gorm:"type:jsonb"`
	WorkExperience datatypes.JSON `gorm:"type:jsonb"`
	Skills         datatypes.JSON `gorm:"type:jsonb"`
	Education      datatypes.JSON `gorm:"type:jsonb"`
	Status         string         `gorm:"size:32;default:draft"`
	FileSize       string         `gorm:"size:32"`
	ShareToken     string         `gorm:"uniqueIndex;size:64"`
	IsPublic       bool           `gorm:"default:false"`
	PdfObjectKey   string         `gorm:"size:512"`
}

// BeforeCreate 在存储层生成分享令牌，调用方不负责造 token。
func (r *Resume) BeforeCreate(_ *gorm.DB) error {
	if r.ShareToken == "" {
		r.ShareToken = uuid.NewString()
	}
	return nil
}

// Document 把 JSONB 字段解码为渲染用的简历快照。
func (r *Resume) Document() (resume.Document, error) {
	doc := resume.Document{Title: r.Title}

	if len(r.PersonalInfo) > 0 {
		if err := json.Unmarshal(r.PersonalInfo, &doc.PersonalInfo); err != nil {
			return resume.Document{}, fmt.Errorf("decode personal_info: %w", err)
		}
	}
	if len(r.WorkExperience) > 0 {
		if err := json.Unmarshal(r.WorkExperience, &doc.WorkExperience); err != nil {
			return resume.Document{}, fmt.Errorf("decode work_experience: %w", err)
		}
	}
	if len(r.Skills) > 0 {
		if err := json.Unmarshal(r.Skills, &doc.Skills); err != nil {
			return resume.Document{}, fmt.Errorf("decode skills: %w", err)
		}
	}
	if len(r.Education) > 0 {
		if err := json.Unmarshal(r.Education, &doc.Education); err != nil {
			return resume.Document{}, fmt.Errorf("decode education: %w", err)
		}
	}

	return doc, nil
}

// Profile 表示用户维护的个人资料主档。
type Profile struct {
	gorm.Model
	UserID              uint   `gorm:"uniqueIndex"`
	FullName            string `gorm:"size:255"`
	Email               string `gorm:"size:255"`
	Phone               string `gorm:"size:64"`
	Location            string `gorm:"size:255"`
	ProfessionalSummary string `gorm:"type:text"`
	ProfileCompleted    bool   `gorm:"default:false"`
}

// WorkExperience 表示资料库中的一段工作经历（生成简历时聚合）。
type WorkExperience struct {
	gorm.Model
	UserID      uint   `gorm:"index"`
	JobTitle    string `gorm:"size:255"`
	CompanyName string `gorm:"size:255"`
	Location    string `gorm:"size:255"`
	StartDate   string `gorm:"size:32"`
	EndDate     string `gorm:"size:32"`
	IsCurrent   bool
	Description string `gorm:"type:text"`
}

// Education 表示资料库中的一段教育经历。
type Education struct {
	gorm.Model
	UserID          uint   `gorm:"index"`
	InstitutionName string `gorm:"size:255"`
	DegreeOrProgram string `gorm:"size:255"`
	FieldOfStudy    string `gorm:"size:255"`
	StartDate       string `gorm:"size:32"`
	EndDate         string `gorm:"size:32"`
	IsCurrent       bool
}

// Skill 表示一条技能标签。
type Skill struct {
	gorm.Model
	UserID uint   `gorm:"index"`
	Name   string `gorm:"size:128"`
}

// Certification 表示一条认证记录。
type Certification struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	Name      string `gorm:"size:255"`
	Issuer    string `gorm:"size:255"`
	IssueDate string `gorm:"size:32"`
}

// Language 表示一条语言能力记录。
type Language struct {
	gorm.Model
	UserID      uint   `gorm:"index"`
	Name        string `gorm:"size:128"`
	Proficiency string `gorm:"size:64"`
}
