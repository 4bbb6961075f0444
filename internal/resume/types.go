package resume

// PersonalInfo 表示简历头部的个人信息。Name/Email 为必填，其余字段缺省时直接不渲染。
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// WorkExperience 表示一段工作经历。切片顺序即展示顺序（通常按时间倒序）。
type WorkExperience struct {
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	IsCurrent   bool   `json:"isCurrent,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education 表示一段教育经历，IsCurrent 的 "Present" 覆盖语义与 WorkExperience 一致。
type Education struct {
	InstitutionName string `json:"institutionName"`
	DegreeOrProgram string `json:"degreeOrProgram"`
	FieldOfStudy    string `json:"fieldOfStudy,omitempty"`
	StartDate       string `json:"startDate,omitempty"`
	EndDate         string `json:"endDate,omitempty"`
	IsCurrent       bool   `json:"isCurrent,omitempty"`
}

// Document 是预览与导出共享的简历快照。
// 各 section 为整体替换的值对象，元素没有独立身份，不做原地修改。
type Document struct {
	Title          string           `json:"title"`
	PersonalInfo   PersonalInfo     `json:"personal_info"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Skills         []string         `json:"skills"`
	Education      []Education      `json:"education"`
}

// Status 是简历的闭合状态枚举。
type Status string

const (
	StatusDraft    Status = "draft"
	StatusComplete Status = "complete"
)

// Valid 报告状态是否为已知取值。
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusComplete:
		return true
	}
	return false
}
