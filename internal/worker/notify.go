package worker

// NotifyStatus 是导出通知的闭合状态枚举。
type NotifyStatus string

const (
	NotifyCompleted NotifyStatus = "completed"
	NotifyError     NotifyStatus = "error"
)

// 统一的 WebSocket 消息协议（通过 Redis Pub/Sub 转发给前端）。
// 注意：这里的字段名与前端解析保持一致。
type PDFExportNotifyMessage struct {
	Status        NotifyStatus `json:"status"`
	ResumeID      uint         `json:"resume_id"`
	CorrelationID string       `json:"correlation_id"`
	ErrorCode     int          `json:"error_code"`
	ErrorMessage  string       `json:"error_message"`
}
