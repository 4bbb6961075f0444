package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：业务可恢复/告警类错误（例如渲染目标缺失，可人工重试）
// - 5xxx：系统错误（需要中断流程）
const (
	OK                  = 0
	RenderTargetMissing = 4004
	SystemError         = 5000
)
