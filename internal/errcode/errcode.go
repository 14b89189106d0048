package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：业务可恢复/告警类错误（例如资源缺失但流程可继续）
// - 5xxx：系统错误（需要中断流程）
const (
	OK              = 0
	ResourceMissing = 4004
	// FallbackUsed 表示结果可用但来自兜底内容，例如文本生成服务不可用。
	FallbackUsed = 4100
	// InvalidRequest 表示导出前置条件不满足，例如未知格式或缺少预览页面。
	InvalidRequest = 4220
	SystemError    = 5000
	RenderFailed   = 5010
	DeliverFailed  = 5020
)
