package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 代理模块错误 300xx
	ErrUpstreamUnavailable = 30001
	ErrMethodNotAllowed    = 30002

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
