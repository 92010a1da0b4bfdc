package http

// 错误码
const (
	CodeBadRequest   = 40001 // 请求体无效
	CodeRateLimited  = 42901 // 会话请求过于频繁
	CodeClientClosed = 49901 // 客户端在等待轮次锁时断开
	CodeInternal     = 50001 // 内部错误
	CodePanic        = 50000 // panic 恢复
)

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码（非0表示错误）
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}
