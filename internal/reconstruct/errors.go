package reconstruct

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport 访问后端时的网络或连接失败，传输层以 %w 包装底层原因
	ErrTransport = errors.New("transport error")

	// ErrClosed 重建结束后继续追加片段
	ErrClosed = errors.New("reconstruction closed")
)

// StatusError 后端返回非成功状态码
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded with status %d", e.Code)
}

// Diagnostic 将错误渲染为方括号诊断文本，作为流的最后一块交付给调用方
// name 为助手名称
func Diagnostic(name string, err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("[%s API error: %d]\n", name, statusErr.Code)
	case errors.Is(err, ErrTransport):
		return fmt.Sprintf("[Error contacting %s API: %v]\n", name, err)
	default:
		return fmt.Sprintf("[Unexpected streaming error: %v]\n", err)
	}
}
