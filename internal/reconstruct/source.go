package reconstruct

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// maxLineSize 单行传输负载的上限
const maxLineSize = 1024 * 1024

// Source 传输层事件来源
// Next 在上游正常结束时返回 io.EOF
type Source interface {
	Next(ctx context.Context) (Event, error)
	Close() error
}

// LineSource 逐行读取传输流并解析为 Event
type LineSource struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

// NewLineSource 创建行读取来源，Close 时关闭 rc
func NewLineSource(rc io.ReadCloser) *LineSource {
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LineSource{
		rc:      rc,
		scanner: scanner,
	}
}

// Next 读取下一行
func (s *LineSource) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return nil, io.EOF
	}
	return ParseLine(s.scanner.Text()), nil
}

// Close 关闭底层读取器
func (s *LineSource) Close() error {
	return s.rc.Close()
}
