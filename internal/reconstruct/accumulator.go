package reconstruct

import "strings"

// Accumulator 流式累积器
// 持有一次重建的累积文本及已交付偏移量，片段严格按到达顺序处理，不是并发安全的。
type Accumulator struct {
	text    strings.Builder
	emitted int
	pushed  int
	closed  bool
}

// NewAccumulator 创建累积器
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Push 按空格启发式追加片段，返回新增的未交付后缀
// 返回空串时偏移量不变
func (a *Accumulator) Push(fragment string) (string, error) {
	if a.closed {
		return "", ErrClosed
	}
	a.pushed++

	piece := Join(a.text.String(), fragment)
	if piece == "" {
		return "", nil
	}
	a.text.WriteString(piece)

	return a.release(), nil
}

// Append 原样追加 s，不经过空格启发式 (用于诊断文本)
func (a *Accumulator) Append(s string) (string, error) {
	if a.closed {
		return "", ErrClosed
	}
	if s == "" {
		return "", nil
	}
	a.text.WriteString(s)
	return a.release(), nil
}

func (a *Accumulator) release() string {
	all := a.text.String()
	delta := all[a.emitted:]
	a.emitted = len(all)
	return delta
}

// Text 当前累积文本
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Emitted 已交付的字节偏移量
func (a *Accumulator) Emitted() int {
	return a.emitted
}

// Fragments 已接收的片段数
func (a *Accumulator) Fragments() int {
	return a.pushed
}

// Closed 是否已关闭
func (a *Accumulator) Closed() bool {
	return a.closed
}

// Close 关闭累积器并返回规范化后的全文
func (a *Accumulator) Close() string {
	a.closed = true
	return Normalize(a.text.String())
}

// Abort 关闭累积器，返回未规范化的累积文本
func (a *Accumulator) Abort() string {
	a.closed = true
	return a.text.String()
}
