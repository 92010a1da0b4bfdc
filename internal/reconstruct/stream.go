package reconstruct

import (
	"context"
	"errors"
	"io"
	"iter"

	"github.com/rs/zerolog/log"
)

// Turns 重建完成时接收助手回复的对话状态
type Turns interface {
	AppendAssistant(text string)
}

// Stream 一次流式重建 (拉取式)
// 调用方通过 Recv 逐块获取增量文本，块之间互不重叠，拼接后等于累积文本。
// Stream 不是并发安全的。
type Stream struct {
	src   Source
	turns Turns
	name  string
	acc   *Accumulator

	done      bool
	result    string
	hasResult bool
}

// NewStream 创建重建流
// name 为助手名称，用于诊断信息；turns 可以为 nil
func NewStream(src Source, turns Turns, name string) *Stream {
	return &Stream{
		src:   src,
		turns: turns,
		name:  name,
		acc:   NewAccumulator(),
	}
}

// Recv 返回下一个非空增量块
// 流结束后返回 io.EOF；ctx 取消时放弃本次重建并返回 ctx 的错误。
// 传输失败不会作为错误返回，而是以诊断文本作为最后一块交付。
func (s *Stream) Recv(ctx context.Context) ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		if err := ctx.Err(); err != nil {
			s.abandon()
			return nil, err
		}

		ev, err := s.src.Next(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				s.finish()
				return nil, io.EOF
			case ctx.Err() != nil:
				s.abandon()
				return nil, ctx.Err()
			default:
				return s.fail(err), nil
			}
		}

		switch e := ev.(type) {
		case EndOfStream:
			s.finish()
			return nil, io.EOF
		case TextFragment:
			delta, err := s.acc.Push(e.Text)
			if err != nil {
				return nil, err
			}
			if delta != "" {
				return []byte(delta), nil
			}
		}
	}
}

// finish 正常结束: 规范化全文并写入对话状态
func (s *Stream) finish() {
	raw := s.acc.Text()
	s.result = s.acc.Close()
	s.hasResult = true
	s.done = true
	if s.turns != nil {
		s.turns.AppendAssistant(s.result)
	}
	s.closeSource()

	log.Debug().
		Int("fragments", s.acc.Fragments()).
		Int("accumulated_len", len(raw)).
		Int("normalized_len", len(s.result)).
		Msg("reconstruction closed")
}

// fail 传输失败: 追加诊断文本，未规范化的累积文本原样写入对话状态
func (s *Stream) fail(cause error) []byte {
	diag := Diagnostic(s.name, cause)
	delta, _ := s.acc.Append(diag)
	s.result = s.acc.Abort()
	s.hasResult = true
	s.done = true
	if s.turns != nil {
		s.turns.AppendAssistant(s.result)
	}
	s.closeSource()

	log.Warn().Err(cause).
		Int("fragments", s.acc.Fragments()).
		Msg("reconstruction ended by transport failure")
	return []byte(delta)
}

// abandon 调用方放弃: 停止读取，不规范化，不写入对话状态
func (s *Stream) abandon() {
	if s.done {
		return
	}
	s.acc.Abort()
	s.done = true
	s.closeSource()

	log.Debug().Int("fragments", s.acc.Fragments()).Msg("reconstruction abandoned")
}

func (s *Stream) closeSource() {
	if err := s.src.Close(); err != nil {
		log.Debug().Err(err).Msg("close stream source")
	}
}

// Close 放弃尚未结束的重建；已结束时无操作
func (s *Stream) Close() error {
	s.abandon()
	return nil
}

// Result 返回终值；仅在流结束 (正常或传输失败) 后可用
func (s *Stream) Result() (string, bool) {
	return s.result, s.hasResult
}

// Chunks 以迭代器形式返回增量块，提前停止迭代等同于 Close
func (s *Stream) Chunks(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			chunk, err := s.Recv(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				s.Close()
				return
			}
		}
	}
}

// Collect 读完整个流并返回终值，供非流式调用方使用
func (s *Stream) Collect(ctx context.Context) (string, error) {
	for {
		_, err := s.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	result, _ := s.Result()
	return result, nil
}
