package service

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"

	"lilly/internal/reconstruct"
)

// Reply 一次助手回复
// 包装重建流，在流结束或被关闭时释放会话轮次锁。不是并发安全的。
type Reply struct {
	stream      *reconstruct.Stream
	emptyAnswer string

	once    sync.Once
	release func()
}

func newReply(stream *reconstruct.Stream, release func(), emptyAnswer string) *Reply {
	return &Reply{
		stream:      stream,
		release:     release,
		emptyAnswer: emptyAnswer,
	}
}

// Recv 下一个增量块，结束时返回 io.EOF
func (r *Reply) Recv(ctx context.Context) ([]byte, error) {
	chunk, err := r.stream.Recv(ctx)
	if err != nil {
		r.done()
	}
	return chunk, err
}

// Chunks 以迭代器形式返回增量块，提前停止迭代会关闭回复
func (r *Reply) Chunks(ctx context.Context) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			chunk, err := r.Recv(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(chunk, nil) {
				r.Close()
				return
			}
		}
	}
}

// Result 规范化后的终值，流结束后可用
func (r *Reply) Result() (string, bool) {
	return r.stream.Result()
}

// Answer 读完整个回复，终值为空时返回替代文本
func (r *Reply) Answer(ctx context.Context) (string, error) {
	defer r.done()

	answer, err := r.stream.Collect(ctx)
	if err != nil {
		return "", err
	}
	// 传输失败时终值以诊断文本结尾，非流式调用不带结尾换行
	answer = strings.TrimSuffix(answer, "\n")
	if answer == "" {
		return r.emptyAnswer, nil
	}
	return answer, nil
}

// Close 放弃尚未结束的回复并释放轮次锁，可重复调用
func (r *Reply) Close() error {
	err := r.stream.Close()
	r.done()
	return err
}

func (r *Reply) done() {
	r.once.Do(func() {
		if r.release != nil {
			r.release()
		}
	})
}
