package backend

import (
	"context"
	"fmt"
	"sync"

	"lilly/internal/config"
	"lilly/internal/conversation"
	"lilly/internal/reconstruct"
)

// Backend 模型推理后端
// Open 不发起请求，返回的 Source 在第一次 Next 时才连接后端，
// 这样连接失败会作为流中的传输错误交付给调用方。
type Backend interface {
	Open(turns []conversation.Turn) reconstruct.Source
}

// New 根据配置创建后端
func New(ctx context.Context, cfg *config.BackendConfig) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderLlama:
		return NewLlama(cfg), nil
	case config.ProviderOpenAI, config.ProviderAzure, config.ProviderArk:
		return NewEino(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend provider: %s", cfg.Provider)
	}
}

// connectFunc 连接后端并返回事件来源
type connectFunc func(ctx context.Context) (reconstruct.Source, error)

// lazySource 第一次 Next 时才连接的 Source
type lazySource struct {
	connect connectFunc

	mu     sync.Mutex
	src    reconstruct.Source
	closed bool
}

func newLazySource(connect connectFunc) *lazySource {
	return &lazySource{connect: connect}
}

// Next 读取下一个事件，必要时先连接
func (s *lazySource) Next(ctx context.Context) (reconstruct.Event, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, reconstruct.ErrClosed
	}
	src := s.src
	s.mu.Unlock()

	if src == nil {
		var err error
		src, err = s.connect(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = src.Close()
			return nil, reconstruct.ErrClosed
		}
		s.src = src
		s.mu.Unlock()
	}

	return src.Next(ctx)
}

// Close 关闭底层连接
func (s *lazySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.src != nil {
		return s.src.Close()
	}
	return nil
}
