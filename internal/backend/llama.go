package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"lilly/internal/config"
	"lilly/internal/conversation"
	"lilly/internal/reconstruct"
)

const defaultRetryDelay = 500 * time.Millisecond

// chatMessage OpenAI 兼容的消息格式
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest OpenAI 兼容的 chat/completions 请求体
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
}

// Llama llama.cpp server (OpenAI 兼容) 流式后端
type Llama struct {
	cfg    *config.BackendConfig
	client *http.Client
}

// NewLlama 创建 llama 后端
// 流式响应不设置整体超时，只限制等待响应头的时间
func NewLlama(cfg *config.BackendConfig) *Llama {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout

	return &Llama{
		cfg:    cfg,
		client: &http.Client{Transport: transport},
	}
}

// Open 返回延迟连接的行来源
func (b *Llama) Open(turns []conversation.Turn) reconstruct.Source {
	return newLazySource(func(ctx context.Context) (reconstruct.Source, error) {
		return b.connect(ctx, turns)
	})
}

func (b *Llama) buildRequest(turns []conversation.Turn) chatRequest {
	req := chatRequest{
		Model:    b.cfg.Model,
		Messages: make([]chatMessage, 0, len(turns)),
		Stream:   true,
	}
	for _, t := range turns {
		req.Messages = append(req.Messages, chatMessage{Role: t.Role, Content: t.Text})
	}

	// 模型参数
	opts := b.cfg.Options
	if opts.Temperature > 0 {
		req.Temperature = &opts.Temperature
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = &opts.MaxTokens
	}
	if opts.TopP > 0 {
		req.TopP = &opts.TopP
	}
	return req
}

func (b *Llama) connect(ctx context.Context, turns []conversation.Turn) (reconstruct.Source, error) {
	body, err := json.Marshal(b.buildRequest(turns))
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create chat request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")
		if b.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
		}

		resp, err := b.client.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", reconstruct.ErrTransport, err)
		}

		if resp.StatusCode == http.StatusServiceUnavailable && attempt < b.cfg.MaxRetries {
			// 模型加载中，退避后重试
			drain(resp)
			log.Warn().Int("attempt", attempt+1).Str("url", b.cfg.URL).Msg("backend unavailable, retrying")
			if err := b.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= http.StatusBadRequest {
			drain(resp)
			return nil, &reconstruct.StatusError{Code: resp.StatusCode}
		}

		return reconstruct.NewLineSource(resp.Body), nil
	}
}

// backoff 指数退避等待，ctx 取消时提前返回
func (b *Llama) backoff(ctx context.Context, attempt int) error {
	base := b.cfg.RetryDelay
	if base <= 0 {
		base = defaultRetryDelay
	}

	timer := time.NewTimer(base * time.Duration(1<<attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
