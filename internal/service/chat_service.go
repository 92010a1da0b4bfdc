package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"lilly/internal/backend"
	"lilly/internal/config"
	"lilly/internal/conversation"
	"lilly/internal/reconstruct"
)

// ChatService 对话服务 - 业务逻辑层
// 职责: 串行化会话轮次，用会话快照组织请求，把后端输出交给重建流
type ChatService struct {
	backend   backend.Backend
	store     *conversation.Store
	assistant config.AssistantConfig
}

// NewChatService 创建对话服务
func NewChatService(b backend.Backend, store *conversation.Store, assistant config.AssistantConfig) *ChatService {
	if assistant.Name == "" {
		assistant.Name = "Lilly"
	}
	if assistant.EmptyAnswer == "" {
		assistant.EmptyAnswer = "No answer returned."
	}
	return &ChatService{
		backend:   b,
		store:     store,
		assistant: assistant,
	}
}

// Chat 发送一条用户消息
// 业务流程: 1. 获取轮次锁 -> 2. 追加用户消息 -> 3. 按快照打开后端 -> 4. 返回重建流
// 等待轮次锁期间 ctx 取消时返回错误；返回的 Reply 结束或关闭时释放轮次锁
func (s *ChatService) Chat(ctx context.Context, sessionID, message string) (*Reply, error) {
	sess := s.store.Session(ctx, sessionID)
	if err := sess.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("wait for session turn: %w", err)
	}

	sess.AppendUser(ctx, message)
	src := s.backend.Open(sess.Snapshot())

	log.Debug().
		Str("session_id", sessionID).
		Int("message_len", len(message)).
		Msg("chat turn opened")

	return newReply(reconstruct.NewStream(src, sess, s.assistant.Name), sess.Release, s.assistant.EmptyAnswer), nil
}

// EnrichCVE 生成 CVE 的技术解读
func (s *ChatService) EnrichCVE(ctx context.Context, sessionID, cveID, description string) (*Reply, error) {
	return s.Chat(ctx, sessionID, EnrichCVEPrompt(cveID, description))
}

// SimplifyCVE 生成 CVE 的通俗解释
func (s *ChatService) SimplifyCVE(ctx context.Context, sessionID, cveID, description string) (*Reply, error) {
	return s.Chat(ctx, sessionID, SimplifyCVEPrompt(cveID, description))
}

// Clear 重置会话，只保留系统消息
// 等待进行中的轮次结束后再清空
func (s *ChatService) Clear(ctx context.Context, sessionID string) error {
	sess := s.store.Session(ctx, sessionID)
	if err := sess.Acquire(ctx); err != nil {
		return fmt.Errorf("wait for session turn: %w", err)
	}
	defer sess.Release()

	sess.Clear(ctx)
	log.Info().Str("session_id", sessionID).Msg("conversation cleared")
	return nil
}

// History 会话当前的消息序列
func (s *ChatService) History(ctx context.Context, sessionID string) []conversation.Turn {
	return s.store.Session(ctx, sessionID).Snapshot()
}
