package conversation

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Session 一个调用方的会话
// 同一会话内的重建由轮次锁串行化。
type Session struct {
	id    string
	store *Store
	state *State
	turn  *semaphore.Weighted
}

func newSession(store *Store, id string, state *State) *Session {
	return &Session{
		id:    id,
		store: store,
		state: state,
		turn:  semaphore.NewWeighted(1),
	}
}

// ID 会话 ID
func (s *Session) ID() string {
	return s.id
}

// Acquire 获取轮次锁，ctx 取消时返回错误
// 持有期间会话不会被 LRU 淘汰替换
func (s *Session) Acquire(ctx context.Context) error {
	if err := s.turn.Acquire(ctx, 1); err != nil {
		return err
	}
	s.store.pin(s)
	return nil
}

// TryAcquire 非阻塞获取轮次锁
func (s *Session) TryAcquire() bool {
	if !s.turn.TryAcquire(1) {
		return false
	}
	s.store.pin(s)
	return true
}

// Release 释放轮次锁
func (s *Session) Release() {
	s.store.unpin(s)
	s.turn.Release(1)
}

// AppendUser 追加用户消息并持久化
func (s *Session) AppendUser(ctx context.Context, text string) {
	t := Turn{Role: RoleUser, Text: text}
	s.state.AppendUser(text)
	s.store.persist(ctx, s, t)
}

// AppendAssistant 追加助手回复并持久化
// 在重建结束时调用，没有请求上下文可用
func (s *Session) AppendAssistant(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	t := Turn{Role: RoleAssistant, Text: text}
	s.state.AppendAssistant(text)
	s.store.persist(ctx, s, t)
}

// Snapshot 当前消息序列
func (s *Session) Snapshot() []Turn {
	return s.state.Snapshot()
}

// Clear 重置对话
func (s *Session) Clear(ctx context.Context) {
	s.state.Clear()
	s.store.cleared(ctx, s)
}
