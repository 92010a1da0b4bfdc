package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// 默认值
const (
	DefaultMaxSessions = 1024
	DefaultSnapshotTTL = 30 * time.Minute
	snapshotKeyPrefix  = "lilly:conv:"
	persistTimeout     = 5 * time.Second
)

// Cache 会话快照缓存 (Redis)
type Cache interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
}

// Archive 对话归档 (MongoDB)，只追加
type Archive interface {
	AppendTurns(ctx context.Context, sessionID string, turns ...Turn) error
	MarkCleared(ctx context.Context, sessionID string) error
}

// StoreOptions 会话仓库配置
type StoreOptions struct {
	SystemPrompt string
	MaxSessions  int
	SnapshotTTL  time.Duration
	Cache        Cache   // 可选
	Archive      Archive // 可选
}

// Store 会话仓库
// 每个会话持有独立的对话状态，内存中最多保留 MaxSessions 个，按 LRU 淘汰；
// 配置了 Cache 时，被淘汰的会话在下次访问时从快照恢复。
// 持有轮次锁的会话被钉住: 即使从 LRU 中淘汰，同一 ID 仍返回该会话。
type Store struct {
	opts     StoreOptions
	mu       sync.Mutex
	sessions *lru.Cache
	active   map[string]*Session // 持有轮次锁的会话，受 mu 保护
}

// NewStore 创建会话仓库
func NewStore(opts StoreOptions) (*Store, error) {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = DefaultSnapshotTTL
	}

	sessions, err := lru.NewWithEvict(opts.MaxSessions, func(key, _ interface{}) {
		log.Debug().Interface("session_id", key).Msg("session evicted")
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session registry: %w", err)
	}

	return &Store{
		opts:     opts,
		sessions: sessions,
		active:   make(map[string]*Session),
	}, nil
}

// SnapshotKey 会话快照的缓存 key
func SnapshotKey(sessionID string) string {
	return snapshotKeyPrefix + sessionID
}

// Session 获取会话，不存在时创建 (优先从快照恢复)
func (s *Store) Session(ctx context.Context, id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.active[id]; ok {
		s.sessions.Add(id, sess)
		return sess
	}
	if v, ok := s.sessions.Get(id); ok {
		return v.(*Session)
	}

	sess := newSession(s, id, NewState(s.opts.SystemPrompt))
	s.restore(ctx, sess)
	s.sessions.Add(id, sess)
	return sess
}

// Len 内存中的会话数
func (s *Store) Len() int {
	return s.sessions.Len()
}

// pin 会话获得轮次锁后调用，该会话成为此 ID 的唯一实例
func (s *Store) pin(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active[sess.id] = sess
	if v, ok := s.sessions.Peek(sess.id); !ok || v.(*Session) != sess {
		s.sessions.Add(sess.id, sess)
	}
}

func (s *Store) unpin(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[sess.id] == sess {
		delete(s.active, sess.id)
	}
}

func (s *Store) restore(ctx context.Context, sess *Session) {
	if s.opts.Cache == nil {
		return
	}

	var turns []Turn
	err := s.opts.Cache.Get(ctx, SnapshotKey(sess.id), &turns)
	switch {
	case errors.Is(err, redis.Nil):
		return
	case err != nil:
		log.Warn().Err(err).Str("session_id", sess.id).Msg("failed to load conversation snapshot")
		return
	}

	sess.state.Restore(turns)
	log.Debug().Str("session_id", sess.id).Int("turns", len(turns)).Msg("conversation restored")
}

// persist 保存快照并归档新增的消息，失败只记录日志
func (s *Store) persist(ctx context.Context, sess *Session, added ...Turn) {
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Set(ctx, SnapshotKey(sess.id), sess.state.Snapshot(), s.opts.SnapshotTTL); err != nil {
			log.Warn().Err(err).Str("session_id", sess.id).Msg("failed to save conversation snapshot")
		}
	}
	if s.opts.Archive != nil && len(added) > 0 {
		if err := s.opts.Archive.AppendTurns(ctx, sess.id, added...); err != nil {
			log.Warn().Err(err).Str("session_id", sess.id).Msg("failed to archive conversation turns")
		}
	}
}

func (s *Store) cleared(ctx context.Context, sess *Session) {
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Delete(ctx, SnapshotKey(sess.id)); err != nil {
			log.Warn().Err(err).Str("session_id", sess.id).Msg("failed to delete conversation snapshot")
		}
	}
	if s.opts.Archive != nil {
		if err := s.opts.Archive.MarkCleared(ctx, sess.id); err != nil {
			log.Warn().Err(err).Str("session_id", sess.id).Msg("failed to mark conversation cleared")
		}
	}
}
