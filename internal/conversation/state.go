package conversation

import "sync"

// 角色
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultSystemPrompt 默认系统提示词
const DefaultSystemPrompt = "You are Lilly, a helpful cybersecurity assistant."

// Turn 一轮对话消息
type Turn struct {
	Role string `json:"role" bson:"role"`
	Text string `json:"content" bson:"content"`
}

// State 对话状态
// 有序的消息序列，第一条始终是唯一的系统消息
type State struct {
	mu           sync.RWMutex
	systemPrompt string
	turns        []Turn
}

// NewState 创建对话状态，systemPrompt 为空时使用默认值
func NewState(systemPrompt string) *State {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	s := &State{systemPrompt: systemPrompt}
	s.reset()
	return s
}

func (s *State) reset() {
	s.turns = []Turn{{Role: RoleSystem, Text: s.systemPrompt}}
}

// AppendUser 追加用户消息
func (s *State) AppendUser(text string) {
	s.append(Turn{Role: RoleUser, Text: text})
}

// AppendAssistant 追加助手回复
func (s *State) AppendAssistant(text string) {
	s.append(Turn{Role: RoleAssistant, Text: text})
}

func (s *State) append(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, t)
}

// Snapshot 返回当前消息序列的副本，用于构造下一次请求
func (s *State) Snapshot() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Clear 重置为仅包含系统消息
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Restore 用持久化的消息序列替换当前状态
// 其中的系统消息被丢弃，始终以当前系统提示词开头
func (s *State) Restore(turns []Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	for _, t := range turns {
		if t.Role == RoleSystem {
			continue
		}
		s.turns = append(s.turns, t)
	}
}

// Len 消息数 (含系统消息)
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}
