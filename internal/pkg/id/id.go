package id

import (
	"github.com/google/uuid"
)

// New 生成新的 ID (UUID v4 字符串)，用于会话 ID 与请求 ID
func New() string {
	return uuid.New().String()
}

// IsValid 是否为 36 字符标准格式的非零 UUID
// 客户端传入的会话 ID 直接用作缓存 key，不接受 urn 或花括号形式
func IsValid(id string) bool {
	if len(id) != 36 {
		return false
	}
	u, err := uuid.Parse(id)
	return err == nil && u != uuid.Nil
}
