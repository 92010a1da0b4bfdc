package ctxutil

import "context"

// sessionIDKeyType 使用私有类型避免与其他 context key 冲突
type sessionIDKeyType struct{}

var sessionIDKey = sessionIDKeyType{}

// WithSessionID 将会话 ID 注入到 context 中
// 由会话中间件调用:
//
//	ctx := ctxutil.WithSessionID(c.Request.Context(), id)
//	c.Request = c.Request.WithContext(ctx)
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID 从 context 中解析会话 ID
func GetSessionID(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(sessionIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
