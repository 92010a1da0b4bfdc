package model

import "lilly/internal/conversation"

// AnswerResponse 非流式回答
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// ClearResponse 清空对话响应
type ClearResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HistoryResponse 对话历史
type HistoryResponse struct {
	SessionID string              `json:"session_id"`
	Turns     []conversation.Turn `json:"turns"`
}

// ChatChunk SSE 流式片段
type ChatChunk struct {
	Content string `json:"content"`
}

// ChatDone SSE 结束事件
type ChatDone struct {
	Answer string `json:"answer"`
}
