package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lilly/internal/model"
	"lilly/internal/service"
)

// ConversationHandler 对话管理处理器
type ConversationHandler struct {
	svc *service.ChatService
}

// NewConversationHandler 创建对话管理处理器
func NewConversationHandler(svc *service.ChatService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

// Clear 清空当前会话
// @Summary      清空对话
// @Tags         Lilly
// @Produce      json
// @Success      200  {object}  model.ClearResponse
// @Router       /api/lilly/clear [post]
func (h *ConversationHandler) Clear(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.Clear(ctx, sessionID(ctx)); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ClearResponse{
		Status:  "success",
		Message: "Chat memory cleared.",
	})
}

// History 当前会话的消息序列
// @Summary      对话历史
// @Tags         Lilly
// @Produce      json
// @Success      200  {object}  model.HistoryResponse
// @Router       /api/lilly/history [get]
func (h *ConversationHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(ctx)

	c.JSON(http.StatusOK, model.HistoryResponse{
		SessionID: id,
		Turns:     h.svc.History(ctx, id),
	})
}
