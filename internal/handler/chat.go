package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lilly/internal/model"
	"lilly/internal/pkg/ctxutil"
	apihttp "lilly/internal/pkg/http"
	"lilly/internal/service"
)

// statusClientClosed 客户端在回复开始前断开 (nginx 约定)
const statusClientClosed = 499

// defaultSessionID 未挂载会话中间件时使用的会话
const defaultSessionID = "default"

// ChatHandler 对话处理器
type ChatHandler struct {
	svc *service.ChatService
}

// NewChatHandler 创建对话处理器
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat 对话接口
// @Summary      对话
// @Description  发送一条消息。默认以 text/plain 流式返回增量文本，format=sse 时返回 SSE 事件，stream=false 时返回完整回答
// @Tags         Lilly
// @Accept       json
// @Produce      plain
// @Param        request  body      model.ChatRequest  true   "对话请求"
// @Param        stream   query     bool               false  "是否流式返回"  default(true)
// @Param        format   query     string             false  "流式格式 plain|sse"
// @Success      200      {object}  model.AnswerResponse
// @Failure      400      {object}  apihttp.ErrorResponse
// @Failure      429      {object}  apihttp.ErrorResponse
// @Router       /api/lilly/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	reply, err := h.svc.Chat(ctx, sessionID(ctx), req.Message)
	h.respond(c, reply, err, queryBool(c, "stream", true))
}

// EnrichCVE CVE 技术解读
// @Summary      CVE 技术解读
// @Description  生成 CVE 的技术细节、成因、示例与缓解措施，默认非流式
// @Tags         Lilly
// @Accept       json
// @Produce      json
// @Param        request  body      model.CVERequest  true   "CVE 信息"
// @Param        stream   query     bool              false  "是否流式返回"  default(false)
// @Success      200      {object}  model.AnswerResponse
// @Failure      400      {object}  apihttp.ErrorResponse
// @Router       /api/lilly/enrich_cve [post]
func (h *ChatHandler) EnrichCVE(c *gin.Context) {
	var req model.CVERequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	reply, err := h.svc.EnrichCVE(ctx, sessionID(ctx), req.CVEID, req.CVEDescription)
	h.respond(c, reply, err, queryBool(c, "stream", false))
}

// SimplifyCVE CVE 通俗解释
// @Summary      CVE 通俗解释
// @Description  用非技术语言解释 CVE，默认非流式
// @Tags         Lilly
// @Accept       json
// @Produce      json
// @Param        request  body      model.CVERequest  true   "CVE 信息"
// @Param        stream   query     bool              false  "是否流式返回"  default(false)
// @Success      200      {object}  model.AnswerResponse
// @Failure      400      {object}  apihttp.ErrorResponse
// @Router       /api/lilly/simplify_cve [post]
func (h *ChatHandler) SimplifyCVE(c *gin.Context) {
	var req model.CVERequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	reply, err := h.svc.SimplifyCVE(ctx, sessionID(ctx), req.CVEID, req.CVEDescription)
	h.respond(c, reply, err, queryBool(c, "stream", false))
}

func (h *ChatHandler) respond(c *gin.Context, reply *service.Reply, err error, stream bool) {
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer reply.Close()

	ctx := c.Request.Context()
	if !stream {
		answer, err := reply.Answer(ctx)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, model.AnswerResponse{Answer: answer})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	if c.Query("format") == "sse" {
		streamSSE(c, reply)
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	c.Stream(func(w io.Writer) bool {
		chunk, err := reply.Recv(ctx)
		if err != nil {
			return false
		}
		_, err = w.Write(chunk)
		return err == nil
	})
}

// streamSSE 以 SSE 事件返回: 若干 message 事件，最后一个 done 事件携带规范化后的全文
func streamSSE(c *gin.Context, reply *service.Reply) {
	ctx := c.Request.Context()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		chunk, err := reply.Recv(ctx)
		if errors.Is(err, io.EOF) {
			answer, _ := reply.Result()
			c.SSEvent("done", model.ChatDone{Answer: answer})
			return false
		}
		if err != nil {
			return false
		}
		c.SSEvent("message", model.ChatChunk{Content: string(chunk)})
		return true
	})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apihttp.NewErrorResponse(apihttp.CodeBadRequest, "Invalid request body", err.Error()))
		return false
	}
	return true
}

func abortWithError(c *gin.Context, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("client gone before reply")
		c.AbortWithStatusJSON(statusClientClosed,
			apihttp.NewErrorResponse(apihttp.CodeClientClosed, "Client closed request"))
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("chat request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		apihttp.NewErrorResponse(apihttp.CodeInternal, "Internal Server Error", err.Error()))
}

func sessionID(ctx context.Context) string {
	if id, ok := ctxutil.GetSessionID(ctx); ok {
		return id
	}
	return defaultSessionID
}

// queryBool 解析布尔查询参数，缺失或无法识别时返回默认值
func queryBool(c *gin.Context, key string, def bool) bool {
	switch strings.ToLower(c.Query(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
