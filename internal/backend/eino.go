package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"lilly/internal/config"
	"lilly/internal/conversation"
	"lilly/internal/reconstruct"
)

// Eino 基于 eino ChatModel 的流式后端 (openai / azure / ark)
type Eino struct {
	chatModel model.BaseChatModel
}

// NewEino 根据配置创建 ChatModel 后端
func NewEino(ctx context.Context, cfg *config.BackendConfig) (*Eino, error) {
	chatModel, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewEinoWithModel(chatModel), nil
}

// NewEinoWithModel 使用已有 ChatModel 创建后端
func NewEinoWithModel(chatModel model.BaseChatModel) *Eino {
	return &Eino{chatModel: chatModel}
}

// Open 返回延迟连接的消息流来源
func (b *Eino) Open(turns []conversation.Turn) reconstruct.Source {
	return newLazySource(func(ctx context.Context) (reconstruct.Source, error) {
		reader, err := b.chatModel.Stream(ctx, toSchemaMessages(turns))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("%w: %w", reconstruct.ErrTransport, err)
		}
		return &einoSource{reader: reader}, nil
	})
}

func toSchemaMessages(turns []conversation.Turn) []*schema.Message {
	messages := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case conversation.RoleSystem:
			messages = append(messages, schema.SystemMessage(t.Text))
		case conversation.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(t.Text, nil))
		default:
			messages = append(messages, schema.UserMessage(t.Text))
		}
	}
	return messages
}

// einoSource 将 eino 消息流转换为片段事件
type einoSource struct {
	reader *schema.StreamReader[*schema.Message]
}

func (s *einoSource) Next(ctx context.Context) (reconstruct.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg, err := s.reader.Recv()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", reconstruct.ErrTransport, err)
	}

	if msg == nil || msg.Content == "" {
		return reconstruct.Ignorable{}, nil
	}
	return reconstruct.TextFragment{Text: msg.Content}, nil
}

func (s *einoSource) Close() error {
	s.reader.Close()
	return nil
}

// NewChatModel 创建 ChatModel
// 支持多种 Provider: openai, azure, ark
func NewChatModel(ctx context.Context, cfg *config.BackendConfig) (model.ChatModel, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return newOpenAIChatModel(ctx, cfg)
	case config.ProviderAzure:
		return newAzureChatModel(ctx, cfg)
	case config.ProviderArk:
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported chat model provider: %s", cfg.Provider)
	}
}

// newOpenAIChatModel 创建 OpenAI ChatModel
func newOpenAIChatModel(ctx context.Context, cfg *config.BackendConfig) (model.ChatModel, error) {
	modelCfg := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}

	// Base URL (用于代理或兼容 API，例如 llama.cpp 的 /v1)
	if cfg.BaseURL != "" {
		modelCfg.BaseURL = cfg.BaseURL
	}

	// 模型参数
	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		modelCfg.MaxTokens = &cfg.Options.MaxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return openai.NewChatModel(ctx, modelCfg)
}

// newAzureChatModel 创建 Azure OpenAI ChatModel
func newAzureChatModel(ctx context.Context, cfg *config.BackendConfig) (model.ChatModel, error) {
	modelCfg := &openai.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ByAzure: true,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 创建 Ark ChatModel
func newArkChatModel(ctx context.Context, cfg *config.BackendConfig) (model.ChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}

	// 模型参数
	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		modelCfg.MaxTokens = &cfg.Options.MaxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return arkext.NewChatModel(ctx, modelCfg)
}
