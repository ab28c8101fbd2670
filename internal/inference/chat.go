package inference

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/ollama/ollama/api"

	"renoplanner/pkg"
)

// ChatConfig selects and configures the chat-model provider.
type ChatConfig struct {
	Provider    string // openai, ollama, deepseek, ark
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewChatModel builds the chat model for the configured provider.
func NewChatModel(ctx context.Context, cfg ChatConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Options: &api.Options{
				Temperature: float32(cfg.Temperature),
			},
		})
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: float32(cfg.Temperature),
		})
	case "ark":
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
	case "openai", "":
		maxTokens := cfg.MaxTokens
		temperature := float32(cfg.Temperature)
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.Provider)
	}
}

// ChatEngine adapts an eino chat model to the TextGenerator interface,
// attaching images as inline data URLs.
type ChatEngine struct {
	model model.BaseChatModel
}

// NewChatEngine wraps a chat model as a TextGenerator.
func NewChatEngine(m model.BaseChatModel) *ChatEngine {
	return &ChatEngine{model: m}
}

func (e *ChatEngine) GenerateText(ctx context.Context, prompt string, images []*pkg.ImageAsset) (string, error) {
	var msg *schema.Message
	if len(images) == 0 {
		msg = schema.UserMessage(prompt)
	} else {
		parts := make([]schema.ChatMessagePart, 0, len(images)+1)
		parts = append(parts, schema.ChatMessagePart{
			Type: schema.ChatMessagePartTypeText,
			Text: prompt,
		})
		for _, img := range images {
			parts = append(parts, schema.ChatMessagePart{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL:      dataURL(img),
					MIMEType: img.MimeType,
				},
			})
		}
		msg = &schema.Message{
			Role:         schema.User,
			MultiContent: parts,
		}
	}

	out, err := e.model.Generate(ctx, []*schema.Message{msg})
	if err != nil {
		return "", &pkg.InferenceError{Op: "chat", Err: err}
	}
	return out.Content, nil
}

func dataURL(img *pkg.ImageAsset) string {
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
