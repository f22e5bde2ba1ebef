package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

// OpenAIService generates text through the official chat completions SDK.
// Retrying is left to the caller, so SDK-level retries are disabled.
type OpenAIService struct {
	model  string
	client openai.Client
}

func NewOpenAIService(apiKey, baseURL, model string) *OpenAIService {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIService{
		model:  model,
		client: openai.NewClient(opts...),
	}
}

// GenerateText submits the prompt and returns the first choice's content.
func (s *OpenAIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	if s == nil {
		return "", errors.New("openai service is nil")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is empty")
	}

	logrus.WithFields(logrus.Fields{
		"model":          s.model,
		"prompt_preview": truncateForLog(prompt, 64),
		"prompt_length":  len(prompt),
	}).Info("openai_generate_text_start")

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
		TopP:        openai.Float(0.95),
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openai returned empty text")
	}

	logrus.WithField("response_length", len(text)).Info("openai_generate_text_done")
	return text, nil
}
