package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"sublate/internal/config"
	"sublate/internal/language"
)

// TextService adapts an OpenAI-compatible chat endpoint to the Translator
// and Corrector contracts.
type TextService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewTextService builds a TextService from the translation configuration.
func NewTextService(cfg config.Translation) (*TextService, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("translation api key is not configured")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &TextService{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// Translate renders text from sourceLang into targetLang, preserving line
// breaks so cue structure survives.
func (s *TextService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	system := fmt.Sprintf(
		"You are a professional subtitle translator. Translate the user's text from %s to %s. Preserve line breaks exactly. Reply with the translation only, no commentary.",
		language.DisplayName(sourceLang), language.DisplayName(targetLang))
	return s.complete(ctx, system, text)
}

// Correct fixes recognition errors in text without changing its meaning.
func (s *TextService) Correct(ctx context.Context, text, lang string) (string, error) {
	system := fmt.Sprintf(
		"You are a transcript editor for %s. Fix spelling, punctuation, and obvious speech-recognition mistakes in the user's text. Do not translate, summarize, or reorder. Preserve line breaks exactly. Reply with the corrected text only.",
		language.DisplayName(lang))
	return s.complete(ctx, system, text)
}

func (s *TextService) complete(ctx context.Context, system, user string) (string, error) {
	if strings.TrimSpace(user) == "" {
		return user, nil
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
