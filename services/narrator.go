package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"video-narrator/internal/config"
	"video-narrator/internal/frames"
	"video-narrator/internal/logger"
)

// ErrEmptyNarration is returned when the model answers without any text.
var ErrEmptyNarration = errors.New("model returned an empty narration")

// NarratorService describes a series of frames with a vision-capable chat model.
type NarratorService struct {
	client    *openai.Client
	model     string
	maxTokens int
	interval  int
	style     string
}

// NewNarratorService creates a narrator; zero values fall back to defaults.
func NewNarratorService(client *openai.Client, model string, maxTokens, intervalSeconds int, style string) *NarratorService {
	if model == "" {
		model = config.OpenAIVisionModel
	}
	if maxTokens <= 0 || maxTokens > config.MaxTokensLimit {
		maxTokens = config.DefaultMaxTokens
	}
	if intervalSeconds <= 0 {
		intervalSeconds = config.DefaultFrameInterval
	}
	if style == "" {
		style = config.DefaultNarratorStyle
	}
	return &NarratorService{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		interval:  intervalSeconds,
		style:     style,
	}
}

// Model returns the chat model used for narration.
func (s *NarratorService) Model() string {
	return s.model
}

// BuildMessages returns the single user message: the prompt followed by every frame.
func (s *NarratorService) BuildMessages(fs []frames.Frame) []openai.ChatCompletionMessage {
	parts := make([]openai.ChatMessagePart, 0, len(fs)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: BuildPrompt(s.interval, s.style),
	})
	for _, f := range fs {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: f.DataURL()},
		})
	}

	return []openai.ChatCompletionMessage{
		{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		},
	}
}

// Narrate sends the frames in one chat completion request and returns the narration text.
func (s *NarratorService) Narrate(ctx context.Context, fs []frames.Frame) (string, error) {
	if len(fs) == 0 {
		return "", fmt.Errorf("no frames to narrate")
	}

	logger.LogInfo("Narrator: model=%s frames=%d max_tokens=%d", s.model, len(fs), s.maxTokens)

	ctx, cancel := context.WithTimeout(ctx, config.NarrationTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     s.model,
		Messages:  s.BuildMessages(fs),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", describeAPIError("chat", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyNarration
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyNarration
	}

	logger.LogDebug("Narrator: %d prompt tokens, %d completion tokens", resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		logger.Warn("Narrator: narration truncated at %d tokens", s.maxTokens)
	}

	return text, nil
}
