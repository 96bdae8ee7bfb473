// Package ai polishes generated character documents through DeepSeek, with
// Gemini as fallback. The whole package is optional: without API keys the
// pipeline ships the template output untouched.
package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/feifeixp/neocore-go/internal/config"
	"github.com/feifeixp/neocore-go/internal/constants"
	"github.com/feifeixp/neocore-go/internal/domain"
	"github.com/feifeixp/neocore-go/internal/util"
	"github.com/feifeixp/neocore-go/pkg/errors"
)

// Enhancer rewrites the biography sections of a character document. DeepSeek
// is the primary provider; Gemini takes over when DeepSeek fails and
// fallback is enabled.
type Enhancer struct {
	deepseek      *openai.Client
	gemini        *genai.Client
	logger        *zap.Logger
	deepseekModel string
	geminiModel   string

	enableFallback bool
	breaker        *util.CircuitBreaker
}

// NewEnhancer builds an enhancer from config. Returns (nil, nil) when no
// provider key is configured; callers must treat a nil enhancer as disabled.
func NewEnhancer(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*Enhancer, error) {
	if cfg.DeepSeekAPIKey == "" && cfg.GeminiAPIKey == "" {
		logger.Info("AI enhancer disabled (no API keys)")
		return nil, nil
	}

	e := &Enhancer{
		logger:        logger,
		deepseekModel: cfg.DeepSeekModel,
		geminiModel:   cfg.GeminiModel,
	}

	if cfg.DeepSeekAPIKey != "" {
		client := openai.NewClient(
			option.WithAPIKey(cfg.DeepSeekAPIKey),
			option.WithBaseURL(cfg.DeepSeekBaseURL),
		)
		e.deepseek = &client
		logger.Info("DeepSeek enhancer enabled", zap.String("model", cfg.DeepSeekModel))
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		e.gemini = gemini
		e.enableFallback = cfg.EnableFallback || e.deepseek == nil
		logger.Info("Gemini enhancer enabled",
			zap.String("model", cfg.GeminiModel),
			zap.Bool("fallback", e.enableFallback),
		)
	}

	e.breaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		e.healthCheckPing,
		logger,
	)

	return e, nil
}

// EnhanceDescription returns the polished document, or an error when every
// configured provider fails. The input document is never mutated.
func (e *Enhancer) EnhanceDescription(ctx context.Context, doc string, meta domain.CharacterMeta) (string, error) {
	if !e.breaker.CanExecute() {
		status := e.breaker.GetStatus()
		e.logger.Warn("Enhancer unavailable (circuit open)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		)
		return "", errors.NewServiceError("enhancer temporarily unavailable", "ai", "enhance", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.EnhancerConfig.Timeout)
	defer cancel()

	prompt := buildPrompt(doc, meta)

	if e.deepseek != nil {
		text, err := e.generateWithDeepSeek(ctx, prompt)
		if err == nil {
			e.breaker.RecordSuccess()
			return text, nil
		}

		if !e.enableFallback || e.gemini == nil {
			e.recordFailure(err)
			return "", errors.NewServiceError("enhancement failed", "deepseek", "enhance", err)
		}

		e.logger.Warn("DeepSeek failed, falling back to Gemini", zap.Error(err))
	}

	text, err := e.generateWithGemini(ctx, prompt)
	if err != nil {
		e.recordFailure(err)
		return "", errors.NewServiceError("enhancement failed", "gemini", "enhance", err)
	}

	e.breaker.RecordSuccess()
	return text, nil
}

func (e *Enhancer) recordFailure(err error) {
	if !isServiceFailure(err) {
		return
	}
	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}
	e.breaker.RecordFailure(timeout)
}

func buildPrompt(doc string, meta domain.CharacterMeta) string {
	truncated := util.TruncateString(doc, constants.EnhancerConfig.MaxInputLength)

	var b strings.Builder
	b.WriteString("你是一位世界观设定作家。请润色下面这份角色分析文档的叙事部分，")
	b.WriteString("使其更加生动，符合" + meta.Era.Title() + "的氛围。\n")
	b.WriteString("要求：\n")
	b.WriteString("1. 保留所有 HTML 表格、mermaid 代码块和标题结构，不得改动其中的数据。\n")
	b.WriteString("2. 只改写纯文字段落，补充符合角色八字和技能的细节。\n")
	b.WriteString("3. 输出完整的 Markdown 文档，不要添加解释。\n\n")
	b.WriteString(truncated)
	return b.String()
}

func (e *Enhancer) generateWithDeepSeek(ctx context.Context, prompt string) (string, error) {
	resp, err := e.deepseek.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.deepseekModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		e.logger.Error("DeepSeek generation failed", zap.Error(err))
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in DeepSeek response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response from DeepSeek")
	}

	e.logger.Debug("DeepSeek response received",
		zap.Int("length", len(text)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
	)
	return text, nil
}

func (e *Enhancer) generateWithGemini(ctx context.Context, prompt string) (string, error) {
	if e.gemini == nil {
		return "", fmt.Errorf("Gemini client not initialized")
	}

	temp := float32(0.7)
	resp, err := e.gemini.Models.GenerateContent(ctx, e.geminiModel, []*genai.Content{
		{Parts: []*genai.Part{{Text: prompt}}},
	}, &genai.GenerateContentConfig{
		Temperature: &temp,
	})
	if err != nil {
		e.logger.Error("Gemini generation failed", zap.Error(err))
		return "", err
	}

	text := extractGeminiText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

func (e *Enhancer) healthCheckPing() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.CircuitBreakerConfig.HealthCheckTimeout)
	defer cancel()

	if e.deepseek != nil {
		if _, err := e.generateWithDeepSeek(ctx, "ping"); err == nil {
			return true
		}
	}
	if e.gemini != nil {
		if _, err := e.generateWithGemini(ctx, "ping"); err == nil {
			return true
		}
	}
	return false
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}

func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}

	statusRegex := regexp.MustCompile(`\b(5\d{2})\b`)
	if statusRegex.MatchString(msg) {
		return true
	}

	codeRegex := regexp.MustCompile(`"code":(\d{3})`)
	if matches := codeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code >= 500 && code < 600
		}
	}

	return false
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	codeRegex := regexp.MustCompile(`"code":(\d{3})`)
	if matches := codeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code == 429
		}
	}

	return false
}

// CircuitStatus exposes breaker state for the health endpoint.
func (e *Enhancer) CircuitStatus() util.CircuitBreakerStatus {
	return e.breaker.GetStatus()
}
