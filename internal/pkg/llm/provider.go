package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	appcfg "github.com/gyansetu/core/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

const defaultMaxOutputTokens = 2048

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

func isGeminiProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "gemini" || t == "google"
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

// SelectProvider resolves an assignment against the configured providers.
// A pinned provider id wins; otherwise the first enabled provider is used.
// The assignment's model override, if any, replaces the provider default.
func SelectProvider(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) *appcfg.AIProvider {
	var providerID string
	var overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider appcfg.AIProvider) *appcfg.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if !provider.Enabled {
				continue
			}
			if strings.TrimSpace(provider.ID) != providerID {
				continue
			}
			return pick(provider)
		}
	}

	for _, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}
		return pick(provider)
	}

	return nil
}

// Invoke issues one generation call against the given provider. It does not
// retry; callers wrap it in CallWithRetry.
func Invoke(ctx context.Context, provider *appcfg.AIProvider, req Request) (*Response, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	if strings.TrimSpace(provider.APIKey) == "" {
		return nil, ErrMissingCredential
	}

	switch {
	case isGeminiProviderType(provider.Type):
		return invokeGemini(ctx, provider, req)
	case isOpenAICompatibleProviderType(provider.Type):
		return invokeOpenAICompatible(ctx, provider, req)
	default:
		return invokeJetify(ctx, provider, req)
	}
}

// invokeJetify serves the openai and anthropic provider types through the
// go.jetify.com/ai abstraction. These paths are text-only; the conversation
// is flattened into a single labeled transcript.
func invokeJetify(ctx context.Context, provider *appcfg.AIProvider, req Request) (*Response, error) {
	if hasAttachment(req.Turns) {
		return nil, ErrAttachmentUnsupported
	}

	model, modelID, err := buildLanguageModel(provider)
	if err != nil {
		return nil, err
	}

	maxTokens := int(req.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}

	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(req.System, flattenTranscript(req.Turns)),
		buildJetifyOptions(model, maxTokens, req.Temperature)...,
	)
	if err != nil {
		return nil, err
	}

	text, err := extractTextFromJetifyResponse(resp)
	if err != nil {
		return nil, err
	}
	return &Response{Text: text, Model: modelID, TokensUsed: jetifyTokens(resp.Usage)}, nil
}

func buildJetifyOptions(model jetapi.LanguageModel, maxTokens int, temperature *float32) []jetai.GenerateOption {
	opts := []jetai.GenerateOption{
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(maxTokens),
	}
	if temperature != nil {
		opts = append(opts, jetai.WithTemperature(float64(*temperature)))
	}
	return opts
}

// jetifyTokens reads the provider-reported total, falling back to the sum of
// the directional counters when the provider omits it.
func jetifyTokens(u jetapi.Usage) int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.InputTokens + u.OutputTokens
}

func buildLanguageModel(provider *appcfg.AIProvider) (jetapi.LanguageModel, string, error) {
	apiKey := strings.TrimSpace(provider.APIKey)
	modelID := strings.TrimSpace(provider.DefaultModel)
	endpoint := strings.TrimSpace(provider.Endpoint)

	if isAnthropicProviderType(provider.Type) {
		if modelID == "" {
			modelID = "claude-haiku-4-5-20251001"
		}

		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}

		client := anthropicclient.NewClient(opts...)
		model := jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client))
		return model, modelID, nil
	}

	if modelID == "" {
		modelID = "gpt-4o-mini"
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}

	client := openaiclient.NewClient(opts...)
	model := jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client))
	return model, modelID, nil
}

func buildPromptMessages(systemPrompt, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractTextFromJetifyResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// invokeOpenAICompatible talks to any chat-completions endpoint directly.
func invokeOpenAICompatible(ctx context.Context, provider *appcfg.AIProvider, req Request) (*Response, error) {
	if hasAttachment(req.Turns) {
		return nil, ErrAttachmentUnsupported
	}

	endpoint := normalizeOpenAICompatibleEndpoint(provider.Endpoint)
	model := strings.TrimSpace(provider.DefaultModel)
	if model == "" {
		model = "gpt-4o-mini"
	}

	messages := make([]map[string]string, 0, len(req.Turns)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, map[string]string{
			"role":    "system",
			"content": req.System,
		})
	}
	for _, turn := range req.Turns {
		role := "user"
		if turn.Role == RoleModel {
			role = "assistant"
		}
		messages = append(messages, map[string]string{
			"role":    role,
			"content": turn.Text,
		})
	}

	payload := map[string]interface{}{
		"model":    model,
		"messages": messages,
	}
	if req.MaxOutputTokens > 0 {
		payload["max_tokens"] = req.MaxOutputTokens
	}
	if req.Temperature != nil {
		payload["temperature"] = *req.Temperature
	}
	body, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(provider.APIKey))
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, err
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return nil, fmt.Errorf("openai-compatible error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	return &Response{
		Text:       result.Choices[0].Message.Content,
		TokensUsed: result.Usage.TotalTokens,
		Model:      model,
	}, nil
}

func hasAttachment(turns []Turn) bool {
	for _, turn := range turns {
		if turn.Attachment != nil {
			return true
		}
	}
	return false
}

// flattenTranscript renders a multi-turn conversation as one prompt for
// providers invoked through the single-message path.
func flattenTranscript(turns []Turn) string {
	if len(turns) == 1 {
		return turns[0].Text
	}
	var b strings.Builder
	for _, turn := range turns {
		label := "Student"
		if turn.Role == RoleModel {
			label = "Tutor"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, strings.TrimSpace(turn.Text))
	}
	return strings.TrimSpace(b.String())
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func normalizeOpenAICompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(base, "/")
		cleaned = strings.TrimSuffix(cleaned, "/v1")
		return cleaned
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/v1")
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
