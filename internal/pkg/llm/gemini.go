package llm

import (
	"context"
	"errors"
	"strings"

	appcfg "github.com/gyansetu/core/internal/config"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

// invokeGemini serves the gemini provider type. This is the only path that
// accepts inline attachments and the only one that surfaces grounding
// citations, so attachment-bearing requests must be routed here.
func invokeGemini(ctx context.Context, provider *appcfg.AIProvider, req Request) (*Response, error) {
	if len(req.Turns) == 0 {
		return nil, errors.New("gemini request has no content turns")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(strings.TrimSpace(provider.APIKey)))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	modelID := strings.TrimSpace(provider.DefaultModel)
	if modelID == "" {
		modelID = defaultGeminiModel
	}

	model := client.GenerativeModel(modelID)
	if strings.TrimSpace(req.System) != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	cfg := genai.GenerationConfig{}
	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(*req.Temperature)
	}
	if req.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = genai.Ptr(req.MaxOutputTokens)
	}
	model.GenerationConfig = cfg

	cs := model.StartChat()
	history := req.Turns[:len(req.Turns)-1]
	for _, turn := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  geminiRole(turn.Role),
			Parts: geminiParts(turn),
		})
	}

	resp, err := cs.SendMessage(ctx, geminiParts(req.Turns[len(req.Turns)-1])...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	var full strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			full.WriteString(string(text))
		}
	}
	text := full.String()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	out := &Response{Text: text, Model: modelID}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	if cand.CitationMetadata != nil {
		for _, src := range cand.CitationMetadata.CitationSources {
			if src == nil || src.URI == nil || strings.TrimSpace(*src.URI) == "" {
				continue
			}
			out.Sources = append(out.Sources, Source{URI: *src.URI})
		}
	}
	return out, nil
}

func geminiRole(role Role) string {
	if role == RoleModel {
		return "model"
	}
	return "user"
}

func geminiParts(turn Turn) []genai.Part {
	parts := make([]genai.Part, 0, 2)
	if strings.TrimSpace(turn.Text) != "" {
		parts = append(parts, genai.Text(turn.Text))
	}
	if turn.Attachment != nil && len(turn.Attachment.Data) > 0 {
		parts = append(parts, genai.Blob{
			MIMEType: turn.Attachment.MIMEType,
			Data:     turn.Attachment.Data,
		})
	}
	if len(parts) == 0 {
		parts = append(parts, genai.Text(""))
	}
	return parts
}
