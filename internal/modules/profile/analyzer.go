package profile

import (
	"context"
	"strings"

	"github.com/gyansetu/core/internal/pkg/llm"
)

// profileCallTemperature keeps analyzer/updater output stable across runs.
const profileCallTemperature = float32(0.2)

// invokeProfileModel issues one call against the provider assigned to
// profile work, through the shared retry policy.
func (s *Service) invokeProfileModel(ctx context.Context, system, prompt string) (string, error) {
	provider := llm.SelectProvider(s.cfg.AI, s.cfg.AI.ProfileModel)
	if provider == nil {
		return "", llm.ErrNoProvider
	}

	temp := profileCallTemperature
	resp, err := llm.CallWithRetry(ctx, func() (*llm.Response, error) {
		return llm.Invoke(ctx, provider, llm.Request{
			System:          system,
			Turns:           []llm.Turn{{Role: llm.RoleUser, Text: prompt}},
			Temperature:     &temp,
			MaxOutputTokens: 1024,
		})
	}, llm.DefaultMaxRetries, llm.DefaultInitialDelay)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateRaw runs a caller-supplied prompt template against the profile
// model and returns the raw JSON-bearing text for the caller to parse.
// Used by the completeOnboarding and updateProfile dispatch actions.
func (s *Service) GenerateRaw(ctx context.Context, promptTemplate string) (string, error) {
	if strings.TrimSpace(promptTemplate) == "" {
		return "", ErrProfileParse
	}
	return s.invokeProfileModel(ctx, "", promptTemplate)
}

// AnalyzeRaw runs the built-in onboarding analyzer over free-text answers
// and returns the raw model output without persisting anything.
func (s *Service) AnalyzeRaw(ctx context.Context, rawAnswers []string) (string, error) {
	system, prompt := buildAnalyzerPrompt(rawAnswers)
	return s.invokeProfileModel(ctx, system, prompt)
}
