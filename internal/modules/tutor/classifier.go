package tutor

import (
	"context"

	"github.com/gyansetu/core/internal/pkg/llm"
	"go.uber.org/zap"
)

// routerTemperature keeps classification deterministic.
const routerTemperature = float32(0)

// classify labels an utterance EASY or HARD with one low-temperature model
// call. It never returns an error: any failure, including an unparseable
// token, falls back to HARD so the student gets the thorough treatment
// rather than a possibly under-explained answer.
func (s *Service) classify(ctx context.Context, utterance string) Complexity {
	provider := llm.SelectProvider(s.cfg.AI, s.cfg.AI.RouterModel)
	if provider == nil {
		s.logger.Warn("no provider for complexity routing, defaulting to HARD")
		return ComplexityHard
	}

	system, prompt := BuildRouterPrompt(utterance)
	temp := routerTemperature
	resp, err := llm.CallWithRetry(ctx, func() (*llm.Response, error) {
		return s.invoke(ctx, provider, llm.Request{
			System:          system,
			Turns:           []llm.Turn{{Role: llm.RoleUser, Text: prompt}},
			Temperature:     &temp,
			MaxOutputTokens: 8,
		})
	}, llm.DefaultMaxRetries, llm.DefaultInitialDelay)
	if err != nil {
		s.logger.Warn("complexity routing failed, defaulting to HARD", zap.Error(err))
		return ComplexityHard
	}

	complexity, ok := ParseComplexity(resp.Text)
	if !ok {
		s.logger.Warn("unexpected router token, defaulting to HARD",
			zap.String("token", resp.Text))
	}
	return complexity
}
