// Package tutor is the orchestration layer: it routes each incoming
// question through the cache, the complexity router and the generation
// model, and keeps personalized and generic answers strictly apart.
package tutor

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	appcfg "github.com/gyansetu/core/internal/config"
	"github.com/gyansetu/core/internal/models"
	"github.com/gyansetu/core/internal/modules/cache"
	"github.com/gyansetu/core/internal/modules/profile"
	"github.com/gyansetu/core/internal/pkg/llm"
	"go.uber.org/zap"
)

// AnswerCache is the slice of the response cache the orchestrator needs.
type AnswerCache interface {
	Lookup(ctx context.Context, prompt, grade string) (*cache.Entry, bool, error)
	Store(ctx context.Context, prompt, grade string, entry cache.Entry) error
}

// ProfileReader resolves a student's stored profile, nil when absent.
type ProfileReader interface {
	Get(studentID string) (*models.StudentProfileModel, error)
}

const (
	pathPersonalized = "personalized"
	pathGeneric      = "generic"

	easyTemperature         = float32(0.7)
	hardTemperature         = float32(0.4)
	personalizedTemperature = float32(0.6)
)

// Service coordinates one solve call end to end.
type Service struct {
	cfg      *appcfg.AppConfig
	cache    AnswerCache
	profiles ProfileReader
	logger   *zap.Logger

	// hitDelay simulates generation latency for cache hits so cached and
	// fresh answers are indistinguishable in timing. Injectable for tests.
	hitDelay func() time.Duration
	// invoke issues one upstream model call. Injectable for tests.
	invoke func(ctx context.Context, provider *appcfg.AIProvider, req llm.Request) (*llm.Response, error)
}

func NewService(cfg *appcfg.AppConfig, cacheSvc *cache.Service, profileSvc *profile.Service, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		cache:    cacheSvc,
		profiles: profileSvc,
		logger:   logger,
		hitDelay: randomHitDelay,
		invoke:   llm.Invoke,
	}
}

func randomHitDelay() time.Duration {
	return 2*time.Second + rand.N(2*time.Second)
}

// Solve answers one user message. Decision order: personalized path when an
// active profile applies, otherwise cache lookup, otherwise classify (text
// only) and generate, writing eligible answers through to the cache.
func (s *Service) Solve(ctx context.Context, req SolveRequest) (*SolveResult, error) {
	provider := llm.SelectProvider(s.cfg.AI, s.cfg.AI.TutorModel)
	if provider == nil {
		return nil, llm.ErrNoProvider
	}
	if strings.TrimSpace(provider.APIKey) == "" {
		return nil, llm.ErrMissingCredential
	}

	prompt := strings.TrimSpace(req.Prompt)

	if req.HasProfile && !req.Shared {
		p, err := s.profiles.Get(req.StudentID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			system := BuildPersonalizedInstruction(p, "")
			turns := buildTurns(req.History, s.cfg.Tutor.HistoryWindow, prompt, req.DocText, req.Image)
			temp := personalizedTemperature
			resp, err := s.generate(ctx, provider, system, turns, temp)
			if err != nil {
				return nil, err
			}
			return &SolveResult{
				Text:       resp.Text,
				Sources:    resp.Sources,
				TokensUsed: resp.TokensUsed,
				Metadata:   Metadata{ModelUsed: resp.Model, Path: pathPersonalized},
			}, nil
		}
	}

	// Generic path. Only attachment-free, non-personalized requests may
	// touch the cache in either direction.
	cacheable := req.Image == nil
	if cacheable {
		entry, hit, err := s.cache.Lookup(ctx, prompt, req.Grade)
		if err != nil {
			s.logger.Warn("cache lookup failed, generating fresh", zap.Error(err))
		} else if hit {
			if err := s.sleepHitDelay(ctx); err != nil {
				return nil, err
			}
			return &SolveResult{
				Text:       entry.Response,
				Sources:    entry.Sources,
				TokensUsed: entry.TokensUsed,
				Metadata:   Metadata{ModelUsed: "cache", CacheHit: true, Path: pathGeneric},
			}, nil
		}
	}

	complexity := ComplexityHard
	routerRan := false
	if req.Image == nil {
		complexity = s.classify(ctx, prompt)
		routerRan = true
	}

	system := BuildGenericInstruction(complexity, req.Grade)
	turns := buildTurns(req.History, s.cfg.Tutor.HistoryWindow, prompt, req.DocText, req.Image)
	resp, err := s.generate(ctx, provider, system, turns, generationTemperature(complexity))
	if err != nil {
		return nil, err
	}

	if cacheable && ctx.Err() == nil {
		entry := cache.Entry{
			Response:   resp.Text,
			TokensUsed: resp.TokensUsed,
			Sources:    resp.Sources,
		}
		if err := s.cache.Store(ctx, prompt, req.Grade, entry); err != nil {
			// Best-effort bookkeeping must not fail the response.
			s.logger.Warn("cache write failed", zap.Error(err))
		}
	}

	return &SolveResult{
		Text:       resp.Text,
		Sources:    resp.Sources,
		TokensUsed: resp.TokensUsed,
		Metadata: Metadata{
			ModelUsed:       resp.Model,
			Complexity:      complexity,
			RouterTriggered: routerRan,
			Path:            pathGeneric,
		},
	}, nil
}

// TutoringResponse serves the getTutoringResponse action: the caller has
// already assembled a profile-aware system instruction, the core runs the
// router and the generation call. Never cached.
func (s *Service) TutoringResponse(ctx context.Context, payload TutoringPayload) (*SolveResult, error) {
	provider := llm.SelectProvider(s.cfg.AI, s.cfg.AI.TutorModel)
	if provider == nil {
		return nil, llm.ErrNoProvider
	}
	if strings.TrimSpace(provider.APIKey) == "" {
		return nil, llm.ErrMissingCredential
	}

	complexity := s.classify(ctx, payload.Message)
	turns := buildTurns(payload.History, s.cfg.Tutor.HistoryWindow, payload.Message, payload.DocText, nil)
	temp := personalizedTemperature
	resp, err := s.generate(ctx, provider, payload.SystemInstruction, turns, temp)
	if err != nil {
		return nil, err
	}

	return &SolveResult{
		Text:       resp.Text,
		Sources:    resp.Sources,
		TokensUsed: resp.TokensUsed,
		Metadata: Metadata{
			ModelUsed:       resp.Model,
			Complexity:      complexity,
			RouterTriggered: true,
			Path:            pathPersonalized,
		},
	}, nil
}

func (s *Service) generate(ctx context.Context, provider *appcfg.AIProvider, system string, turns []llm.Turn, temperature float32) (*llm.Response, error) {
	return llm.CallWithRetry(ctx, func() (*llm.Response, error) {
		return s.invoke(ctx, provider, llm.Request{
			System:      system,
			Turns:       turns,
			Temperature: &temperature,
		})
	}, llm.DefaultMaxRetries, llm.DefaultInitialDelay)
}

func (s *Service) sleepHitDelay(ctx context.Context) error {
	timer := time.NewTimer(s.hitDelay())
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func generationTemperature(complexity Complexity) float32 {
	if complexity == ComplexityEasy {
		return easyTemperature
	}
	return hardTemperature
}

// WindowHistory bounds the history forwarded to the model to the trailing
// n turns.
func WindowHistory(history []ConversationTurn, n int) []ConversationTurn {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// buildTurns converts wire history plus the new utterance into model turns.
// Extracted document text is appended to the utterance; an attachment rides
// on the final turn.
func buildTurns(history []ConversationTurn, window int, utterance, docText string, image *ImagePayload) []llm.Turn {
	windowed := WindowHistory(history, window)
	turns := make([]llm.Turn, 0, len(windowed)+1)
	for _, turn := range windowed {
		role := llm.RoleUser
		if turn.Role == "assistant" || turn.Role == "model" {
			role = llm.RoleModel
		}
		turns = append(turns, llm.Turn{Role: role, Text: turn.Text})
	}

	text := utterance
	if doc := strings.TrimSpace(docText); doc != "" {
		text = fmt.Sprintf("%s\n\n<<<DOCUMENT\n%s\nDOCUMENT", utterance, doc)
	}

	current := llm.Turn{Role: llm.RoleUser, Text: text}
	if image != nil && len(image.Data) > 0 {
		current.Attachment = &llm.Attachment{
			MIMEType: image.MimeType,
			Data:     image.Data,
		}
	}
	return append(turns, current)
}
