// Package cache stores previously generated generic answers so identical
// questions do not trigger redundant model calls. Entries are keyed by the
// exact trimmed prompt text plus grade and are immutable once written.
//
// The cache holds only attachment-free, non-personalized answers; the
// orchestrator enforces that guard. Caching a personalized or visually
// grounded answer would serve one student's context to another.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gyansetu/core/internal/pkg/llm"
	redisc "github.com/gyansetu/core/internal/pkg/redis"
	"go.uber.org/zap"
)

const keyPrefix = "gs:anscache:"

// DefaultGrade is the grade component used when the caller supplies none.
const DefaultGrade = "Unknown"

// Entry is one cached answer.
type Entry struct {
	Response   string       `json:"response"`
	TokensUsed int          `json:"tokens_used"`
	Sources    []llm.Source `json:"sources,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Service is the Redis-backed response cache.
type Service struct {
	rc     *redisc.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates the cache service. ttl of 0 keeps entries forever.
func NewService(rc *redisc.Client, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{rc: rc, ttl: ttl, logger: logger}
}

// Key derives the storage key for a prompt and grade. Matching is exact on
// the trimmed prompt string; no further normalization, so the same input
// always produces the same key and near-duplicate phrasings miss.
func Key(prompt, grade string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(prompt)))
	return fmt.Sprintf("%s%x:%s", keyPrefix, h, GradeOrDefault(grade))
}

// GradeOrDefault normalizes the grade component of the key.
func GradeOrDefault(grade string) string {
	g := strings.TrimSpace(grade)
	if g == "" {
		return DefaultGrade
	}
	return g
}

// Lookup returns the cached entry for (prompt, grade), if any.
func (s *Service) Lookup(ctx context.Context, prompt, grade string) (*Entry, bool, error) {
	raw, err := s.rc.Get(ctx, Key(prompt, grade))
	if err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		// A corrupt entry is treated as a miss; the fresh answer will not
		// overwrite it, so log loudly enough to notice.
		s.logger.Warn("discarding unreadable cache entry", zap.Error(err))
		return nil, false, nil
	}
	return &entry, true, nil
}

// Store writes an entry unless one already exists for the key. Entries are
// immutable: the first stored answer for a key wins.
func (s *Service) Store(ctx context.Context, prompt, grade string, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	written, err := s.rc.SetNX(ctx, Key(prompt, grade), string(raw), s.ttl)
	if err != nil {
		return err
	}
	if !written {
		s.logger.Debug("cache entry already present, keeping existing answer",
			zap.String("grade", GradeOrDefault(grade)))
	}
	return nil
}
