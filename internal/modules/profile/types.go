package profile

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/gyansetu/core/internal/pkg/llm"
)

// ErrProfileParse marks analyzer/updater output that contained no usable
// JSON. Fatal during onboarding; logged and swallowed during a post-session
// patch.
var ErrProfileParse = errors.New("profile model returned unparseable output")

// ErrStaleVersion marks a patch whose base profile version was overtaken by
// a concurrent update. The patch is rejected rather than merged.
var ErrStaleVersion = errors.New("profile version changed since patch was computed")

// maxDelta bounds how far a single patch can move the numeric scores.
const maxDelta = 10

// Patch is the partial update the profile updater model may return. Every
// field is optional; only present fields are applied.
type Patch struct {
	Name                       *string  `json:"name"`
	Grade                      *string  `json:"grade"`
	PreferredExplanationStyles []string `json:"preferredExplanationStyles"`
	LanguagePreference         *string  `json:"languagePreference"`
	TonePreference             *string  `json:"tonePreference"`
	ConfidenceLevel            *int     `json:"confidenceLevel"`
	QuestionHesitationLevel    *int     `json:"questionHesitationLevel"`
	DifficultyTypes            []string `json:"difficultyTypes"`
	StudyObstacles             []string `json:"studyObstacles"`
	StuckStrategy              *string  `json:"stuckStrategy"`
	MostHelpfulFormat          *string  `json:"mostHelpfulFormat"`
	AIPrimaryGoal              *string  `json:"aiPrimaryGoal"`
	ProfileEvidence            []string `json:"profileEvidence"`
}

// patchFieldWhitelist is the full set of keys a patch may carry. Anything
// else the model invents is rejected per-field while the rest still applies.
var patchFieldWhitelist = map[string]struct{}{
	"name":                       {},
	"grade":                      {},
	"preferredExplanationStyles": {},
	"languagePreference":         {},
	"tonePreference":             {},
	"confidenceLevel":            {},
	"questionHesitationLevel":    {},
	"difficultyTypes":            {},
	"studyObstacles":             {},
	"stuckStrategy":              {},
	"mostHelpfulFormat":          {},
	"aiPrimaryGoal":              {},
	"profileEvidence":            {},
}

// ParsePatch extracts a Patch from free-form model output. Unknown fields
// are dropped and reported; a missing or malformed JSON object is
// ErrProfileParse.
func ParsePatch(raw string) (*Patch, []string, error) {
	var fields map[string]json.RawMessage
	if err := llm.UnmarshalModelJSON(raw, &fields); err != nil {
		return nil, nil, ErrProfileParse
	}

	rejected := make([]string, 0)
	filtered := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		if _, ok := patchFieldWhitelist[key]; !ok {
			rejected = append(rejected, key)
			continue
		}
		filtered[key] = value
	}
	sort.Strings(rejected)

	merged, err := json.Marshal(filtered)
	if err != nil {
		return nil, nil, ErrProfileParse
	}

	var patch Patch
	if err := json.Unmarshal(merged, &patch); err != nil {
		return nil, nil, ErrProfileParse
	}
	return &patch, rejected, nil
}

// clampDelta limits a proposed score to ±maxDelta around current, then
// clamps the result into [0,100].
func clampDelta(current, proposed int) int {
	next := proposed
	if next > current+maxDelta {
		next = current + maxDelta
	}
	if next < current-maxDelta {
		next = current - maxDelta
	}
	if next < 0 {
		next = 0
	}
	if next > 100 {
		next = 100
	}
	return next
}

// normalizeTag uppercases an enum-style tag for storage.
func normalizeTag(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func normalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		t := normalizeTag(tag)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
