package profile

import (
	"fmt"
	"testing"

	"github.com/gyansetu/core/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func TestApplySessionPatch(t *testing.T) {
	t.Run("numeric deltas bounded", func(t *testing.T) {
		p := defaultProfile("s1")
		applySessionPatch(p, &Patch{
			ConfidenceLevel:         intPtr(95),
			QuestionHesitationLevel: intPtr(5),
		})
		if p.ConfidenceLevel != 80 {
			t.Errorf("confidence = %d, want 80 (70+10)", p.ConfidenceLevel)
		}
		if p.QuestionHesitationLevel != 20 {
			t.Errorf("hesitation = %d, want 20 (30-10)", p.QuestionHesitationLevel)
		}
	})

	t.Run("evidence appends and truncates", func(t *testing.T) {
		p := defaultProfile("s1")
		for i := 0; i < models.MaxProfileEvidence; i++ {
			p.ProfileEvidence = append(p.ProfileEvidence, fmt.Sprintf("note %d", i))
		}
		applySessionPatch(p, &Patch{ProfileEvidence: []string{"newest note"}})
		if len(p.ProfileEvidence) != models.MaxProfileEvidence {
			t.Fatalf("evidence len = %d, want %d", len(p.ProfileEvidence), models.MaxProfileEvidence)
		}
		last := p.ProfileEvidence[len(p.ProfileEvidence)-1]
		if last != "newest note" {
			t.Errorf("last evidence = %q, want the appended note", last)
		}
		if p.ProfileEvidence[0] == "note 0" {
			t.Error("oldest note should have been dropped")
		}
	})

	t.Run("absent fields untouched", func(t *testing.T) {
		p := defaultProfile("s1")
		before := *p
		applySessionPatch(p, &Patch{})
		if p.ConfidenceLevel != before.ConfidenceLevel ||
			p.LanguagePreference != before.LanguagePreference ||
			p.TonePreference != before.TonePreference {
			t.Error("an empty patch must not change the profile")
		}
	})

	t.Run("tags normalized", func(t *testing.T) {
		p := defaultProfile("s1")
		applySessionPatch(p, &Patch{
			LanguagePreference: strPtr(" hindi "),
			DifficultyTypes:    []string{"fractions", "Fractions"},
		})
		if p.LanguagePreference != models.LangHindi {
			t.Errorf("language = %q, want %q", p.LanguagePreference, models.LangHindi)
		}
		if len(p.DifficultyTypes) != 1 || p.DifficultyTypes[0] != "FRACTIONS" {
			t.Errorf("difficulties = %v, want single FRACTIONS", p.DifficultyTypes)
		}
	})
}

func TestApplyOnboardingResult(t *testing.T) {
	t.Run("scores taken directly", func(t *testing.T) {
		p := defaultProfile("s1")
		applyOnboardingResult(p, &Patch{ConfidenceLevel: intPtr(15)})
		// No delta rule at onboarding, only range clamping.
		if p.ConfidenceLevel != 15 {
			t.Errorf("confidence = %d, want 15", p.ConfidenceLevel)
		}
	})

	t.Run("scores clamped into range", func(t *testing.T) {
		p := defaultProfile("s1")
		applyOnboardingResult(p, &Patch{
			ConfidenceLevel:         intPtr(150),
			QuestionHesitationLevel: intPtr(-5),
		})
		if p.ConfidenceLevel != 100 || p.QuestionHesitationLevel != 0 {
			t.Errorf("scores = %d/%d, want 100/0", p.ConfidenceLevel, p.QuestionHesitationLevel)
		}
	})
}

func TestTruncateEvidence(t *testing.T) {
	notes := make([]string, 0, models.MaxProfileEvidence+5)
	for i := 0; i < models.MaxProfileEvidence+5; i++ {
		notes = append(notes, fmt.Sprintf("note %d", i))
	}
	notes = append(notes, "   ", "")

	got := truncateEvidence(notes)
	if len(got) != models.MaxProfileEvidence {
		t.Fatalf("len = %d, want %d", len(got), models.MaxProfileEvidence)
	}
	if got[len(got)-1] != fmt.Sprintf("note %d", models.MaxProfileEvidence+4) {
		t.Errorf("last note = %q, want the most recent non-blank note", got[len(got)-1])
	}
}

func TestDefaultProfile(t *testing.T) {
	p := defaultProfile("s1")
	if p.Version != 1 {
		t.Errorf("version = %d, want 1", p.Version)
	}
	if p.LanguagePreference != models.LangGujarati || p.TonePreference != models.ToneFriendly {
		t.Error("defaults should be Gujarati-first and friendly")
	}
	if p.ConfidenceLevel != 70 || p.QuestionHesitationLevel != 30 {
		t.Errorf("default scores = %d/%d, want 70/30", p.ConfidenceLevel, p.QuestionHesitationLevel)
	}
}
