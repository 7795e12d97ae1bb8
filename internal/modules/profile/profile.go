// Package profile owns the durable per-student learning profile: created
// once at onboarding, then only ever patched with bounded deltas after
// tutoring sessions.
package profile

import (
	"context"
	"errors"
	"strings"

	appcfg "github.com/gyansetu/core/internal/config"
	"github.com/gyansetu/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service manages student profiles and their audit trail.
type Service struct {
	db     *gorm.DB
	cfg    *appcfg.AppConfig
	logger *zap.Logger
}

func NewService(db *gorm.DB, cfg *appcfg.AppConfig, logger *zap.Logger) *Service {
	return &Service{db: db, cfg: cfg, logger: logger}
}

// Get returns the profile for a student, or nil when absent.
func (s *Service) Get(studentID string) (*models.StudentProfileModel, error) {
	var p models.StudentProfileModel
	if err := s.db.Where("student_id = ?", studentID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ExplicitFields are collected directly by the onboarding UI and always win
// over analyzer-inferred values.
type ExplicitFields struct {
	Name  string
	Grade string
}

// CreateFromOnboarding analyzes free-text onboarding answers into an initial
// profile and persists it together with the raw transcript. Analyzer
// failures are fatal: onboarding must not silently produce a half-formed
// profile.
func (s *Service) CreateFromOnboarding(ctx context.Context, studentID string, rawAnswers []string, explicit ExplicitFields) (*models.StudentProfileModel, error) {
	system, prompt := buildAnalyzerPrompt(rawAnswers)
	raw, err := s.invokeProfileModel(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	analyzed, rejected, err := ParsePatch(raw)
	if err != nil {
		return nil, err
	}
	if len(rejected) > 0 {
		s.logger.Warn("analyzer returned unknown profile fields",
			zap.String("student", studentID),
			zap.Strings("fields", rejected))
	}

	p := defaultProfile(studentID)
	applyOnboardingResult(p, analyzed)

	if name := strings.TrimSpace(explicit.Name); name != "" {
		p.Name = name
	}
	if grade := strings.TrimSpace(explicit.Grade); grade != "" {
		p.Grade = grade
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		transcript := &models.OnboardingResponseModel{
			StudentID:      studentID,
			Answers:        models.StringArray(rawAnswers),
			AnalyzerOutput: raw,
		}
		return tx.Create(transcript).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyPatch asks the updater model for a partial patch based on the latest
// session summary and applies it with bounded deltas. The caller treats any
// returned error as best-effort: log and move on, the user-facing session
// must not break.
func (s *Service) ApplyPatch(ctx context.Context, studentID, sessionID, sessionSummary string) error {
	current, err := s.Get(studentID)
	if err != nil {
		return err
	}
	if current == nil {
		return gorm.ErrRecordNotFound
	}
	baseVersion := current.Version

	system, prompt, err := buildUpdaterPrompt(current, sessionSummary)
	if err != nil {
		return err
	}
	raw, err := s.invokeProfileModel(ctx, system, prompt)
	if err != nil {
		return err
	}

	patch, rejected, err := ParsePatch(raw)
	if err != nil {
		return err
	}
	if len(rejected) > 0 {
		s.logger.Warn("updater returned unknown profile fields, ignoring them",
			zap.String("student", studentID),
			zap.Strings("fields", rejected))
	}

	updated := *current
	applySessionPatch(&updated, patch)
	updated.Version = baseVersion + 1

	return s.db.Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on version: a patch computed against a stale
		// profile is rejected, not merged.
		res := tx.Model(&models.StudentProfileModel{}).
			Where("student_id = ? AND version = ?", studentID, baseVersion).
			Updates(updateColumns(&updated))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}

		audit := &models.ProfileUpdateModel{
			StudentID:      studentID,
			SessionID:      sessionID,
			Patch:          raw,
			RejectedFields: models.StringArray(rejected),
			BaseVersion:    baseVersion,
			NewVersion:     updated.Version,
		}
		return tx.Create(audit).Error
	})
}

// ListUpdates returns the audit trail for a student, newest first.
func (s *Service) ListUpdates(studentID string, page, size int) ([]models.ProfileUpdateModel, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 50 {
		size = 20
	}

	q := s.db.Model(&models.ProfileUpdateModel{}).Where("student_id = ?", studentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ProfileUpdateModel
	if err := q.Order("created_at DESC").Offset((page - 1) * size).Limit(size).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// PruneAudit deletes audit rows older than the retention window. Run by the
// cron scheduler.
func (s *Service) PruneAudit(ctx context.Context, keepDays int) error {
	if keepDays <= 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Where("created_at < DATE_SUB(NOW(), INTERVAL ? DAY)", keepDays).
		Delete(&models.ProfileUpdateModel{}).Error
}

func defaultProfile(studentID string) *models.StudentProfileModel {
	return &models.StudentProfileModel{
		StudentID:                  studentID,
		PreferredExplanationStyles: models.StringArray{models.StyleStepByStep},
		LanguagePreference:         models.LangGujarati,
		TonePreference:             models.ToneFriendly,
		ConfidenceLevel:            70,
		QuestionHesitationLevel:    30,
		DifficultyTypes:            models.StringArray{},
		StudyObstacles:             models.StringArray{},
		ProfileEvidence:            models.StringArray{},
		Version:                    1,
	}
}

// applyOnboardingResult fills a fresh profile from analyzer output. Numeric
// scores are taken as-is (clamped into range); the ±10 delta rule only
// applies to later session patches.
func applyOnboardingResult(p *models.StudentProfileModel, patch *Patch) {
	applyStringFields(p, patch)
	if patch.ConfidenceLevel != nil {
		p.ConfidenceLevel = clampRange(*patch.ConfidenceLevel)
	}
	if patch.QuestionHesitationLevel != nil {
		p.QuestionHesitationLevel = clampRange(*patch.QuestionHesitationLevel)
	}
	if patch.ProfileEvidence != nil {
		p.ProfileEvidence = truncateEvidence(patch.ProfileEvidence)
	}
}

// applySessionPatch applies a post-session patch with bounded numeric
// deltas and append-only evidence.
func applySessionPatch(p *models.StudentProfileModel, patch *Patch) {
	applyStringFields(p, patch)
	if patch.ConfidenceLevel != nil {
		p.ConfidenceLevel = clampDelta(p.ConfidenceLevel, *patch.ConfidenceLevel)
	}
	if patch.QuestionHesitationLevel != nil {
		p.QuestionHesitationLevel = clampDelta(p.QuestionHesitationLevel, *patch.QuestionHesitationLevel)
	}
	if len(patch.ProfileEvidence) > 0 {
		merged := append([]string(p.ProfileEvidence), patch.ProfileEvidence...)
		p.ProfileEvidence = truncateEvidence(merged)
	}
}

func applyStringFields(p *models.StudentProfileModel, patch *Patch) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Grade != nil && strings.TrimSpace(*patch.Grade) != "" {
		p.Grade = strings.TrimSpace(*patch.Grade)
	}
	if patch.PreferredExplanationStyles != nil {
		p.PreferredExplanationStyles = models.StringArray(normalizeTags(patch.PreferredExplanationStyles))
	}
	if patch.LanguagePreference != nil {
		p.LanguagePreference = normalizeTag(*patch.LanguagePreference)
	}
	if patch.TonePreference != nil {
		p.TonePreference = normalizeTag(*patch.TonePreference)
	}
	if patch.DifficultyTypes != nil {
		p.DifficultyTypes = models.StringArray(normalizeTags(patch.DifficultyTypes))
	}
	if patch.StudyObstacles != nil {
		p.StudyObstacles = models.StringArray(normalizeTags(patch.StudyObstacles))
	}
	if patch.StuckStrategy != nil {
		p.StuckStrategy = normalizeTag(*patch.StuckStrategy)
	}
	if patch.MostHelpfulFormat != nil {
		p.MostHelpfulFormat = normalizeTag(*patch.MostHelpfulFormat)
	}
	if patch.AIPrimaryGoal != nil {
		p.AIPrimaryGoal = normalizeTag(*patch.AIPrimaryGoal)
	}
}

func clampRange(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// truncateEvidence keeps the most recent notes within the bound.
func truncateEvidence(notes []string) models.StringArray {
	cleaned := make([]string, 0, len(notes))
	for _, note := range notes {
		if n := strings.TrimSpace(note); n != "" {
			cleaned = append(cleaned, n)
		}
	}
	if len(cleaned) > models.MaxProfileEvidence {
		cleaned = cleaned[len(cleaned)-models.MaxProfileEvidence:]
	}
	return models.StringArray(cleaned)
}

func updateColumns(p *models.StudentProfileModel) map[string]interface{} {
	return map[string]interface{}{
		"name":                         p.Name,
		"grade":                        p.Grade,
		"preferred_explanation_styles": p.PreferredExplanationStyles,
		"language_preference":          p.LanguagePreference,
		"tone_preference":              p.TonePreference,
		"confidence_level":             p.ConfidenceLevel,
		"question_hesitation_level":    p.QuestionHesitationLevel,
		"difficulty_types":             p.DifficultyTypes,
		"study_obstacles":              p.StudyObstacles,
		"stuck_strategy":               p.StuckStrategy,
		"most_helpful_format":          p.MostHelpfulFormat,
		"ai_primary_goal":              p.AIPrimaryGoal,
		"profile_evidence":             p.ProfileEvidence,
		"version":                      p.Version,
	}
}
