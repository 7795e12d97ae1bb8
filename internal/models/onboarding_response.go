package models

// OnboardingResponseModel keeps the raw onboarding transcript that the
// profile analyzer consumed, for later re-analysis and support.
type OnboardingResponseModel struct {
	Base
	StudentID string      `json:"student_id" gorm:"index;not null"`
	Answers   StringArray `json:"answers"    gorm:"type:json"`

	// AnalyzerOutput is the raw text the analyzer model returned.
	AnalyzerOutput string `json:"analyzer_output" gorm:"type:text"`
}

func (OnboardingResponseModel) TableName() string { return "student_onboarding_responses" }
