package models

// Explanation style tags a student can prefer.
const (
	StyleExample    = "EXAMPLE"
	StyleStepByStep = "STEP_BY_STEP"
	StyleShort      = "SHORT"
	StyleDetailed   = "DETAILED"
)

// Language preferences.
const (
	LangGujarati = "GUJARATI"
	LangHindi    = "HINDI"
	LangEnglish  = "ENGLISH"
	LangMix      = "MIX"
)

// Tone preferences.
const (
	ToneFriendly      = "FRIENDLY"
	ToneStrictButKind = "STRICT_BUT_KIND"
	ToneVerySimple    = "VERY_SIMPLE"
)

// MaxProfileEvidence bounds the evidence note list; older notes are dropped
// first when a patch appends past the limit.
const MaxProfileEvidence = 10

// StudentProfileModel is the durable per-student learning profile. Created
// once at onboarding and only ever patched afterwards.
type StudentProfileModel struct {
	Base
	StudentID string `json:"student_id" gorm:"uniqueIndex;not null"`
	Name      string `json:"name"`
	Grade     string `json:"grade"`

	PreferredExplanationStyles StringArray `json:"preferred_explanation_styles" gorm:"type:json"`
	LanguagePreference         string      `json:"language_preference"          gorm:"default:'GUJARATI'"`
	TonePreference             string      `json:"tone_preference"              gorm:"default:'FRIENDLY'"`

	// ConfidenceLevel and QuestionHesitationLevel are 0-100 scores. A single
	// patch may move each by at most ±10 so one session cannot wildly swing
	// the profile.
	ConfidenceLevel         int `json:"confidence_level"          gorm:"default:70"`
	QuestionHesitationLevel int `json:"question_hesitation_level" gorm:"default:30"`

	DifficultyTypes   StringArray `json:"difficulty_types"    gorm:"type:json"`
	StudyObstacles    StringArray `json:"study_obstacles"     gorm:"type:json"`
	StuckStrategy     string      `json:"stuck_strategy"`
	MostHelpfulFormat string      `json:"most_helpful_format"`
	AIPrimaryGoal     string      `json:"ai_primary_goal"`

	ProfileEvidence StringArray `json:"profile_evidence" gorm:"type:json"`

	// Version increments on every accepted patch.
	Version int `json:"version" gorm:"default:1;not null"`
}

func (StudentProfileModel) TableName() string { return "student_profiles" }

// FallbackName is used for greetings when no name was collected.
const FallbackName = "Student"

// FallbackGrade is the grade label when none was collected. It doubles as
// the default grade component of cache keys.
const FallbackGrade = "Unknown"

// DisplayName returns the greeting name, falling back when absent.
func (p *StudentProfileModel) DisplayName() string {
	if p.Name == "" {
		return FallbackName
	}
	return p.Name
}

// GradeLabel returns the grade, falling back when absent.
func (p *StudentProfileModel) GradeLabel() string {
	if p.Grade == "" {
		return FallbackGrade
	}
	return p.Grade
}
