package models

// ProfileUpdateModel is the audit trail of profile patches. One row per
// accepted ApplyPatch call, keyed by the session that produced it.
type ProfileUpdateModel struct {
	Base
	StudentID string `json:"student_id" gorm:"index;not null"`
	SessionID string `json:"session_id" gorm:"index;not null"`

	// Patch is the raw partial JSON the updater model returned.
	Patch string `json:"patch" gorm:"type:text;not null"`

	// RejectedFields lists patch keys outside the whitelist that were
	// ignored rather than applied.
	RejectedFields StringArray `json:"rejected_fields" gorm:"type:json"`

	BaseVersion int `json:"base_version"`
	NewVersion  int `json:"new_version"`
}

func (ProfileUpdateModel) TableName() string { return "student_profile_updates" }
