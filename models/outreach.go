package models

import "time"

// EmailOutreachLog records that a summary or reminder was produced for a
// family. Actual delivery happens in the external mail service; this row
// is the audit trail the schedulers write.
type EmailOutreachLog struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FamilyID  string    `gorm:"type:uuid;not null;index" json:"family_id"`
	EmailType string    `gorm:"not null" json:"email_type"` // "monthly_summary", "hours_reminder"
	Subject   string    `gorm:"not null" json:"subject"`
	SentAt    time.Time `gorm:"autoCreateTime" json:"sent_at"`
	Metadata  *string   `gorm:"type:jsonb" json:"metadata,omitempty"`
}
