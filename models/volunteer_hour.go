package models

import "time"

// VolunteerHour is one append-only entry in the family hour ledger.
// Entries auto-generated from a job completion carry the job's ID and
// estimated hours; manually logged entries leave JobID nil. Entries are
// never mutated by the job subsystem.
type VolunteerHour struct {
	ID            string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string    `gorm:"type:uuid;not null;index" json:"user_id"`
	FamilyID      string    `gorm:"type:uuid;not null;index" json:"family_id"`
	KreisID       *string   `gorm:"type:uuid;index" json:"kreis_id,omitempty"`
	JobID         *string   `gorm:"type:uuid;index" json:"job_id,omitempty"`
	Hours         float64   `gorm:"not null" json:"hours"`
	Description   string    `gorm:"not null" json:"description"`
	DatePerformed time.Time `gorm:"not null;index" json:"date_performed"`
	Flagged       bool      `gorm:"default:false" json:"flagged"` // admin review marker
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	Kreis *Kreis `json:"kreis,omitempty" gorm:"foreignKey:KreisID"`
}
