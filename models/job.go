package models

import "time"

// JobUrgency mirrors how urgently a task needs volunteers.
type JobUrgency string

const (
	UrgencyLow      JobUrgency = "LOW"
	UrgencyNormal   JobUrgency = "NORMAL"
	UrgencyHigh     JobUrgency = "HIGH"
	UrgencyCritical JobUrgency = "CRITICAL"
)

// Job is a postable volunteer task with an hour estimate and a claimant capacity.
type Job struct {
	ID             string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title          string     `gorm:"not null" json:"title"`
	Description    *string    `gorm:"type:text" json:"description,omitempty"`
	KreisID        *string    `gorm:"type:uuid;index" json:"kreis_id,omitempty"`
	PostedBy       string     `gorm:"type:uuid;not null;index" json:"posted_by"`
	EstimatedHours float64    `gorm:"not null" json:"estimated_hours"`
	Urgency        JobUrgency `gorm:"type:varchar(16);not null;default:'NORMAL'" json:"urgency"`
	Status         JobStatus  `gorm:"type:varchar(16);not null;default:'OPEN';index" json:"status"`
	Location       *string    `json:"location,omitempty"`
	SkillsNeeded   string     `gorm:"type:text" json:"skills_needed"` // comma-separated
	DueDate        *time.Time `json:"due_date,omitempty"`
	MaxClaimants   int        `gorm:"not null;default:1" json:"max_claimants"`

	// Relationships
	Kreis  *Kreis     `json:"kreis,omitempty" gorm:"foreignKey:KreisID"`
	Claims []JobClaim `json:"claims,omitempty" gorm:"foreignKey:JobID"`

	// Calculated fields (not stored in DB)
	ClaimCount     int64 `json:"claim_count" gorm:"-"`
	SpotsRemaining int   `json:"spots_remaining" gorm:"-"`

	Timestamps
}

// JobClaim is one user's commitment to perform a job. Claims are never
// deleted; a withdrawal keeps the row and a re-claim creates a new one.
type JobClaim struct {
	ID          string      `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	JobID       string      `gorm:"type:uuid;not null;index:idx_job_claims_job_user" json:"job_id"`
	UserID      string      `gorm:"type:uuid;not null;index:idx_job_claims_job_user" json:"user_id"`
	Status      ClaimStatus `gorm:"type:varchar(16);not null;default:'CLAIMED'" json:"status"`
	ClaimedAt   time.Time   `gorm:"autoCreateTime" json:"claimed_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}
