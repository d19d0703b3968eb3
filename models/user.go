package models

import "time"

// UserRole mirrors the roles the auth service assigns.
type UserRole string

const (
	RoleParent     UserRole = "PARENT"
	RoleAdmin      UserRole = "ADMIN"
	RoleCircleLead UserRole = "CIRCLE_LEAD"
)

// User is a local snapshot of the auth/profile service's user record.
// Owned by this service only as a mirror; populated via the profile sync
// worker. Authentication itself never happens here.
type User struct {
	ID          string   `gorm:"primaryKey;type:uuid" json:"id"` // the auth service's UUID
	FamilyID    *string  `gorm:"type:uuid;index" json:"family_id,omitempty"`
	Email       string   `gorm:"uniqueIndex;not null" json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Role        UserRole `gorm:"type:varchar(16);not null;default:'PARENT'" json:"role"`
	SkillTags   string   `gorm:"type:text" json:"skill_tags"` // comma-separated
	PrivacyMode bool     `gorm:"default:false" json:"privacy_mode"`

	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	Family *Family `json:"family,omitempty" gorm:"foreignKey:FamilyID"`

	Timestamps
}
