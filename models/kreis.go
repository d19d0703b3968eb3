package models

import "time"

// KreisMemberRole distinguishes plain members from circle leads.
type KreisMemberRole string

const (
	KreisRoleMember KreisMemberRole = "MEMBER"
	KreisRoleLead   KreisMemberRole = "LEAD"
)

// Kreis is a named interest/working group that jobs and users attach to.
type Kreis struct {
	ID          string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;not null" json:"slug"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	Color       *string `json:"color,omitempty"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`

	Members []KreisMembership `json:"members,omitempty" gorm:"foreignKey:KreisID"`

	Timestamps
}

// KreisMembership joins a user to a Kreis. The composite primary key is
// the unique constraint that makes double-joins fail at the store.
type KreisMembership struct {
	UserID   string          `gorm:"primaryKey;type:uuid" json:"user_id"`
	KreisID  string          `gorm:"primaryKey;type:uuid" json:"kreis_id"`
	Role     KreisMemberRole `gorm:"type:varchar(16);not null;default:'MEMBER'" json:"role"`
	JoinedAt time.Time       `gorm:"autoCreateTime" json:"joined_at"`
}
