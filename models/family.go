package models

// Family is the household unit that accumulates volunteer hours.
// Individual users log into their family's ledger.
type Family struct {
	ID                     string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name                   string  `gorm:"not null" json:"name"`
	MonthlyHourTarget      float64 `gorm:"not null;default:3" json:"monthly_hour_target"`
	YearlyLegalMinimum     float64 `gorm:"not null;default:20" json:"yearly_legal_minimum"`
	HourlyCompensationRate float64 `gorm:"not null;default:15" json:"hourly_compensation_rate"`
	IsActive               bool    `gorm:"default:true" json:"is_active"`
	Notes                  *string `gorm:"type:text" json:"notes,omitempty"`

	Members []User `json:"members,omitempty" gorm:"foreignKey:FamilyID"`

	// Calculated fields (not stored in DB)
	TotalHoursThisMonth float64 `json:"total_hours_this_month,omitempty" gorm:"-"`
	TotalHoursThisYear  float64 `json:"total_hours_this_year,omitempty" gorm:"-"`

	Timestamps
}
