package services

import (
	"math"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all services. Hours fields use the custom
// "quarterhour" rule: entries are logged in 0.25h steps.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("quarterhour", func(fl validator.FieldLevel) bool {
		h := fl.Field().Float()
		steps := h / 0.25
		return math.Abs(steps-math.Round(steps)) < 1e-9
	})
	return v
}

// JobInput carries a new job posting.
type JobInput struct {
	Title          string   `json:"title" validate:"required,min=3,max=200"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	KreisID        *string  `json:"kreis_id,omitempty" validate:"omitempty,uuid"`
	EstimatedHours float64  `json:"estimated_hours" validate:"required,gte=0.25,lte=100,quarterhour"`
	Urgency        string   `json:"urgency" validate:"omitempty,oneof=LOW NORMAL HIGH CRITICAL"`
	Location       *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	SkillsNeeded   []string `json:"skills_needed,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
	DueDate        *string  `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MaxClaimants   int      `json:"max_claimants" validate:"omitempty,min=1,max=50"`
}

// LogHoursInput carries a manually logged ledger entry.
type LogHoursInput struct {
	DatePerformed string  `json:"date_performed" validate:"required,datetime=2006-01-02"`
	Hours         float64 `json:"hours" validate:"required,gte=0.25,lte=24,quarterhour"`
	Description   string  `json:"description" validate:"required,min=3,max=500"`
	KreisID       *string `json:"kreis_id,omitempty" validate:"omitempty,uuid"`
}

// KreisInput carries a new interest group.
type KreisInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Icon        *string `json:"icon,omitempty" validate:"omitempty,max=50"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// firstValidationError flattens a validator error into one short message
// for the client, the same shape the other error responses use.
func firstValidationError(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return "ungueltiges Feld: " + fe.Field() + " (" + fe.Tag() + ")"
	}
	return "ungueltige Eingabe"
}
