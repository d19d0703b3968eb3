package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJobInput() JobInput {
	return JobInput{
		Title:          "Sommerfest aufbauen",
		EstimatedHours: 2,
		MaxClaimants:   1,
	}
}

func TestJobInputValidation(t *testing.T) {
	require.NoError(t, validate.Struct(validJobInput()))

	in := validJobInput()
	in.Title = "ab"
	assert.Error(t, validate.Struct(in), "title below minimum length")

	in = validJobInput()
	in.EstimatedHours = 0.1
	assert.Error(t, validate.Struct(in), "below the 0.25h floor")

	in = validJobInput()
	in.EstimatedHours = 101
	assert.Error(t, validate.Struct(in), "above the 100h ceiling")

	in = validJobInput()
	in.MaxClaimants = 51
	assert.Error(t, validate.Struct(in), "above the claimant ceiling")

	in = validJobInput()
	in.Urgency = "SOON"
	assert.Error(t, validate.Struct(in), "urgency outside the enum")

	in = validJobInput()
	in.Urgency = "CRITICAL"
	assert.NoError(t, validate.Struct(in))
}

func TestQuarterHourRule(t *testing.T) {
	for _, hours := range []float64{0.25, 0.5, 1, 2.75, 24} {
		in := LogHoursInput{DatePerformed: "2026-08-29", Hours: hours, Description: "Kuchen gebacken"}
		assert.NoError(t, validate.Struct(in), "%.2f is a quarter-hour step", hours)
	}
	for _, hours := range []float64{0.1, 1.3, 2.26} {
		in := LogHoursInput{DatePerformed: "2026-08-29", Hours: hours, Description: "Kuchen gebacken"}
		assert.Error(t, validate.Struct(in), "%.2f is not a quarter-hour step", hours)
	}
}

func TestLogHoursInputValidation(t *testing.T) {
	in := LogHoursInput{DatePerformed: "2026-08-29", Hours: 2, Description: "Gartentag"}
	require.NoError(t, validate.Struct(in))

	in.Hours = 24.25
	assert.Error(t, validate.Struct(in), "single entry above 24h")

	in = LogHoursInput{DatePerformed: "29.08.2026", Hours: 2, Description: "Gartentag"}
	assert.Error(t, validate.Struct(in), "date must be ISO formatted")

	in = LogHoursInput{DatePerformed: "2026-08-29", Hours: 2, Description: "ab"}
	assert.Error(t, validate.Struct(in), "description too short")
}

func TestKreisInputValidation(t *testing.T) {
	in := KreisInput{Name: "Gartenkreis"}
	require.NoError(t, validate.Struct(in))

	bad := "zzz"
	in.Color = &bad
	assert.Error(t, validate.Struct(in), "color must be a hex value")

	good := "#22c55e"
	in.Color = &good
	assert.NoError(t, validate.Struct(in))
}

func TestFirstValidationError(t *testing.T) {
	in := validJobInput()
	in.Title = ""
	err := validate.Struct(in)
	require.Error(t, err)
	assert.Contains(t, firstValidationError(err), "Title")
}
