package services

import (
	"errors"
	"log"
	"time"

	"foerderkreis-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HoursService is the manual-logging path into the family hour ledger.
// Auto-generated entries from job completion come through JobLifecycle
// and are never written here.
type HoursService struct {
	DB *gorm.DB
}

func NewHoursService(db *gorm.DB) *HoursService {
	return &HoursService{DB: db}
}

// familyIDOf resolves which family ledger the user's hours land in.
func (s *HoursService) familyIDOf(userID string) (*string, error) {
	var user models.User
	err := s.DB.Select("family_id").First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return user.FamilyID, nil
}

func (s *HoursService) LogHours(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	familyID, err := s.familyIDOf(userID)
	if err != nil || familyID == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Du gehoerst noch keiner Familie an"})
	}

	var req LogHoursInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": firstValidationError(err)})
	}

	datePerformed, err := time.Parse("2006-01-02", req.DatePerformed)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid date_performed (use YYYY-MM-DD)"})
	}

	entry := &models.VolunteerHour{
		UserID:        userID,
		FamilyID:      *familyID,
		KreisID:       req.KreisID,
		Hours:         req.Hours,
		Description:   req.Description,
		DatePerformed: datePerformed,
	}
	if err := s.DB.Create(entry).Error; err != nil {
		log.Printf("ERROR logging hours for user %s: %v", userID, err)
		return c.Status(500).JSON(fiber.Map{"error": "Stunden konnten nicht erfasst werden"})
	}
	return c.Status(201).JSON(entry)
}

// UpdateHours edits one of the caller's own manually logged entries.
// Auto-generated entries (job_id set) stay immutable.
func (s *HoursService) UpdateHours(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("user_id").(string)

	var req LogHoursInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": firstValidationError(err)})
	}
	datePerformed, err := time.Parse("2006-01-02", req.DatePerformed)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid date_performed (use YYYY-MM-DD)"})
	}

	result := s.DB.Model(&models.VolunteerHour{}).
		Where("id = ? AND user_id = ? AND job_id IS NULL", id, userID).
		Updates(map[string]interface{}{
			"hours":          req.Hours,
			"description":    req.Description,
			"date_performed": datePerformed,
			"kreis_id":       req.KreisID,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Eintrag konnte nicht aktualisiert werden"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Eintrag nicht gefunden"})
	}
	return c.JSON(fiber.Map{"message": "Eintrag aktualisiert"})
}

// DeleteHours removes one of the caller's own manual entries. Mirrors the
// update rules: job-generated entries cannot be deleted.
func (s *HoursService) DeleteHours(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("user_id").(string)

	result := s.DB.Where("id = ? AND user_id = ? AND job_id IS NULL", id, userID).
		Delete(&models.VolunteerHour{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Eintrag konnte nicht geloescht werden"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Eintrag nicht gefunden"})
	}
	return c.JSON(fiber.Map{"message": "Eintrag geloescht"})
}

// GetHistory lists the caller's family ledger, newest first.
func (s *HoursService) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	familyID, err := s.familyIDOf(userID)
	if err != nil || familyID == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Du gehoerst noch keiner Familie an"})
	}

	var entries []models.VolunteerHour
	if err := s.DB.Preload("Kreis").
		Where("family_id = ?", *familyID).
		Order("date_performed DESC, created_at DESC").
		Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch history"})
	}
	return c.JSON(entries)
}

// GetFamilySummary returns current month and year totals against the
// family's targets — the numbers behind the dashboard progress ring.
func (s *HoursService) GetFamilySummary(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	familyID, err := s.familyIDOf(userID)
	if err != nil || familyID == nil {
		return c.Status(400).JSON(fiber.Map{"error": "Du gehoerst noch keiner Familie an"})
	}

	var family models.Family
	if errors.Is(s.DB.First(&family, "id = ?", *familyID).Error, gorm.ErrRecordNotFound) {
		return c.Status(404).JSON(fiber.Map{"error": "Familie nicht gefunden"})
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	monthHours := s.sumHours(*familyID, monthStart)
	yearHours := s.sumHours(*familyID, yearStart)

	return c.JSON(fiber.Map{
		"family_id":             family.ID,
		"family_name":           family.Name,
		"monthly_hour_target":   family.MonthlyHourTarget,
		"yearly_legal_minimum":  family.YearlyLegalMinimum,
		"total_hours_this_month": monthHours,
		"total_hours_this_year":  yearHours,
	})
}

func (s *HoursService) sumHours(familyID string, since time.Time) float64 {
	var total float64
	s.DB.Model(&models.VolunteerHour{}).
		Where("family_id = ? AND date_performed >= ?", familyID, since).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total)
	return total
}

// FlagEntry toggles the admin review marker on a ledger entry.
func (s *HoursService) FlagEntry(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Locals("user_id").(string)

	if !isAdmin(s.DB, userID) {
		return c.Status(403).JSON(fiber.Map{"error": "Keine Berechtigung"})
	}

	type Req struct {
		Flagged bool `json:"flagged"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	result := s.DB.Model(&models.VolunteerHour{}).
		Where("id = ?", id).
		Update("flagged", req.Flagged)
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "flag update failed"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Eintrag nicht gefunden"})
	}
	return c.JSON(fiber.Map{"message": "Eintrag markiert", "flagged": req.Flagged})
}
