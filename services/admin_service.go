package services

import (
	"log"
	"time"

	"foerderkreis-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminService covers participation monitoring: family administration,
// the leaderboard data and the yearly export feed.
type AdminService struct {
	DB *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{DB: db}
}

func (s *AdminService) GetAllFamilies(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	if !isAdmin(s.DB, userID) {
		return c.Status(403).JSON(fiber.Map{"error": "Keine Berechtigung"})
	}

	var families []models.Family
	if err := s.DB.Preload("Members").
		Where("is_active = true").
		Order("name ASC").
		Find(&families).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch families"})
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	for i := range families {
		families[i].TotalHoursThisMonth = s.sumFamilyHours(families[i].ID, monthStart)
		families[i].TotalHoursThisYear = s.sumFamilyHours(families[i].ID, yearStart)
	}
	return c.JSON(families)
}

func (s *AdminService) UpdateFamily(c *fiber.Ctx) error {
	familyID := c.Params("id")
	userID := c.Locals("user_id").(string)
	if !isAdmin(s.DB, userID) {
		return c.Status(403).JSON(fiber.Map{"error": "Keine Berechtigung"})
	}

	type Req struct {
		MonthlyHourTarget float64 `json:"monthly_hour_target" validate:"required,gt=0,lte=100"`
		Notes             *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": firstValidationError(err)})
	}

	result := s.DB.Model(&models.Family{}).
		Where("id = ?", familyID).
		Updates(map[string]interface{}{
			"monthly_hour_target": req.MonthlyHourTarget,
			"notes":               req.Notes,
		})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Familie konnte nicht aktualisiert werden"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Familie nicht gefunden"})
	}
	return c.JSON(fiber.Map{"message": "Familie aktualisiert"})
}

// GetLeaderboard returns family totals for the current month. Families in
// privacy mode appear as anonymous rows so the ranking stays honest
// without exposing names.
func (s *AdminService) GetLeaderboard(c *fiber.Ctx) error {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type Row struct {
		FamilyID    string  `json:"family_id"`
		FamilyName  string  `json:"family_name"`
		TotalHours  float64 `json:"total_hours"`
		PrivacyMode bool    `json:"privacy_mode"`
	}
	var rows []Row
	err := s.DB.Raw(`
		SELECT
			f.id AS family_id,
			f.name AS family_name,
			COALESCE(SUM(vh.hours), 0) AS total_hours,
			COALESCE(BOOL_OR(u.privacy_mode), false) AS privacy_mode
		FROM families f
		LEFT JOIN volunteer_hours vh ON vh.family_id = f.id AND vh.date_performed >= ?
		LEFT JOIN users u ON u.family_id = f.id
		WHERE f.is_active = true AND f.deleted_at IS NULL
		GROUP BY f.id
		ORDER BY total_hours DESC, f.name ASC
	`, monthStart).Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR fetching leaderboard: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch leaderboard"})
	}

	for i := range rows {
		if rows[i].PrivacyMode {
			rows[i].FamilyName = "Familie (privat)"
		}
	}
	return c.JSON(rows)
}

// GetExportData returns per-family hour totals since January 1st as JSON.
// Rendering a CSV out of this is the frontend's business.
func (s *AdminService) GetExportData(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	if !isAdmin(s.DB, userID) {
		return c.Status(403).JSON(fiber.Map{"error": "Keine Berechtigung"})
	}

	var families []models.Family
	if err := s.DB.Select("id", "name", "monthly_hour_target", "yearly_legal_minimum").
		Where("is_active = true").
		Find(&families).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch families"})
	}

	now := time.Now()
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	type FamilyExport struct {
		FamilyID           string  `json:"family_id"`
		FamilyName         string  `json:"family_name"`
		MonthlyHourTarget  float64 `json:"monthly_hour_target"`
		YearlyLegalMinimum float64 `json:"yearly_legal_minimum"`
		TotalHours         float64 `json:"total_hours"`
	}
	export := make([]FamilyExport, 0, len(families))
	for _, f := range families {
		export = append(export, FamilyExport{
			FamilyID:           f.ID,
			FamilyName:         f.Name,
			MonthlyHourTarget:  f.MonthlyHourTarget,
			YearlyLegalMinimum: f.YearlyLegalMinimum,
			TotalHours:         s.sumFamilyHours(f.ID, yearStart),
		})
	}
	return c.JSON(fiber.Map{
		"year":     now.Year(),
		"families": export,
	})
}

// GetFlaggedEntries lists ledger entries an admin marked for review.
func (s *AdminService) GetFlaggedEntries(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	if !isAdmin(s.DB, userID) {
		return c.Status(403).JSON(fiber.Map{"error": "Keine Berechtigung"})
	}

	var entries []models.VolunteerHour
	if err := s.DB.Where("flagged = true").
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch flagged entries"})
	}
	return c.JSON(entries)
}

func (s *AdminService) sumFamilyHours(familyID string, since time.Time) float64 {
	var total float64
	s.DB.Model(&models.VolunteerHour{}).
		Where("family_id = ? AND date_performed >= ?", familyID, since).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total)
	return total
}

// familyBelowTarget reports whether the family logged less than the given
// fraction of its monthly target so far this month.
func (s *AdminService) familyBelowTarget(family *models.Family, monthStart time.Time, fraction float64) bool {
	if family.MonthlyHourTarget <= 0 {
		return false
	}
	logged := s.sumFamilyHours(family.ID, monthStart)
	return logged < family.MonthlyHourTarget*fraction
}
