package services

import (
	"errors"
	"fmt"
	"log"

	"foerderkreis-service/models"
	"foerderkreis-service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// KreisService manages interest groups and their memberships.
type KreisService struct {
	DB *gorm.DB
}

func NewKreisService(db *gorm.DB) *KreisService {
	return &KreisService{DB: db}
}

func (s *KreisService) CreateKreis(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	if !isAdmin(s.DB, userID) {
		return c.Status(403).JSON(fiber.Map{"error": "Keine Berechtigung"})
	}

	var req KreisInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": firstValidationError(err)})
	}

	kreis := &models.Kreis{
		Name:        req.Name,
		Slug:        s.uniqueSlug(req.Name),
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		IsActive:    true,
	}
	if err := s.DB.Create(kreis).Error; err != nil {
		log.Printf("ERROR creating kreis: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Kreis konnte nicht erstellt werden"})
	}
	return c.Status(201).JSON(kreis)
}

// uniqueSlug slugifies the name and suffixes a counter on collision.
func (s *KreisService) uniqueSlug(name string) string {
	base := slug.Make(name)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		s.DB.Model(&models.Kreis{}).Where("slug = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *KreisService) GetAllKreise(c *fiber.Ctx) error {
	var kreise []models.Kreis
	if err := s.DB.Where("is_active = true").Order("name ASC").Find(&kreise).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch kreise"})
	}
	return c.JSON(kreise)
}

// GetKreisBySlug returns one kreis with its members and open jobs.
func (s *KreisService) GetKreisBySlug(c *fiber.Ctx) error {
	slugParam := c.Params("slug")

	var kreis models.Kreis
	err := s.DB.Preload("Members").First(&kreis, "slug = ? AND is_active = true", slugParam).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Kreis nicht gefunden"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var openJobs []models.Job
	s.DB.Where("kreis_id = ? AND status = ?", kreis.ID, models.JobStatusOpen).
		Order("created_at DESC").
		Find(&openJobs)

	return c.JSON(fiber.Map{
		"kreis":     kreis,
		"open_jobs": openJobs,
	})
}

func (s *KreisService) JoinKreis(c *fiber.Ctx) error {
	kreisID := c.Params("id")
	userID := c.Locals("user_id").(string)

	if err := s.DB.First(&models.Kreis{}, "id = ? AND is_active = true", kreisID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Kreis nicht gefunden"})
	}

	membership := models.KreisMembership{
		UserID:  userID,
		KreisID: kreisID,
		Role:    models.KreisRoleMember,
	}
	if err := s.DB.Create(&membership).Error; err != nil {
		// The composite PK turns a double-join into a unique violation.
		if errors.Is(store.TranslateError(err), store.ErrDuplicate) {
			return c.Status(409).JSON(fiber.Map{"error": "Du bist bereits Mitglied dieses Kreises"})
		}
		log.Printf("ERROR joining kreis %s: %v", kreisID, err)
		return c.Status(500).JSON(fiber.Map{"error": "Beitritt fehlgeschlagen"})
	}
	return c.Status(201).JSON(membership)
}

func (s *KreisService) LeaveKreis(c *fiber.Ctx) error {
	kreisID := c.Params("id")
	userID := c.Locals("user_id").(string)

	result := s.DB.Where("user_id = ? AND kreis_id = ?", userID, kreisID).
		Delete(&models.KreisMembership{})
	if result.Error != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Austritt fehlgeschlagen"})
	}
	if result.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"error": "Du bist kein Mitglied dieses Kreises"})
	}
	return c.JSON(fiber.Map{"message": "Kreis verlassen"})
}
