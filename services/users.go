package services

import (
	"strconv"
	"strings"

	"foerderkreis-service/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// isAdmin checks the locally mirrored user record. Roles arrive via the
// sync worker, not from the request, so a spoofed header cannot escalate.
func isAdmin(db *gorm.DB, userID string) bool {
	var user models.User
	if err := db.Select("role").First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	return user.Role == models.RoleAdmin
}

// UserService serves the mirrored user directory.
type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// GetMe returns the caller's mirrored profile with family attached.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var user models.User
	if err := s.DB.Preload("Family").First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "Profil noch nicht synchronisiert"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(user)
}

// SearchUsers searches the local user mirror by name or email.
func (s *UserService) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q", "")
	limit, err := strconv.Atoi(c.Query("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	db := s.DB.Model(&models.User{}).Limit(limit)
	if query != "" {
		searchTerm := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		db = db.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?",
			searchTerm, searchTerm, searchTerm,
		)
	}

	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "search failed", "details": err.Error()})
	}

	type UserSummary struct {
		ID        string  `json:"id"`
		FirstName string  `json:"first_name"`
		LastName  string  `json:"last_name"`
		FamilyID  *string `json:"family_id,omitempty"`
	}
	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			FamilyID:  u.FamilyID,
		}
	}
	return c.JSON(res)
}
