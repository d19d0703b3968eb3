package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"foerderkreis-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobService exposes the job marketplace over HTTP. All claim-lifecycle
// mutations go through the JobLifecycle coordinator; this service never
// touches claim rows directly.
type JobService struct {
	DB        *gorm.DB
	Lifecycle *JobLifecycle
}

func NewJobService(db *gorm.DB, lifecycle *JobLifecycle) *JobService {
	return &JobService{DB: db, Lifecycle: lifecycle}
}

func (s *JobService) CreateJob(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req JobInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if err := validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": firstValidationError(err)})
	}

	urgency := models.UrgencyNormal
	if req.Urgency != "" {
		urgency = models.JobUrgency(req.Urgency)
	}
	maxClaimants := req.MaxClaimants
	if maxClaimants == 0 {
		maxClaimants = 1
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		d, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid due_date (use YYYY-MM-DD)"})
		}
		dueDate = &d
	}

	if req.KreisID != nil {
		if err := s.DB.First(&models.Kreis{}, "id = ? AND is_active = true", *req.KreisID).Error; err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "kreis_id not found"})
		}
	}

	job := &models.Job{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		KreisID:        req.KreisID,
		PostedBy:       userID,
		EstimatedHours: req.EstimatedHours,
		Urgency:        urgency,
		Status:         models.JobStatusOpen,
		Location:       req.Location,
		SkillsNeeded:   strings.Join(req.SkillsNeeded, ","),
		DueDate:        dueDate,
		MaxClaimants:   maxClaimants,
	}
	if err := s.DB.Create(job).Error; err != nil {
		log.Printf("ERROR creating job: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Aufgabe konnte nicht erstellt werden"})
	}
	return c.Status(201).JSON(job)
}

// GetAllJobs lists jobs with their kreis and active claim counts.
// Optional filters: ?status=OPEN&kreis=<id>.
func (s *JobService) GetAllJobs(c *fiber.Ctx) error {
	query := s.DB.Preload("Kreis").Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", strings.ToUpper(status))
	}
	if kreisID := c.Query("kreis"); kreisID != "" {
		query = query.Where("kreis_id = ?", kreisID)
	}

	var jobs []models.Job
	if err := query.Find(&jobs).Error; err != nil {
		log.Printf("ERROR fetching jobs: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch jobs"})
	}

	for i := range jobs {
		var count int64
		s.DB.Model(&models.JobClaim{}).
			Where("job_id = ? AND status IN ?", jobs[i].ID,
				[]models.ClaimStatus{models.ClaimStatusClaimed, models.ClaimStatusCompleted}).
			Count(&count)
		jobs[i].ClaimCount = count
		jobs[i].SpotsRemaining = SpotsRemaining(&jobs[i], count)
	}
	return c.JSON(jobs)
}

func (s *JobService) GetJobByID(c *fiber.Ctx) error {
	id := c.Params("id")

	var job models.Job
	err := s.DB.
		Preload("Kreis").
		Preload("Claims", func(db *gorm.DB) *gorm.DB {
			return db.Order("claimed_at ASC")
		}).
		First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Aufgabe nicht gefunden"})
		}
		log.Printf("ERROR fetching job %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var count int64
	s.DB.Model(&models.JobClaim{}).
		Where("job_id = ? AND status IN ?", job.ID,
			[]models.ClaimStatus{models.ClaimStatusClaimed, models.ClaimStatusCompleted}).
		Count(&count)
	job.ClaimCount = count
	job.SpotsRemaining = SpotsRemaining(&job, count)

	return c.JSON(job)
}

func (s *JobService) ClaimJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	userID := c.Locals("user_id").(string)

	if err := s.Lifecycle.Claim(jobID, userID); err != nil {
		return s.claimErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Aufgabe uebernommen"})
}

func (s *JobService) CompleteJobClaim(c *fiber.Ctx) error {
	jobID := c.Params("id")
	userID := c.Locals("user_id").(string)

	if err := s.Lifecycle.Complete(jobID, userID); err != nil {
		return s.claimErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Aufgabe abgeschlossen, Stunden wurden gutgeschrieben"})
}

func (s *JobService) WithdrawClaim(c *fiber.Ctx) error {
	jobID := c.Params("id")
	userID := c.Locals("user_id").(string)

	if err := s.Lifecycle.Withdraw(jobID, userID); err != nil {
		return s.claimErrorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "Uebernahme zurueckgezogen"})
}

// CancelJob terminally cancels a job. Only the poster or an admin may do
// this; existing claims stay as history but no lifecycle operation will
// touch the job afterwards.
func (s *JobService) CancelJob(c *fiber.Ctx) error {
	jobID := c.Params("id")
	userID := c.Locals("user_id").(string)

	var job models.Job
	if err := s.DB.First(&job, "id = ?", jobID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Aufgabe nicht gefunden"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	if job.PostedBy != userID && !isAdmin(s.DB, userID) {
		return c.Status(403).JSON(fiber.Map{"error": "Keine Berechtigung"})
	}
	if !job.Status.CanTransitionTo(models.JobStatusCancelled) {
		return c.Status(409).JSON(fiber.Map{"error": "Aufgabe ist bereits abgeschlossen"})
	}

	if err := s.DB.Model(&job).
		Where("id = ? AND status = ?", job.ID, job.Status).
		Update("status", models.JobStatusCancelled).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Aufgabe konnte nicht storniert werden"})
	}
	return c.JSON(fiber.Map{"message": "Aufgabe storniert"})
}

// claimErrorResponse maps the lifecycle error taxonomy onto HTTP statuses
// with the short localized messages the UI shows.
func (s *JobService) claimErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrJobNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Aufgabe nicht gefunden"})
	case errors.Is(err, ErrJobClosed):
		return c.Status(409).JSON(fiber.Map{"error": "Aufgabe ist bereits abgeschlossen oder storniert"})
	case errors.Is(err, ErrAlreadyClaimed):
		return c.Status(409).JSON(fiber.Map{"error": "Du hast diese Aufgabe bereits uebernommen"})
	case errors.Is(err, ErrCapacityExceeded):
		return c.Status(403).JSON(fiber.Map{"error": "Alle Plaetze sind bereits vergeben"})
	case errors.Is(err, ErrNoActiveClaim):
		return c.Status(409).JSON(fiber.Map{"error": "Du hast diese Aufgabe nicht uebernommen"})
	case errors.Is(err, ErrNoFamily):
		return c.Status(400).JSON(fiber.Map{"error": "Du gehoerst noch keiner Familie an"})
	case errors.Is(err, ErrConflict):
		return c.Status(409).JSON(fiber.Map{"error": "Gleichzeitiger Zugriff, bitte erneut versuchen"})
	default:
		log.Printf("ERROR claim lifecycle: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "Status konnte nicht aktualisiert werden"})
	}
}
