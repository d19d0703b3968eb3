package store

import (
	"errors"
	"time"

	"foerderkreis-service/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore binds the Store interface to a GORM/Postgres connection.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) InTransaction(fn func(tx Tx) error) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
	return TranslateError(err)
}

type gormTx struct {
	db *gorm.DB
}

// GetJob locks the job row FOR UPDATE. Concurrent claim/complete/withdraw
// calls on the same job serialize here, which is what keeps the capacity
// check and the count-to-zero checks consistent with the writes they guard.
func (t *gormTx) GetJob(jobID string) (*models.Job, error) {
	var job models.Job
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (t *gormTx) CountActiveClaims(jobID string) (int64, error) {
	var count int64
	err := t.db.Model(&models.JobClaim{}).
		Where("job_id = ? AND status IN ?", jobID,
			[]models.ClaimStatus{models.ClaimStatusClaimed, models.ClaimStatusCompleted}).
		Count(&count).Error
	return count, err
}

func (t *gormTx) CountClaimedOnly(jobID string) (int64, error) {
	var count int64
	err := t.db.Model(&models.JobClaim{}).
		Where("job_id = ? AND status = ?", jobID, models.ClaimStatusClaimed).
		Count(&count).Error
	return count, err
}

func (t *gormTx) FindClaim(jobID, userID string, statuses ...models.ClaimStatus) (*models.JobClaim, error) {
	var claim models.JobClaim
	err := t.db.Where("job_id = ? AND user_id = ? AND status IN ?", jobID, userID, statuses).
		Order("claimed_at DESC").
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

func (t *gormTx) InsertClaim(jobID, userID string) (*models.JobClaim, error) {
	claim := models.JobClaim{
		JobID:  jobID,
		UserID: userID,
		Status: models.ClaimStatusClaimed,
	}
	if err := t.db.Create(&claim).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &claim, nil
}

func (t *gormTx) UpdateClaimStatus(claimID string, status models.ClaimStatus, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt
	}
	result := t.db.Model(&models.JobClaim{}).
		Where("id = ?", claimID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) UpdateJobStatus(jobID string, status models.JobStatus) error {
	result := t.db.Model(&models.Job{}).
		Where("id = ?", jobID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) InsertHourEntry(entry *models.VolunteerHour) error {
	return t.db.Create(entry).Error
}

func (t *gormTx) UserFamilyID(userID string) (*string, error) {
	var user models.User
	err := t.db.Select("family_id").First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user.FamilyID, nil
}

// Postgres SQLSTATE codes worth mapping to typed outcomes.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// TranslateError maps driver-level Postgres errors onto the store's
// sentinel errors. Anything unrecognized passes through untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgSerializationFailure, pgDeadlockDetected:
			return ErrConflict
		}
	}
	return err
}
