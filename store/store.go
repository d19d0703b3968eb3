package store

import (
	"errors"
	"time"

	"foerderkreis-service/models"
)

// Sentinel errors the bindings translate their driver errors into.
var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate means a unique constraint rejected the write.
	ErrDuplicate = errors.New("store: duplicate")
	// ErrConflict means the transaction lost a concurrency conflict and
	// the whole operation may be retried from scratch.
	ErrConflict = errors.New("store: transaction conflict")
)

// Tx is the narrow view of the data store the claim lifecycle needs.
// Every method reads or writes state inside the one transaction the Tx
// was handed out for, so a capacity check and the insert it guards see
// the same claim set.
type Tx interface {
	// GetJob returns the job and takes a row-level lock on it, so the
	// claim set cannot change under the caller until the transaction ends.
	GetJob(jobID string) (*models.Job, error)

	// CountActiveClaims counts CLAIMED plus COMPLETED claims on the job.
	CountActiveClaims(jobID string) (int64, error)

	// CountClaimedOnly counts claims still in CLAIMED status.
	CountClaimedOnly(jobID string) (int64, error)

	// FindClaim returns the user's claim on the job in one of the given
	// statuses, or ErrNotFound.
	FindClaim(jobID, userID string, statuses ...models.ClaimStatus) (*models.JobClaim, error)

	// InsertClaim creates a fresh CLAIMED claim.
	InsertClaim(jobID, userID string) (*models.JobClaim, error)

	UpdateClaimStatus(claimID string, status models.ClaimStatus, completedAt *time.Time) error
	UpdateJobStatus(jobID string, status models.JobStatus) error

	InsertHourEntry(entry *models.VolunteerHour) error

	// UserFamilyID resolves the user's family, nil if the user has none.
	UserFamilyID(userID string) (*string, error)
}

// Store hands out transactions. Either every write inside fn is durably
// applied or none is.
type Store interface {
	InTransaction(fn func(tx Tx) error) error
}
