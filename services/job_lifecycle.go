package services

import (
	"errors"
	"fmt"
	"time"

	"foerderkreis-service/models"
	"foerderkreis-service/store"
)

// Expected, user-facing outcomes of the claim lifecycle. Anything else
// coming out of Claim/Complete/Withdraw is an infrastructure failure.
var (
	ErrJobNotFound      = errors.New("job not found")
	ErrJobClosed        = errors.New("job is completed or cancelled")
	ErrAlreadyClaimed   = errors.New("user already holds an active claim on this job")
	ErrCapacityExceeded = errors.New("no spots remaining on this job")
	ErrNoActiveClaim    = errors.New("user holds no active claim on this job")
	ErrNoFamily         = errors.New("user has no family to attribute hours to")
	ErrConflict         = errors.New("concurrent conflict, retry the operation")
)

// JobLifecycle is the sole entry point for claiming, completing and
// withdrawing from jobs. Each operation runs as one transaction against
// the store: the job row is locked first, so the capacity check in Claim
// and the count-to-zero checks in Complete/Withdraw always see the claim
// set they are about to modify.
type JobLifecycle struct {
	Store store.Store

	now func() time.Time
}

func NewJobLifecycle(st store.Store) *JobLifecycle {
	return &JobLifecycle{Store: st, now: time.Now}
}

// HourEntryDescription is the fixed template for auto-logged ledger entries.
func HourEntryDescription(jobTitle string) string {
	return fmt.Sprintf("Aufgabe erledigt: %s", jobTitle)
}

// SpotsRemaining computes the job's free claim slots from an active claim
// count taken in the same transaction. A negative value means the capacity
// invariant was already violated and is treated as a bug, not a state.
func SpotsRemaining(job *models.Job, activeClaims int64) int {
	return job.MaxClaimants - int(activeClaims)
}

// Claim moves (job, user) from unclaimed to CLAIMED. A COMPLETED or
// WITHDRAWN claim does not block a fresh attempt; only a live CLAIMED one
// does. The first active claim flips the job OPEN → CLAIMED.
func (l *JobLifecycle) Claim(jobID, userID string) error {
	err := l.Store.InTransaction(func(tx store.Tx) error {
		job, err := tx.GetJob(jobID)
		if err != nil {
			return err
		}
		if job.Status.Closed() {
			return ErrJobClosed
		}

		if _, err := tx.FindClaim(jobID, userID, models.ClaimStatusClaimed); err == nil {
			return ErrAlreadyClaimed
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		active, err := tx.CountActiveClaims(jobID)
		if err != nil {
			return err
		}
		if SpotsRemaining(job, active) <= 0 {
			return ErrCapacityExceeded
		}

		if _, err := tx.InsertClaim(jobID, userID); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return ErrAlreadyClaimed
			}
			return err
		}

		if job.Status == models.JobStatusOpen {
			return l.transitionJob(tx, job, models.JobStatusClaimed)
		}
		return nil
	})
	return l.mapStoreError(err)
}

// Complete marks the user's claim COMPLETED and appends the auto-generated
// hour entry to the family ledger. The job itself only closes once no
// CLAIMED claims remain; other users' live claims keep it open.
func (l *JobLifecycle) Complete(jobID, userID string) error {
	err := l.Store.InTransaction(func(tx store.Tx) error {
		job, err := tx.GetJob(jobID)
		if err != nil {
			return err
		}
		if job.Status.Closed() {
			return ErrJobClosed
		}

		claim, err := tx.FindClaim(jobID, userID, models.ClaimStatusClaimed)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveClaim
		}
		if err != nil {
			return err
		}

		familyID, err := tx.UserFamilyID(userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoFamily
		}
		if err != nil {
			return err
		}
		if familyID == nil {
			return ErrNoFamily
		}

		now := l.now()
		if err := tx.UpdateClaimStatus(claim.ID, models.ClaimStatusCompleted, &now); err != nil {
			return err
		}

		entry := &models.VolunteerHour{
			UserID:        userID,
			FamilyID:      *familyID,
			KreisID:       job.KreisID,
			JobID:         &job.ID,
			Hours:         job.EstimatedHours,
			Description:   HourEntryDescription(job.Title),
			DatePerformed: now,
		}
		if err := tx.InsertHourEntry(entry); err != nil {
			return err
		}

		// Count re-read inside the same transaction — a stale pre-tx count
		// here would close the job under a concurrent completer's feet.
		stillClaimed, err := tx.CountClaimedOnly(jobID)
		if err != nil {
			return err
		}
		if stillClaimed == 0 {
			return l.transitionJob(tx, job, models.JobStatusCompleted)
		}
		return nil
	})
	return l.mapStoreError(err)
}

// Withdraw releases the user's claim. The record stays (history, not
// deletion) and never logged hours, so there is nothing to reverse. With
// no active claims left the job reopens for new claimants.
func (l *JobLifecycle) Withdraw(jobID, userID string) error {
	err := l.Store.InTransaction(func(tx store.Tx) error {
		job, err := tx.GetJob(jobID)
		if err != nil {
			return err
		}
		if job.Status.Closed() {
			return ErrJobClosed
		}

		claim, err := tx.FindClaim(jobID, userID, models.ClaimStatusClaimed)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoActiveClaim
		}
		if err != nil {
			return err
		}

		if err := tx.UpdateClaimStatus(claim.ID, models.ClaimStatusWithdrawn, nil); err != nil {
			return err
		}

		active, err := tx.CountActiveClaims(jobID)
		if err != nil {
			return err
		}
		if active == 0 {
			return l.transitionJob(tx, job, models.JobStatusOpen)
		}
		return nil
	})
	return l.mapStoreError(err)
}

// transitionJob applies a status change after consulting the transition
// table. An illegal edge means the row changed under us despite the lock,
// which only a lost conflict can explain.
func (l *JobLifecycle) transitionJob(tx store.Tx, job *models.Job, next models.JobStatus) error {
	if !job.Status.CanTransitionTo(next) {
		return ErrConflict
	}
	return tx.UpdateJobStatus(job.ID, next)
}

func (l *JobLifecycle) mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrJobNotFound
	case errors.Is(err, store.ErrConflict):
		return ErrConflict
	default:
		return err
	}
}
