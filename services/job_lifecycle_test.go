package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foerderkreis-service/models"
	"foerderkreis-service/store"
)

// memStore implements store.Store in memory. Transactions are serialized
// by a mutex (the same guarantee the row lock gives per job, globally
// here) and roll back via snapshot on error, so the atomicity assertions
// below mean something.
type memStore struct {
	mu      sync.Mutex
	jobs    map[string]*models.Job
	claims  []*models.JobClaim
	entries []*models.VolunteerHour
	users   map[string]*string // userID → familyID, nil = no family
	nextID  int
}

func newMemStore() *memStore {
	return &memStore{
		jobs:  make(map[string]*models.Job),
		users: make(map[string]*string),
	}
}

func (m *memStore) seedJob(job *models.Job) {
	cp := *job
	m.jobs[job.ID] = &cp
}

func (m *memStore) seedUser(userID string, familyID *string) {
	m.users[userID] = familyID
}

func (m *memStore) InTransaction(fn func(tx store.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.copyState()
	if err := fn(&memTx{s: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memState struct {
	jobs    map[string]*models.Job
	claims  []*models.JobClaim
	entries []*models.VolunteerHour
}

func (m *memStore) copyState() memState {
	st := memState{jobs: make(map[string]*models.Job, len(m.jobs))}
	for id, j := range m.jobs {
		cp := *j
		st.jobs[id] = &cp
	}
	for _, c := range m.claims {
		cp := *c
		st.claims = append(st.claims, &cp)
	}
	for _, e := range m.entries {
		cp := *e
		st.entries = append(st.entries, &cp)
	}
	return st
}

func (m *memStore) restore(st memState) {
	m.jobs = st.jobs
	m.claims = st.claims
	m.entries = st.entries
}

type memTx struct {
	s *memStore
}

func (t *memTx) GetJob(jobID string) (*models.Job, error) {
	job, ok := t.s.jobs[jobID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func (t *memTx) CountActiveClaims(jobID string) (int64, error) {
	var count int64
	for _, c := range t.s.claims {
		if c.JobID == jobID && c.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (t *memTx) CountClaimedOnly(jobID string) (int64, error) {
	var count int64
	for _, c := range t.s.claims {
		if c.JobID == jobID && c.Status == models.ClaimStatusClaimed {
			count++
		}
	}
	return count, nil
}

func (t *memTx) FindClaim(jobID, userID string, statuses ...models.ClaimStatus) (*models.JobClaim, error) {
	for i := len(t.s.claims) - 1; i >= 0; i-- {
		c := t.s.claims[i]
		if c.JobID != jobID || c.UserID != userID {
			continue
		}
		for _, st := range statuses {
			if c.Status == st {
				cp := *c
				return &cp, nil
			}
		}
	}
	return nil, store.ErrNotFound
}

func (t *memTx) InsertClaim(jobID, userID string) (*models.JobClaim, error) {
	t.s.nextID++
	claim := &models.JobClaim{
		ID:        fmt.Sprintf("claim-%d", t.s.nextID),
		JobID:     jobID,
		UserID:    userID,
		Status:    models.ClaimStatusClaimed,
		ClaimedAt: time.Now(),
	}
	t.s.claims = append(t.s.claims, claim)
	cp := *claim
	return &cp, nil
}

func (t *memTx) UpdateClaimStatus(claimID string, status models.ClaimStatus, completedAt *time.Time) error {
	for _, c := range t.s.claims {
		if c.ID == claimID {
			c.Status = status
			if completedAt != nil {
				c.CompletedAt = completedAt
			}
			return nil
		}
	}
	return store.ErrNotFound
}

func (t *memTx) UpdateJobStatus(jobID string, status models.JobStatus) error {
	job, ok := t.s.jobs[jobID]
	if !ok {
		return store.ErrNotFound
	}
	job.Status = status
	return nil
}

func (t *memTx) InsertHourEntry(entry *models.VolunteerHour) error {
	cp := *entry
	t.s.entries = append(t.s.entries, &cp)
	return nil
}

func (t *memTx) UserFamilyID(userID string) (*string, error) {
	familyID, ok := t.s.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return familyID, nil
}

func strPtr(s string) *string { return &s }

func seedLifecycle(t *testing.T, job *models.Job) (*JobLifecycle, *memStore) {
	t.Helper()
	st := newMemStore()
	st.seedJob(job)
	return NewJobLifecycle(st), st
}

func TestClaimFlipsOpenJobToClaimed(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Sommerfest aufbauen",
		EstimatedHours: 2, MaxClaimants: 1, Status: models.JobStatusOpen,
	})
	st.seedUser("user-u", strPtr("family-u"))

	require.NoError(t, lc.Claim("job-1", "user-u"))

	assert.Equal(t, models.JobStatusClaimed, st.jobs["job-1"].Status)
	require.Len(t, st.claims, 1)
	assert.Equal(t, models.ClaimStatusClaimed, st.claims[0].Status)
}

func TestCompleteLogsHoursAndClosesJob(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Sommerfest aufbauen", KreisID: strPtr("kreis-1"),
		EstimatedHours: 2, MaxClaimants: 1, Status: models.JobStatusOpen,
	})
	st.seedUser("user-u", strPtr("family-u"))

	require.NoError(t, lc.Claim("job-1", "user-u"))
	require.NoError(t, lc.Complete("job-1", "user-u"))

	assert.Equal(t, models.JobStatusCompleted, st.jobs["job-1"].Status)
	assert.Equal(t, models.ClaimStatusCompleted, st.claims[0].Status)
	assert.NotNil(t, st.claims[0].CompletedAt)

	require.Len(t, st.entries, 1)
	entry := st.entries[0]
	assert.Equal(t, 2.0, entry.Hours)
	assert.Equal(t, "family-u", entry.FamilyID)
	assert.Equal(t, "user-u", entry.UserID)
	require.NotNil(t, entry.JobID)
	assert.Equal(t, "job-1", *entry.JobID)
	require.NotNil(t, entry.KreisID)
	assert.Equal(t, "kreis-1", *entry.KreisID)
	assert.Equal(t, "Aufgabe erledigt: Sommerfest aufbauen", entry.Description)
}

func TestClaimCapacityEnforced(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Kuchenverkauf",
		EstimatedHours: 1, MaxClaimants: 2, Status: models.JobStatusOpen,
	})

	require.NoError(t, lc.Claim("job-1", "user-a"))
	assert.Equal(t, models.JobStatusClaimed, st.jobs["job-1"].Status)

	require.NoError(t, lc.Claim("job-1", "user-b"))
	assert.Equal(t, models.JobStatusClaimed, st.jobs["job-1"].Status)

	err := lc.Claim("job-1", "user-c")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Len(t, st.claims, 2)
}

func TestJobCompletesOnlyAfterLastClaim(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Flohmarkt betreuen",
		EstimatedHours: 3, MaxClaimants: 2, Status: models.JobStatusOpen,
	})
	st.seedUser("user-a", strPtr("family-a"))
	st.seedUser("user-b", strPtr("family-b"))

	require.NoError(t, lc.Claim("job-1", "user-a"))
	require.NoError(t, lc.Claim("job-1", "user-b"))

	// A finishes; B's claim keeps the job open
	require.NoError(t, lc.Complete("job-1", "user-a"))
	assert.Equal(t, models.JobStatusClaimed, st.jobs["job-1"].Status)
	assert.Len(t, st.entries, 1)

	require.NoError(t, lc.Complete("job-1", "user-b"))
	assert.Equal(t, models.JobStatusCompleted, st.jobs["job-1"].Status)
	assert.Len(t, st.entries, 2)
	assert.Equal(t, "family-b", st.entries[1].FamilyID)
}

func TestWithdrawReopensJob(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Gartentag",
		EstimatedHours: 2, MaxClaimants: 1, Status: models.JobStatusOpen,
	})

	require.NoError(t, lc.Claim("job-1", "user-u"))
	require.NoError(t, lc.Withdraw("job-1", "user-u"))

	assert.Equal(t, models.JobStatusOpen, st.jobs["job-1"].Status)
	assert.Empty(t, st.entries, "withdrawal must never produce hour entries")

	// The spot is free again for someone else
	require.NoError(t, lc.Claim("job-1", "user-v"))
	assert.Equal(t, models.JobStatusClaimed, st.jobs["job-1"].Status)

	// History preserved: withdrawn row still there
	assert.Len(t, st.claims, 2)
	assert.Equal(t, models.ClaimStatusWithdrawn, st.claims[0].Status)
}

func TestReclaimAfterWithdrawCreatesNewClaim(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Gartentag",
		EstimatedHours: 2, MaxClaimants: 1, Status: models.JobStatusOpen,
	})

	require.NoError(t, lc.Claim("job-1", "user-u"))
	require.NoError(t, lc.Withdraw("job-1", "user-u"))
	require.NoError(t, lc.Claim("job-1", "user-u"))

	require.Len(t, st.claims, 2)
	assert.Equal(t, models.ClaimStatusWithdrawn, st.claims[0].Status)
	assert.Equal(t, models.ClaimStatusClaimed, st.claims[1].Status)
}

func TestDoubleClaimReturnsAlreadyClaimed(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Gartentag",
		EstimatedHours: 2, MaxClaimants: 5, Status: models.JobStatusOpen,
	})

	require.NoError(t, lc.Claim("job-1", "user-u"))
	err := lc.Claim("job-1", "user-u")
	assert.ErrorIs(t, err, ErrAlreadyClaimed)
	assert.Len(t, st.claims, 1, "retry must not create a duplicate row")
}

func TestCompleteWithoutClaim(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Gartentag",
		EstimatedHours: 2, MaxClaimants: 1, Status: models.JobStatusOpen,
	})
	st.seedUser("user-u", strPtr("family-u"))

	assert.ErrorIs(t, lc.Complete("job-1", "user-u"), ErrNoActiveClaim)
	assert.ErrorIs(t, lc.Withdraw("job-1", "user-u"), ErrNoActiveClaim)
}

func TestCompleteWithoutFamilyFailsAtomically(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Gartentag",
		EstimatedHours: 2, MaxClaimants: 1, Status: models.JobStatusOpen,
	})
	st.seedUser("user-u", nil) // known user, no family

	require.NoError(t, lc.Claim("job-1", "user-u"))
	err := lc.Complete("job-1", "user-u")
	assert.ErrorIs(t, err, ErrNoFamily)

	// Nothing may have been applied
	assert.Equal(t, models.ClaimStatusClaimed, st.claims[0].Status)
	assert.Empty(t, st.entries)
	assert.Equal(t, models.JobStatusClaimed, st.jobs["job-1"].Status)
}

func TestClosedJobsRejectAllOperations(t *testing.T) {
	for _, status := range []models.JobStatus{models.JobStatusCompleted, models.JobStatusCancelled} {
		lc, st := seedLifecycle(t, &models.Job{
			ID: "job-1", Title: "Altes Sommerfest",
			EstimatedHours: 2, MaxClaimants: 1, Status: status,
		})
		st.seedUser("user-u", strPtr("family-u"))

		assert.ErrorIs(t, lc.Claim("job-1", "user-u"), ErrJobClosed, "status %s", status)
		assert.ErrorIs(t, lc.Complete("job-1", "user-u"), ErrJobClosed, "status %s", status)
		assert.ErrorIs(t, lc.Withdraw("job-1", "user-u"), ErrJobClosed, "status %s", status)
	}
}

func TestUnknownJobReturnsNotFound(t *testing.T) {
	lc := NewJobLifecycle(newMemStore())

	assert.ErrorIs(t, lc.Claim("missing", "user-u"), ErrJobNotFound)
	assert.ErrorIs(t, lc.Complete("missing", "user-u"), ErrJobNotFound)
	assert.ErrorIs(t, lc.Withdraw("missing", "user-u"), ErrJobNotFound)
}

func TestConcurrentClaimsNeverOvershoot(t *testing.T) {
	lc, st := seedLifecycle(t, &models.Job{
		ID: "job-1", Title: "Letzter Platz",
		EstimatedHours: 1, MaxClaimants: 1, Status: models.JobStatusOpen,
	})

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results <- lc.Claim("job-1", fmt.Sprintf("user-%d", n))
		}(i)
	}
	wg.Wait()
	close(results)

	var successes, capacityFailures int
	for err := range results {
		switch {
		case err == nil:
			successes++
		default:
			assert.ErrorIs(t, err, ErrCapacityExceeded)
			capacityFailures++
		}
	}
	assert.Equal(t, 1, successes, "exactly one racer may win the last spot")
	assert.Equal(t, racers-1, capacityFailures)
	assert.Len(t, st.claims, 1)
}

func TestSpotsRemaining(t *testing.T) {
	job := &models.Job{MaxClaimants: 3}
	assert.Equal(t, 3, SpotsRemaining(job, 0))
	assert.Equal(t, 1, SpotsRemaining(job, 2))
	assert.Equal(t, 0, SpotsRemaining(job, 3))
}
