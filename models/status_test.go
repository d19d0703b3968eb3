package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobStatusOpen.CanTransitionTo(JobStatusClaimed))
	assert.True(t, JobStatusOpen.CanTransitionTo(JobStatusCancelled))
	assert.False(t, JobStatusOpen.CanTransitionTo(JobStatusCompleted))

	assert.True(t, JobStatusClaimed.CanTransitionTo(JobStatusOpen))
	assert.True(t, JobStatusClaimed.CanTransitionTo(JobStatusInProgress))
	assert.True(t, JobStatusClaimed.CanTransitionTo(JobStatusCompleted))

	assert.True(t, JobStatusInProgress.CanTransitionTo(JobStatusCompleted))
	assert.False(t, JobStatusInProgress.CanTransitionTo(JobStatusClaimed))

	// terminal states have no outgoing edges
	for _, next := range []JobStatus{JobStatusOpen, JobStatusClaimed, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled} {
		assert.False(t, JobStatusCompleted.CanTransitionTo(next), "COMPLETED -> %s", next)
		assert.False(t, JobStatusCancelled.CanTransitionTo(next), "CANCELLED -> %s", next)
	}
}

func TestJobStatusClosed(t *testing.T) {
	assert.False(t, JobStatusOpen.Closed())
	assert.False(t, JobStatusClaimed.Closed())
	assert.False(t, JobStatusInProgress.Closed())
	assert.True(t, JobStatusCompleted.Closed())
	assert.True(t, JobStatusCancelled.Closed())
}

func TestClaimStatusTransitions(t *testing.T) {
	assert.True(t, ClaimStatusClaimed.CanTransitionTo(ClaimStatusCompleted))
	assert.True(t, ClaimStatusClaimed.CanTransitionTo(ClaimStatusWithdrawn))
	assert.False(t, ClaimStatusCompleted.CanTransitionTo(ClaimStatusClaimed))
	assert.False(t, ClaimStatusWithdrawn.CanTransitionTo(ClaimStatusClaimed))
}

func TestClaimStatusActive(t *testing.T) {
	assert.True(t, ClaimStatusClaimed.Active())
	assert.True(t, ClaimStatusCompleted.Active())
	assert.False(t, ClaimStatusWithdrawn.Active())
}
