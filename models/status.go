package models

// JobStatus is the denormalized lifecycle status of a Job. It is derived
// from the job's claim set, except Cancelled which an admin imposes and
// which is terminal.
type JobStatus string

const (
	JobStatusOpen       JobStatus = "OPEN"
	JobStatusClaimed    JobStatus = "CLAIMED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// ClaimStatus is the lifecycle status of a single user's claim on a job.
type ClaimStatus string

const (
	ClaimStatusClaimed   ClaimStatus = "CLAIMED"
	ClaimStatusCompleted ClaimStatus = "COMPLETED"
	ClaimStatusWithdrawn ClaimStatus = "WITHDRAWN"
)

// jobTransitions is the single source of truth for legal job status moves.
// Cancelled has no outgoing edges.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusOpen:       {JobStatusClaimed, JobStatusCancelled},
	JobStatusClaimed:    {JobStatusInProgress, JobStatusCompleted, JobStatusOpen, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusOpen, JobStatusCancelled},
	JobStatusCompleted:  {},
	JobStatusCancelled:  {},
}

var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusClaimed:   {ClaimStatusCompleted, ClaimStatusWithdrawn},
	ClaimStatusCompleted: {},
	ClaimStatusWithdrawn: {},
}

// CanTransitionTo reports whether moving the job to next is a legal edge.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, t := range jobTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Closed reports whether the job accepts no further claim-lifecycle operations.
func (s JobStatus) Closed() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// CanTransitionTo reports whether moving the claim to next is a legal edge.
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, t := range claimTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Active reports whether the claim consumes one of the job's slots.
// Withdrawn claims never count against capacity.
func (s ClaimStatus) Active() bool {
	return s == ClaimStatusClaimed || s == ClaimStatusCompleted
}
