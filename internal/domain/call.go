package domain

import (
	"fmt"
	"time"
)

// CallStatus is the lifecycle state of a callback request.
type CallStatus string

const (
	CallPending    CallStatus = "Pending"
	CallInProgress CallStatus = "In Progress"
	CallResolved   CallStatus = "Resolved"
)

// rank orders statuses for the monotonic lifecycle check.
func (s CallStatus) rank() int {
	switch s {
	case CallPending:
		return 0
	case CallInProgress:
		return 1
	case CallResolved:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is one of the known lifecycle states.
func (s CallStatus) Valid() bool {
	return s.rank() >= 0
}

// CanTransitionTo reports whether moving from s to next respects the
// monotonic Pending -> In Progress -> Resolved lifecycle.
func (s CallStatus) CanTransitionTo(next CallStatus) bool {
	return next.Valid() && next.rank() >= s.rank()
}

// Call is a request for a human representative to phone a user back.
type Call struct {
	ID            string     `json:"id"`
	SenderID      string     `json:"sender_id"`
	FullName      string     `json:"full_name"`
	Phone         string     `json:"phone"`
	PreferredTime string     `json:"preferred_time"`
	Status        CallStatus `json:"status"`
	Resolution    string     `json:"resolution,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// Resolve marks the call resolved, stamping ResolvedAt exactly once.
func (c *Call) Resolve(at time.Time) error {
	if !c.Status.CanTransitionTo(CallResolved) {
		return fmt.Errorf("invalid transition from %q to %q", c.Status, CallResolved)
	}
	c.Status = CallResolved
	if c.ResolvedAt == nil {
		c.ResolvedAt = &at
	}
	return nil
}
