// Package domain contains core domain types for the assistant.
package domain

import (
	"time"
)

// Session holds the identity-verification state for one chat sender.
// A sender starts unverified; the verification flow fills in the fields
// step by step and finally flips Verified.
type Session struct {
	SenderID       string    `json:"sender_id"`
	EmployeeID     string    `json:"employee_id,omitempty"`
	Verified       bool      `json:"verified"`
	AwaitingCode   bool      `json:"awaiting_code"`
	ProvidedCedula string    `json:"provided_cedula,omitempty"`
	LastActive     time.Time `json:"last_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Reset clears all verification progress, returning the session to the
// state of a first-time sender. Used after a failed verification attempt.
func (s *Session) Reset() {
	s.EmployeeID = ""
	s.Verified = false
	s.AwaitingCode = false
	s.ProvidedCedula = ""
}

// Reply is the outcome of one conversation turn: the text sent back to
// the user and the category tag recorded in the request log.
type Reply struct {
	Answer   string `json:"answer"`
	Category string `json:"category"`
}
