package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendeeStatus tracks an attendee's progress.
type AttendeeStatus string

const (
	AttendeeRegistered AttendeeStatus = "registered"
	AttendeeAttended   AttendeeStatus = "attended"
	AttendeeCompleted  AttendeeStatus = "completed"
)

// Valid reports whether the attendee status is known.
func (s AttendeeStatus) Valid() bool {
	return s == AttendeeRegistered || s == AttendeeAttended || s == AttendeeCompleted
}

// Attendee is a person eligible to receive a certificate for an event.
type Attendee struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Status    AttendeeStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
