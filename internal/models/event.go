package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies an event.
type EventType string

const (
	EventWebinar    EventType = "webinar"
	EventCourse     EventType = "course"
	EventWorkshop   EventType = "workshop"
	EventConference EventType = "conference"
)

// Valid reports whether the event type is known.
func (t EventType) Valid() bool {
	switch t {
	case EventWebinar, EventCourse, EventWorkshop, EventConference:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Valid reports whether the event status is known.
func (s EventStatus) Valid() bool {
	return s == EventActive || s == EventCompleted || s == EventCancelled
}

// Event is a webinar/course/workshop whose completion certificates are
// generated against one template. Attendees holds the ordered, de-duplicated
// attendee ids associated with the event.
type Event struct {
	ID                 uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	Description        string            `json:"description"`
	Type               EventType         `json:"type"`
	Date               time.Time         `json:"date"`
	TemplateID         uuid.UUID         `json:"template_id"`
	SigningAuthorityID uuid.UUID         `json:"signing_authority_id"`
	Status             EventStatus       `json:"status"`
	Attendees          []uuid.UUID       `json:"attendees"`
	CustomFields       map[string]string `json:"custom_fields,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
