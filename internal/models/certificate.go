package models

import (
	"time"

	"github.com/google/uuid"
)

// CertificateStatus is the delivery state of an issued certificate.
type CertificateStatus string

const (
	CertificateIssued     CertificateStatus = "issued"
	CertificateSent       CertificateStatus = "sent"
	CertificateDownloaded CertificateStatus = "downloaded"
)

// CertificateData is the point-in-time snapshot captured at issuance. It is
// never recomputed from the live event/attendee/template: editing or deleting
// any of them after issuance does not change an issued certificate.
type CertificateData struct {
	AttendeeName          string            `json:"attendee_name"`
	CourseEventTitle      string            `json:"course_event_title"`
	CompletionDate        string            `json:"completion_date"` // calendar date, "2006-01-02"
	SigningAuthorityName  string            `json:"signing_authority_name"`
	SigningAuthorityTitle string            `json:"signing_authority_title"`
	CustomFields          map[string]string `json:"custom_fields,omitempty"`
}

// Certificate is an immutable issued record combining event, attendee and
// template data at a point in time. ID is internal and never exposed on the
// public verification path; CertificateID is the public, URL-safe identifier.
type Certificate struct {
	ID            uuid.UUID         `json:"id"`
	CertificateID string            `json:"certificate_id"`
	EventID       uuid.UUID         `json:"event_id"`
	AttendeeID    uuid.UUID         `json:"attendee_id"`
	TemplateID    uuid.UUID         `json:"template_id"`
	IssuedAt      time.Time         `json:"issued_at"`
	Status        CertificateStatus `json:"status"`
	Data          CertificateData   `json:"data"`
}

// PublicCertificate is the verification-facing view of a certificate. It
// carries the public identifier and the data snapshot only.
type PublicCertificate struct {
	CertificateID string            `json:"certificate_id"`
	IssuedAt      time.Time         `json:"issued_at"`
	Status        CertificateStatus `json:"status"`
	Data          CertificateData   `json:"data"`
}

// Public returns the verification-facing view, stripping the internal id and
// internal entity references.
func (c *Certificate) Public() *PublicCertificate {
	return &PublicCertificate{
		CertificateID: c.CertificateID,
		IssuedAt:      c.IssuedAt,
		Status:        c.Status,
		Data:          c.Data,
	}
}
