// Package verification resolves a public certificate identifier to a
// verification result without exposing internal record ids.
package verification

import (
	"errors"
	"strings"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/store"
)

// ErrEmptyID is returned when the verification query is empty or whitespace.
// The store is not touched in that case.
var ErrEmptyID = errors.New("certificate id is required")

// Result is the outcome of a verification lookup. Event and Attendee are
// resolved from the certificate's stored references and may each be nil when
// the referenced entity was deleted after issuance.
type Result struct {
	Valid       bool                      `json:"valid"`
	Certificate *models.PublicCertificate `json:"certificate,omitempty"`
	Event       *models.Event             `json:"event,omitempty"`
	Attendee    *models.Attendee          `json:"attendee,omitempty"`
	Reason      string                    `json:"reason,omitempty"`
}

// Service performs read-only verification lookups against the domain store.
type Service struct {
	store *store.Store
}

// NewService creates a verification service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Verify trims the input, scans certificates for an exact public-id match
// and resolves the referenced event and attendee. It never mutates store
// state and is safe to call concurrently.
func (s *Service) Verify(certificateID string) (*Result, error) {
	certificateID = strings.TrimSpace(certificateID)
	if certificateID == "" {
		return nil, ErrEmptyID
	}

	cert, ok := s.store.CertificateByPublicID(certificateID)
	if !ok {
		return &Result{Valid: false, Reason: "certificate not found"}, nil
	}

	result := &Result{Valid: true, Certificate: cert.Public()}
	if event, ok := s.store.EventByID(cert.EventID); ok {
		result.Event = &event
	}
	if attendee, ok := s.store.AttendeeByID(cert.AttendeeID); ok {
		result.Attendee = &attendee
	}
	return result, nil
}
