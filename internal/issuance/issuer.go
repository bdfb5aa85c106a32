// Package issuance implements the certificate issuance rule: combine an
// event, attendee and template into an immutable issued-certificate record.
package issuance

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/store"
)

// CertificateIDPrefix is the fixed textual prefix of every public
// certificate identifier.
const CertificateIDPrefix = "CERT-"

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// MissingReferenceError reports that the event, attendee or template an
// issuance needs does not exist. Nothing is written when it is returned.
type MissingReferenceError struct {
	Kind string // "event", "attendee" or "template"
	ID   uuid.UUID
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Issuer produces certificates from current event/attendee/template state.
type Issuer struct {
	store  *store.Store
	logger *zap.Logger
}

// NewIssuer creates an issuer over the domain store.
func NewIssuer(st *store.Store, logger *zap.Logger) *Issuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Issuer{store: st, logger: logger}
}

// Issue resolves the event, attendee and the event's template, builds the
// point-in-time data snapshot and appends the certificate. It does not gate
// on attendee status; callers that only want completed attendees filter
// before calling.
func (i *Issuer) Issue(ctx context.Context, eventID, attendeeID uuid.UUID) (*models.Certificate, error) {
	event, ok := i.store.EventByID(eventID)
	if !ok {
		return nil, &MissingReferenceError{Kind: "event", ID: eventID}
	}
	attendee, ok := i.store.AttendeeByID(attendeeID)
	if !ok {
		return nil, &MissingReferenceError{Kind: "attendee", ID: attendeeID}
	}
	template, ok := i.store.TemplateByID(event.TemplateID)
	if !ok {
		return nil, &MissingReferenceError{Kind: "template", ID: event.TemplateID}
	}

	now := time.Now()
	data := models.CertificateData{
		AttendeeName:     attendee.Name,
		CourseEventTitle: event.Title,
		CompletionDate:   now.Format("2006-01-02"),
	}
	if authority, ok := i.store.AuthorityByID(event.SigningAuthorityID); ok {
		data.SigningAuthorityName = authority.Name
		data.SigningAuthorityTitle = authority.Title
	}
	if len(event.CustomFields) > 0 {
		data.CustomFields = make(map[string]string, len(event.CustomFields))
		for k, v := range event.CustomFields {
			data.CustomFields[k] = v
		}
	}

	cert := models.Certificate{
		ID:            uuid.New(),
		CertificateID: i.newCertificateID(now),
		EventID:       event.ID,
		AttendeeID:    attendee.ID,
		TemplateID:    template.ID,
		IssuedAt:      now.UTC(),
		Status:        models.CertificateIssued,
		Data:          data,
	}
	if err := i.store.AppendCertificate(ctx, cert); err != nil {
		return nil, fmt.Errorf("append certificate: %w", err)
	}

	i.logger.Info("certificate issued",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("event_id", event.ID.String()),
		zap.String("attendee_id", attendee.ID.String()),
	)
	return &cert, nil
}

// newCertificateID generates a public identifier of the form
// CERT-<unix millis>-<9 random base36 chars>: fixed prefix, monotonically
// varying millisecond component, random suffix. Every character is URL-safe
// without escaping. Regenerates on the (unlikely) collision with an
// existing certificate.
func (i *Issuer) newCertificateID(now time.Time) string {
	for {
		id := CertificateIDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "-" + randomBase36(9)
		if _, exists := i.store.CertificateByPublicID(id); !exists {
			return id
		}
	}
}

func randomBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	for idx, b := range buf {
		buf[idx] = base36[int(b)%len(base36)]
	}
	return string(buf)
}
