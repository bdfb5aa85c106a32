// Package store holds the five domain collections and the mutation
// operations that keep them consistent, persisting each collection as a
// whole-array JSON snapshot under its own key in the kv substrate.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/pkg/kv"
)

// Collection keys in the kv substrate, one per entity type.
const (
	KeyTemplates    = "certificateTemplates"
	KeyEvents       = "certificateEvents"
	KeyCertificates = "certificates"
	KeyAttendees    = "attendees"
	KeyAuthorities  = "signingAuthorities"
)

// Store is the domain store. All mutation goes through its methods; each
// mutation is atomic at single-collection granularity: the new collection
// state is built aside, the snapshot is written to the substrate, and only
// then does it replace the in-memory slice. A failed persist leaves both
// memory and substrate unchanged. Reads run concurrently.
type Store struct {
	mu     sync.RWMutex
	kv     kv.Store
	logger *zap.Logger

	templates    []models.Template
	events       []models.Event
	attendees    []models.Attendee
	authorities  []models.SigningAuthority
	certificates []models.Certificate
}

// New creates a store over the given substrate. Call Load before use.
func New(substrate kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: substrate, logger: logger}
}

// Load seeds every collection from the substrate, initializing empty when a
// key is absent. The signing authorities collection additionally seeds one
// default record on first run.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := loadCollection(ctx, s.kv, KeyTemplates, &s.templates); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.kv, KeyEvents, &s.events); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.kv, KeyAttendees, &s.attendees); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.kv, KeyCertificates, &s.certificates); err != nil {
		return err
	}
	if err := loadCollection(ctx, s.kv, KeyAuthorities, &s.authorities); err != nil {
		return err
	}
	if len(s.authorities) == 0 {
		now := time.Now().UTC()
		seeded := []models.SigningAuthority{{
			ID:        uuid.New(),
			Name:      "Dr. Jane Smith",
			Title:     "Director of Education",
			CreatedAt: now,
			UpdatedAt: now,
		}}
		if err := persistCollection(ctx, s.kv, KeyAuthorities, seeded); err != nil {
			return err
		}
		s.authorities = seeded
		s.logger.Info("seeded default signing authority")
	}

	s.logger.Info("store loaded",
		zap.Int("templates", len(s.templates)),
		zap.Int("events", len(s.events)),
		zap.Int("attendees", len(s.attendees)),
		zap.Int("authorities", len(s.authorities)),
		zap.Int("certificates", len(s.certificates)),
	)
	return nil
}

func loadCollection[T any](ctx context.Context, substrate kv.Store, key string, out *[]T) error {
	raw, found, err := substrate.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !found || raw == "" {
		*out = nil
		return nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func persistCollection[T any](ctx context.Context, substrate kv.Store, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := substrate.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// --- Templates ---

// SaveTemplate inserts the template when its id is unset or unknown
// (assigning a fresh id and CreatedAt), otherwise replaces the existing
// record in place. Returns the stored record.
func (s *Store) SaveTemplate(ctx context.Context, t models.Template) (models.Template, error) {
	if t.Name == "" {
		return models.Template{}, &ValidationError{Field: "name"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	t.UpdatedAt = now
	next := make([]models.Template, len(s.templates), len(s.templates)+1)
	copy(next, s.templates)
	if idx := templateIndex(next, t.ID); t.ID != uuid.Nil && idx >= 0 {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = next[idx].CreatedAt
		}
		next[idx] = t
	} else {
		t.ID = uuid.New()
		t.CreatedAt = now
		next = append(next, t)
	}
	if err := persistCollection(ctx, s.kv, KeyTemplates, next); err != nil {
		return models.Template{}, err
	}
	s.templates = next
	return t, nil
}

// DeleteTemplate removes the template with the given id; absent id is a no-op.
func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := templateIndex(s.templates, id)
	if idx < 0 {
		return nil
	}
	next := make([]models.Template, 0, len(s.templates)-1)
	next = append(next, s.templates[:idx]...)
	next = append(next, s.templates[idx+1:]...)
	if err := persistCollection(ctx, s.kv, KeyTemplates, next); err != nil {
		return err
	}
	s.templates = next
	return nil
}

// Templates returns a copy of the templates collection.
func (s *Store) Templates() []models.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Template, len(s.templates))
	copy(out, s.templates)
	return out
}

// TemplateByID finds a template by id.
func (s *Store) TemplateByID(id uuid.UUID) (models.Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := templateIndex(s.templates, id); idx >= 0 {
		return s.templates[idx], true
	}
	return models.Template{}, false
}

func templateIndex(list []models.Template, id uuid.UUID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Events ---

// SaveEvent inserts or replaces an event, mirroring SaveTemplate semantics.
// The attendee id list is de-duplicated preserving order.
func (s *Store) SaveEvent(ctx context.Context, e models.Event) (models.Event, error) {
	if e.Title == "" {
		return models.Event{}, &ValidationError{Field: "title"}
	}
	e.Attendees = dedupeIDs(e.Attendees)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	e.UpdatedAt = now
	next := make([]models.Event, len(s.events), len(s.events)+1)
	copy(next, s.events)
	if idx := eventIndex(next, e.ID); e.ID != uuid.Nil && idx >= 0 {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = next[idx].CreatedAt
		}
		next[idx] = e
	} else {
		e.ID = uuid.New()
		e.CreatedAt = now
		next = append(next, e)
	}
	if err := persistCollection(ctx, s.kv, KeyEvents, next); err != nil {
		return models.Event{}, err
	}
	s.events = next
	return e, nil
}

// DeleteEvent removes the event with the given id; absent id is a no-op.
func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := eventIndex(s.events, id)
	if idx < 0 {
		return nil
	}
	next := make([]models.Event, 0, len(s.events)-1)
	next = append(next, s.events[:idx]...)
	next = append(next, s.events[idx+1:]...)
	if err := persistCollection(ctx, s.kv, KeyEvents, next); err != nil {
		return err
	}
	s.events = next
	return nil
}

// Events returns a copy of the events collection.
func (s *Store) Events() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventByID finds an event by id.
func (s *Store) EventByID(id uuid.UUID) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := eventIndex(s.events, id); idx >= 0 {
		return s.events[idx], true
	}
	return models.Event{}, false
}

func eventIndex(list []models.Event, id uuid.UUID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// dedupeIDs returns the ids with duplicates removed, preserving first-seen
// order. The input slice is never written to; callers may pass a slice that
// shares its backing array with stored state.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// --- Attendees ---

// SaveAttendee inserts or replaces an attendee.
func (s *Store) SaveAttendee(ctx context.Context, a models.Attendee) (models.Attendee, error) {
	if a.Name == "" {
		return models.Attendee{}, &ValidationError{Field: "name"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	a.UpdatedAt = now
	next := make([]models.Attendee, len(s.attendees), len(s.attendees)+1)
	copy(next, s.attendees)
	if idx := attendeeIndex(next, a.ID); a.ID != uuid.Nil && idx >= 0 {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = next[idx].CreatedAt
		}
		next[idx] = a
	} else {
		a.ID = uuid.New()
		a.CreatedAt = now
		next = append(next, a)
	}
	if err := persistCollection(ctx, s.kv, KeyAttendees, next); err != nil {
		return models.Attendee{}, err
	}
	s.attendees = next
	return a, nil
}

// DeleteAttendee removes the attendee with the given id; absent id is a no-op.
func (s *Store) DeleteAttendee(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := attendeeIndex(s.attendees, id)
	if idx < 0 {
		return nil
	}
	next := make([]models.Attendee, 0, len(s.attendees)-1)
	next = append(next, s.attendees[:idx]...)
	next = append(next, s.attendees[idx+1:]...)
	if err := persistCollection(ctx, s.kv, KeyAttendees, next); err != nil {
		return err
	}
	s.attendees = next
	return nil
}

// Attendees returns a copy of the attendees collection.
func (s *Store) Attendees() []models.Attendee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Attendee, len(s.attendees))
	copy(out, s.attendees)
	return out
}

// AttendeeByID finds an attendee by id.
func (s *Store) AttendeeByID(id uuid.UUID) (models.Attendee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := attendeeIndex(s.attendees, id); idx >= 0 {
		return s.attendees[idx], true
	}
	return models.Attendee{}, false
}

func attendeeIndex(list []models.Attendee, id uuid.UUID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Signing authorities ---

// SaveAuthority inserts or replaces a signing authority.
func (s *Store) SaveAuthority(ctx context.Context, a models.SigningAuthority) (models.SigningAuthority, error) {
	if a.Name == "" {
		return models.SigningAuthority{}, &ValidationError{Field: "name"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	a.UpdatedAt = now
	next := make([]models.SigningAuthority, len(s.authorities), len(s.authorities)+1)
	copy(next, s.authorities)
	if idx := authorityIndex(next, a.ID); a.ID != uuid.Nil && idx >= 0 {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = next[idx].CreatedAt
		}
		next[idx] = a
	} else {
		a.ID = uuid.New()
		a.CreatedAt = now
		next = append(next, a)
	}
	if err := persistCollection(ctx, s.kv, KeyAuthorities, next); err != nil {
		return models.SigningAuthority{}, err
	}
	s.authorities = next
	return a, nil
}

// DeleteAuthority removes the authority with the given id; absent id is a no-op.
func (s *Store) DeleteAuthority(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := authorityIndex(s.authorities, id)
	if idx < 0 {
		return nil
	}
	next := make([]models.SigningAuthority, 0, len(s.authorities)-1)
	next = append(next, s.authorities[:idx]...)
	next = append(next, s.authorities[idx+1:]...)
	if err := persistCollection(ctx, s.kv, KeyAuthorities, next); err != nil {
		return err
	}
	s.authorities = next
	return nil
}

// Authorities returns a copy of the signing authorities collection.
func (s *Store) Authorities() []models.SigningAuthority {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SigningAuthority, len(s.authorities))
	copy(out, s.authorities)
	return out
}

// AuthorityByID finds a signing authority by id.
func (s *Store) AuthorityByID(id uuid.UUID) (models.SigningAuthority, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := authorityIndex(s.authorities, id); idx >= 0 {
		return s.authorities[idx], true
	}
	return models.SigningAuthority{}, false
}

func authorityIndex(list []models.SigningAuthority, id uuid.UUID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// --- Certificates (append-only) ---

// AppendCertificate appends an issued certificate. There is no update or
// delete path: a duplicate internal or public id is rejected.
func (s *Store) AppendCertificate(ctx context.Context, c models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.certificates {
		if s.certificates[i].ID == c.ID || s.certificates[i].CertificateID == c.CertificateID {
			return &ErrDuplicateCertificate{CertificateID: c.CertificateID}
		}
	}
	next := make([]models.Certificate, len(s.certificates), len(s.certificates)+1)
	copy(next, s.certificates)
	next = append(next, c)
	if err := persistCollection(ctx, s.kv, KeyCertificates, next); err != nil {
		return err
	}
	s.certificates = next
	return nil
}

// Certificates returns a copy of the certificates collection.
func (s *Store) Certificates() []models.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Certificate, len(s.certificates))
	copy(out, s.certificates)
	return out
}

// CertificateByPublicID finds a certificate by its public identifier.
func (s *Store) CertificateByPublicID(certificateID string) (models.Certificate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.certificates {
		if s.certificates[i].CertificateID == certificateID {
			return s.certificates[i], true
		}
	}
	return models.Certificate{}, false
}

// CertificatesByEvent returns all certificates issued for an event.
func (s *Store) CertificatesByEvent(eventID uuid.UUID) []models.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Certificate
	for i := range s.certificates {
		if s.certificates[i].EventID == eventID {
			out = append(out, s.certificates[i])
		}
	}
	return out
}
