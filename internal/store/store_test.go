package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/pkg/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s := New(mem, nil)
	require.NoError(t, s.Load(context.Background()))
	return s, mem
}

// flakySubstrate fails every Set while down is true.
type flakySubstrate struct {
	*kv.Memory
	down bool
}

func (f *flakySubstrate) Set(ctx context.Context, key, value string) error {
	if f.down {
		return errors.New("substrate down")
	}
	return f.Memory.Set(ctx, key, value)
}

func TestSaveTemplateInsertsWithFreshID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveTemplate(ctx, models.Template{Name: "Gold Border"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
	assert.False(t, saved.UpdatedAt.IsZero())

	other, err := s.SaveTemplate(ctx, models.Template{Name: "Plain"})
	require.NoError(t, err)
	assert.NotEqual(t, saved.ID, other.ID)
	assert.Len(t, s.Templates(), 2)
}

func TestSaveTemplateUpdatesInPlace(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveTemplate(ctx, models.Template{Name: "Gold Border"})
	require.NoError(t, err)

	saved.Name = "Gold Border v2"
	updated, err := s.SaveTemplate(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, saved.CreatedAt, updated.CreatedAt)

	list := s.Templates()
	require.Len(t, list, 1)
	assert.Equal(t, "Gold Border v2", list[0].Name)
}

func TestSaveTemplateMissingNameIsValidationError(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.SaveTemplate(context.Background(), models.Template{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Empty(t, s.Templates())
}

func TestSaveWithUnknownIDAssignsFreshID(t *testing.T) {
	s, _ := newTestStore(t)

	stray := uuid.New()
	saved, err := s.SaveTemplate(context.Background(), models.Template{ID: stray, Name: "Stray"})
	require.NoError(t, err)
	assert.NotEqual(t, stray, saved.ID)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveAttendee(ctx, models.Attendee{Name: "Ada", Status: models.AttendeeRegistered})
	require.NoError(t, err)

	require.NoError(t, s.DeleteAttendee(ctx, uuid.New())) // unknown id, no-op
	assert.Len(t, s.Attendees(), 1)

	require.NoError(t, s.DeleteAttendee(ctx, saved.ID))
	assert.Empty(t, s.Attendees())

	require.NoError(t, s.DeleteAttendee(ctx, saved.ID)) // again, still no error
}

func TestFindReturnsNotFoundWithoutError(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok := s.EventByID(uuid.New())
	assert.False(t, ok)
	_, ok = s.CertificateByPublicID("CERT-0-aaaaaaaaa")
	assert.False(t, ok)
}

func TestLoadSeedsDefaultSigningAuthority(t *testing.T) {
	s, mem := newTestStore(t)

	list := s.Authorities()
	require.Len(t, list, 1)
	assert.Equal(t, "Dr. Jane Smith", list[0].Name)
	assert.Equal(t, "Director of Education", list[0].Title)

	// seed is persisted: a second store over the same substrate does not reseed
	s2 := New(mem, nil)
	require.NoError(t, s2.Load(context.Background()))
	list2 := s2.Authorities()
	require.Len(t, list2, 1)
	assert.Equal(t, list[0].ID, list2[0].ID)
}

func TestFailedPersistLeavesStoreUnchanged(t *testing.T) {
	flaky := &flakySubstrate{Memory: kv.NewMemory()}
	s := New(flaky, nil)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	tpl, err := s.SaveTemplate(ctx, models.Template{Name: "Plain"})
	require.NoError(t, err)
	attendee, err := s.SaveAttendee(ctx, models.Attendee{Name: "Ada", Status: models.AttendeeCompleted})
	require.NoError(t, err)

	flaky.down = true

	_, err = s.SaveTemplate(ctx, models.Template{Name: "Gold"})
	require.Error(t, err)
	require.Len(t, s.Templates(), 1)
	assert.Equal(t, "Plain", s.Templates()[0].Name)

	tpl.Name = "Plain v2"
	_, err = s.SaveTemplate(ctx, tpl)
	require.Error(t, err)
	assert.Equal(t, "Plain", s.Templates()[0].Name)

	require.Error(t, s.DeleteAttendee(ctx, attendee.ID))
	assert.Len(t, s.Attendees(), 1)

	err = s.AppendCertificate(ctx, models.Certificate{
		ID:            uuid.New(),
		CertificateID: "CERT-1700000000000-zzzzzzzzz",
		Status:        models.CertificateIssued,
	})
	require.Error(t, err)
	assert.Empty(t, s.Certificates())

	// memory never diverged from the substrate: a reload sees the same state
	flaky.down = false
	reloaded := New(flaky.Memory, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.Templates(), reloaded.Templates())
	assert.Equal(t, s.Attendees(), reloaded.Attendees())
	assert.Equal(t, s.Certificates(), reloaded.Certificates())
}

func TestRoundTripThroughSubstrate(t *testing.T) {
	s, mem := newTestStore(t)
	ctx := context.Background()

	tpl, err := s.SaveTemplate(ctx, models.Template{
		Name:            "Workshop",
		Size:            models.SizeLetter,
		Orientation:     models.OrientationPortrait,
		BackgroundColor: "#fafafa",
		Elements: []models.TemplateElement{
			{ID: "title", Type: "text", Content: "[[AttendeeName]]", X: 50, Y: 40, FontSize: 32, TextAlign: "center"},
		},
		CustomFields: map[string]string{"Venue": "Online"},
	})
	require.NoError(t, err)

	attendee, err := s.SaveAttendee(ctx, models.Attendee{Name: "Ada Lovelace", Email: "ada@example.com", Status: models.AttendeeCompleted})
	require.NoError(t, err)

	event, err := s.SaveEvent(ctx, models.Event{
		Title:      "Intro to Go",
		Type:       models.EventCourse,
		TemplateID: tpl.ID,
		Status:     models.EventActive,
		Attendees:  []uuid.UUID{attendee.ID},
	})
	require.NoError(t, err)

	cert := models.Certificate{
		ID:            uuid.New(),
		CertificateID: "CERT-1700000000000-k3j9x2m4q",
		EventID:       event.ID,
		AttendeeID:    attendee.ID,
		TemplateID:    tpl.ID,
		IssuedAt:      time.Now().UTC(),
		Status:        models.CertificateIssued,
		Data: models.CertificateData{
			AttendeeName:     attendee.Name,
			CourseEventTitle: event.Title,
			CompletionDate:   "2026-08-30",
			CustomFields:     map[string]string{"Venue": "Online"},
		},
	}
	require.NoError(t, s.AppendCertificate(ctx, cert))

	reloaded := New(mem, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.Templates(), reloaded.Templates())
	assert.Equal(t, s.Events(), reloaded.Events())
	assert.Equal(t, s.Attendees(), reloaded.Attendees())
	assert.Equal(t, s.Authorities(), reloaded.Authorities())
	assert.Equal(t, s.Certificates(), reloaded.Certificates())

	got, ok := reloaded.EventByID(event.ID)
	require.True(t, ok)
	assert.Equal(t, event, got)

	gotCert, ok := reloaded.CertificateByPublicID(cert.CertificateID)
	require.True(t, ok)
	assert.Equal(t, cert, gotCert)
}

func TestEventAttendeeListIsDeduplicated(t *testing.T) {
	s, _ := newTestStore(t)

	a := uuid.New()
	b := uuid.New()
	saved, err := s.SaveEvent(context.Background(), models.Event{
		Title:     "Conf",
		Attendees: []uuid.UUID{a, b, a, b, a},
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, saved.Attendees)
}

func TestDedupeIDsLeavesInputIntact(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	ids := []uuid.UUID{a, b, a}
	orig := append([]uuid.UUID(nil), ids...)

	got := dedupeIDs(ids)
	assert.Equal(t, []uuid.UUID{a, b}, got)
	assert.Equal(t, orig, ids, "input slice must not be rewritten")
	assert.NotSame(t, &ids[0], &got[0], "result must not alias the input's backing array")
}

func TestSaveEventToleratesAliasedAttendeeSlice(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a := uuid.New()
	b := uuid.New()
	event, err := s.SaveEvent(ctx, models.Event{Title: "Conf", Attendees: []uuid.UUID{a}})
	require.NoError(t, err)

	// grow the slice returned by the find accessor, duplicating an id,
	// the way the association endpoint does
	grown, ok := s.EventByID(event.ID)
	require.True(t, ok)
	grown.Attendees = append(grown.Attendees, a, b)
	saved, err := s.SaveEvent(ctx, grown)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, saved.Attendees)

	stored, ok := s.EventByID(event.ID)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{a, b}, stored.Attendees)
}

func TestAppendCertificateRejectsDuplicates(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cert := models.Certificate{
		ID:            uuid.New(),
		CertificateID: "CERT-1700000000000-abc123def",
		Status:        models.CertificateIssued,
	}
	require.NoError(t, s.AppendCertificate(ctx, cert))

	err := s.AppendCertificate(ctx, cert)
	var dup *ErrDuplicateCertificate
	require.ErrorAs(t, err, &dup)
	assert.Len(t, s.Certificates(), 1)

	// same public id under a fresh internal id is still rejected
	cert.ID = uuid.New()
	require.Error(t, s.AppendCertificate(ctx, cert))
	assert.Len(t, s.Certificates(), 1)
}
