package issuance

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certivault/backend/internal/models"
	"github.com/certivault/backend/internal/store"
	"github.com/certivault/backend/pkg/kv"
)

type fixture struct {
	store    *store.Store
	issuer   *Issuer
	event    models.Event
	attendee models.Attendee
	template models.Template
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.New(kv.NewMemory(), nil)
	require.NoError(t, st.Load(ctx))

	tpl, err := st.SaveTemplate(ctx, models.Template{Name: "Standard", Size: models.SizeA4, Orientation: models.OrientationLandscape})
	require.NoError(t, err)
	attendee, err := st.SaveAttendee(ctx, models.Attendee{Name: "Grace Hopper", Email: "grace@example.com", Status: models.AttendeeCompleted})
	require.NoError(t, err)
	authority := st.Authorities()[0]
	event, err := st.SaveEvent(ctx, models.Event{
		Title:              "Compiler Construction",
		Type:               models.EventCourse,
		TemplateID:         tpl.ID,
		SigningAuthorityID: authority.ID,
		Status:             models.EventActive,
		Attendees:          []uuid.UUID{attendee.ID},
		CustomFields:       map[string]string{"Duration": "6 weeks"},
	})
	require.NoError(t, err)

	return &fixture{
		store:    st,
		issuer:   NewIssuer(st, nil),
		event:    event,
		attendee: attendee,
		template: tpl,
	}
}

func TestIssueBuildsSnapshotFromCurrentState(t *testing.T) {
	f := newFixture(t)

	cert, err := f.issuer.Issue(context.Background(), f.event.ID, f.attendee.ID)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, cert.ID)
	assert.Equal(t, f.event.ID, cert.EventID)
	assert.Equal(t, f.attendee.ID, cert.AttendeeID)
	assert.Equal(t, f.template.ID, cert.TemplateID)
	assert.Equal(t, models.CertificateIssued, cert.Status)
	assert.Equal(t, "Grace Hopper", cert.Data.AttendeeName)
	assert.Equal(t, "Compiler Construction", cert.Data.CourseEventTitle)
	assert.Equal(t, "Dr. Jane Smith", cert.Data.SigningAuthorityName)
	assert.Equal(t, "Director of Education", cert.Data.SigningAuthorityTitle)
	assert.Equal(t, map[string]string{"Duration": "6 weeks"}, cert.Data.CustomFields)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, cert.Data.CompletionDate)

	list := f.store.Certificates()
	require.Len(t, list, 1)
	assert.Equal(t, *cert, list[0])
}

func TestSnapshotIsImmuneToLaterEdits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cert, err := f.issuer.Issue(ctx, f.event.ID, f.attendee.ID)
	require.NoError(t, err)

	f.event.Title = "Renamed Course"
	f.event.CustomFields["Duration"] = "12 weeks"
	_, err = f.store.SaveEvent(ctx, f.event)
	require.NoError(t, err)
	f.attendee.Name = "G. Hopper"
	_, err = f.store.SaveAttendee(ctx, f.attendee)
	require.NoError(t, err)

	got, ok := f.store.CertificateByPublicID(cert.CertificateID)
	require.True(t, ok)
	assert.Equal(t, "Compiler Construction", got.Data.CourseEventTitle)
	assert.Equal(t, "Grace Hopper", got.Data.AttendeeName)
	assert.Equal(t, "6 weeks", got.Data.CustomFields["Duration"])
}

func TestIssueFailsOnMissingReferences(t *testing.T) {
	tests := []struct {
		name string
		kind string
		prep func(t *testing.T, f *fixture) (eventID, attendeeID uuid.UUID)
	}{
		{
			name: "missing event",
			kind: "event",
			prep: func(t *testing.T, f *fixture) (uuid.UUID, uuid.UUID) {
				return uuid.New(), f.attendee.ID
			},
		},
		{
			name: "missing attendee",
			kind: "attendee",
			prep: func(t *testing.T, f *fixture) (uuid.UUID, uuid.UUID) {
				return f.event.ID, uuid.New()
			},
		},
		{
			name: "missing template",
			kind: "template",
			prep: func(t *testing.T, f *fixture) (uuid.UUID, uuid.UUID) {
				require.NoError(t, f.store.DeleteTemplate(context.Background(), f.template.ID))
				return f.event.ID, f.attendee.ID
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			eventID, attendeeID := tt.prep(t, f)

			_, err := f.issuer.Issue(context.Background(), eventID, attendeeID)
			var refErr *MissingReferenceError
			require.ErrorAs(t, err, &refErr)
			assert.Equal(t, tt.kind, refErr.Kind)
			assert.Empty(t, f.store.Certificates(), "no partial write on failure")
		})
	}
}

func TestCertificateIDsAreUniqueAndURLSafe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	format := regexp.MustCompile(`^CERT-\d+-[0-9a-z]{9}$`)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		cert, err := f.issuer.Issue(ctx, f.event.ID, f.attendee.ID)
		require.NoError(t, err)
		assert.Regexp(t, format, cert.CertificateID)
		_, dup := seen[cert.CertificateID]
		require.False(t, dup, "duplicate certificate id: %s", cert.CertificateID)
		seen[cert.CertificateID] = struct{}{}
	}
}

func TestIssueDoesNotGateOnAttendeeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.attendee.Status = models.AttendeeRegistered
	_, err := f.store.SaveAttendee(ctx, f.attendee)
	require.NoError(t, err)

	_, err = f.issuer.Issue(ctx, f.event.ID, f.attendee.ID)
	require.NoError(t, err)
}
