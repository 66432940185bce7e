package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	u, err := NewUser("  Dr.Sarah@Clinic.com ", "hash", "Sarah Johnson", "+1", "", "", now)
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "dr.sarah@clinic.com", u.Email)
	assert.Equal(t, PlanTrial, u.Plan)
	assert.Equal(t, StatusTrialing, u.SubscriptionStatus)
	assert.Equal(t, "general", u.MedicalSpecialty)
	assert.Equal(t, now.Add(30*24*time.Hour), u.SubscriptionEndDate)
	assert.False(t, u.IsPro())
}

func TestNewUser_Errors(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		email    string
		hash     string
		fullName string
		plan     Plan
	}{
		{name: "empty email", email: " ", hash: "h", fullName: "A"},
		{name: "empty hash", email: "a@b.c", hash: "", fullName: "A"},
		{name: "empty name", email: "a@b.c", hash: "h", fullName: "  "},
		{name: "self-granted pro", email: "a@b.c", hash: "h", fullName: "A", plan: PlanPro},
		{name: "unknown plan", email: "a@b.c", hash: "h", fullName: "A", plan: "gold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.email, tt.hash, tt.fullName, "", "", tt.plan, now)
			assert.Error(t, err)
			assert.Nil(t, u)
		})
	}
}

func TestNewPatient(t *testing.T) {
	now := time.Now()

	p, err := NewPatient("user-1", "PAT001", PatientInput{Name: " John Smith ", Phone: "+1"}, now)
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "PAT001", p.DisplayID)
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "John Smith", p.Name)
	assert.Equal(t, DefaultGroup, p.Group)
	assert.NotNil(t, p.Notes)
	assert.Empty(t, p.Notes)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	p, err = NewPatient("user-1", "PAT002", PatientInput{Name: "Jane", Group: "vip"}, now)
	require.NoError(t, err)
	assert.Equal(t, "vip", p.Group)
}

func TestNewPatient_Errors(t *testing.T) {
	_, err := NewPatient("", "PAT001", PatientInput{Name: "A"}, time.Now())
	assert.Error(t, err)
	_, err = NewPatient("u", "", PatientInput{Name: "A"}, time.Now())
	assert.Error(t, err)
	_, err = NewPatient("u", "PAT001", PatientInput{Name: "   "}, time.Now())
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestPatientInput_Check(t *testing.T) {
	assert.NoError(t, PatientInput{Name: "John"}.Check())

	err := PatientInput{Name: " \t "}.Check()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Equal(t, "field name must not be empty", err.Error())
}

func TestPatientUpdate_Check(t *testing.T) {
	blank := "   "
	name := "Jane"
	fav := true

	assert.NoError(t, PatientUpdate{}.Check())
	assert.NoError(t, PatientUpdate{Name: &name}.Check())
	assert.NoError(t, PatientUpdate{IsFavorite: &fav}.Check())
	assert.ErrorIs(t, PatientUpdate{Name: &blank}.Check(), ErrInvalid)
}

func TestNewNote(t *testing.T) {
	now := time.Now()

	n, err := NewNote(NoteInput{Content: "Initial consultation"}, "", now)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, VisitRegular, n.VisitType)
	assert.Equal(t, DefaultNoteAuthor, n.CreatedBy)
	assert.Equal(t, now.UTC(), n.Timestamp)

	n, err = NewNote(NoteInput{Content: "Pain returned", VisitType: VisitEmergency}, "dr. house", now)
	require.NoError(t, err)
	assert.Equal(t, VisitEmergency, n.VisitType)
	assert.Equal(t, "dr. house", n.CreatedBy)
}

func TestNewNote_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   NoteInput
	}{
		{name: "empty content", in: NoteInput{Content: "  "}},
		{name: "too long", in: NoteInput{Content: strings.Repeat("a", MaxNoteLength+1)}},
		{name: "unknown visit type", in: NoteInput{Content: "x", VisitType: "house-call"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewNote(tt.in, "", time.Now())
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Nil(t, n)
		})
	}
}

func TestNewNote_LengthCountsCharacters(t *testing.T) {
	n, err := NewNote(NoteInput{Content: strings.Repeat("я", MaxNoteLength)}, "", time.Now())
	require.NoError(t, err)
	assert.Len(t, []rune(n.Content), MaxNoteLength)

	_, err = NewNote(NoteInput{Content: strings.Repeat("я", MaxNoteLength+1)}, "", time.Now())
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSortNotesDesc(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notes := []Note{
		{ID: "b", Timestamp: base.Add(time.Hour)},
		{ID: "a", Timestamp: base},
		{ID: "c", Timestamp: base.Add(2 * time.Hour)},
		{ID: "d", Timestamp: base.Add(2 * time.Hour)},
	}

	sorted := SortNotesDesc(notes)

	ids := make([]string, 0, len(sorted))
	for _, n := range sorted {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, ids)
	assert.Equal(t, "b", notes[0].ID, "input must not be reordered")
}

func TestNewDocument(t *testing.T) {
	d, err := NewDocument("user-1", DocumentInput{PatientID: "p-1", FileName: "xray.png", StorageURL: "https://s3/x"}, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, "user-1", d.UserID)

	_, err = NewDocument("user-1", DocumentInput{PatientID: "p-1"}, time.Now())
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = NewDocument("user-1", DocumentInput{PatientID: "p-1", FileName: "  ", StorageURL: "https://s3/x"}, time.Now())
	assert.ErrorIs(t, err, ErrInvalid)
}
