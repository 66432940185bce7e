package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) NextPatientSequence(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	args := m.Called(ctx, p)
	res, _ := args.Get(0).(*models.Patient)
	return res, args.Error(1)
}

func (m *RepoMock) ListPatients(ctx context.Context, userID string, filter models.PatientFilter) ([]models.Patient, error) {
	args := m.Called(ctx, userID, filter)
	res, _ := args.Get(0).([]models.Patient)
	return res, args.Error(1)
}

func (m *RepoMock) GetPatient(ctx context.Context, userID, patientID string) (*models.Patient, error) {
	args := m.Called(ctx, userID, patientID)
	res, _ := args.Get(0).(*models.Patient)
	return res, args.Error(1)
}

func (m *RepoMock) UpdatePatient(ctx context.Context, userID, patientID string, upd models.PatientUpdate) (*models.Patient, error) {
	args := m.Called(ctx, userID, patientID, upd)
	res, _ := args.Get(0).(*models.Patient)
	return res, args.Error(1)
}

func (m *RepoMock) DeletePatient(ctx context.Context, userID, patientID string) error {
	return m.Called(ctx, userID, patientID).Error(0)
}

func (m *RepoMock) AddNote(ctx context.Context, userID, patientID string, note *models.Note) error {
	return m.Called(ctx, userID, patientID, note).Error(0)
}

func (m *RepoMock) ListNotes(ctx context.Context, userID, patientID string) ([]models.Note, error) {
	args := m.Called(ctx, userID, patientID)
	res, _ := args.Get(0).([]models.Note)
	return res, args.Error(1)
}

func (m *RepoMock) ListGroups(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]string)
	return res, args.Error(1)
}

func (m *RepoMock) PatientStats(ctx context.Context, userID string) (*models.PatientStats, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*models.PatientStats)
	return res, args.Error(1)
}

func TestPatientService_Create(t *testing.T) {
	repo := new(RepoMock)
	svc := NewPatientService(repo)

	repo.On("NextPatientSequence", mock.Anything, "user-1").Return(int64(7), nil).Once()
	repo.On("CreatePatient", mock.Anything, mock.MatchedBy(func(p *models.Patient) bool {
		return p.DisplayID == "PAT007" && p.UserID == "user-1" && p.Group == models.DefaultGroup
	})).Return(&models.Patient{ID: "p-1", DisplayID: "PAT007", UserID: "user-1", Name: "John"}, nil).Once()

	got, err := svc.Create(context.Background(), "user-1", models.PatientInput{Name: "John"})
	require.NoError(t, err)
	assert.Equal(t, "PAT007", got.DisplayID)
	repo.AssertExpectations(t)
}

func TestPatientService_Create_Errors(t *testing.T) {
	t.Run("blank name does not consume a display id", func(t *testing.T) {
		repo := new(RepoMock)

		_, err := NewPatientService(repo).Create(context.Background(), "user-1", models.PatientInput{Name: "   "})
		require.ErrorIs(t, err, models.ErrInvalid)
		repo.AssertNotCalled(t, "NextPatientSequence", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreatePatient", mock.Anything, mock.Anything)
	})

	t.Run("sequence failure", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("NextPatientSequence", mock.Anything, "user-1").Return(int64(0), errors.New("db down")).Once()

		_, err := NewPatientService(repo).Create(context.Background(), "user-1", models.PatientInput{Name: "John"})
		require.Error(t, err)
		repo.AssertNotCalled(t, "CreatePatient", mock.Anything, mock.Anything)
	})

	t.Run("insert failure", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("NextPatientSequence", mock.Anything, "user-1").Return(int64(1), nil).Once()
		repo.On("CreatePatient", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		_, err := NewPatientService(repo).Create(context.Background(), "user-1", models.PatientInput{Name: "John"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "services.patient.Create")
	})
}

func TestPatientService_Get_SortsNotes(t *testing.T) {
	repo := new(RepoMock)
	svc := NewPatientService(repo)
	base := time.Now()

	repo.On("GetPatient", mock.Anything, "user-1", "p-1").Return(&models.Patient{
		ID: "p-1",
		Notes: []models.Note{
			{ID: "old", Timestamp: base},
			{ID: "new", Timestamp: base.Add(time.Hour)},
		},
	}, nil).Once()

	got, err := svc.Get(context.Background(), "user-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Notes[0].ID)
}

func TestPatientService_NotFoundPropagates(t *testing.T) {
	repo := new(RepoMock)
	svc := NewPatientService(repo)
	ctx := context.Background()

	repo.On("GetPatient", mock.Anything, "user-2", "p-1").Return(nil, storage.ErrNotFound).Once()
	repo.On("UpdatePatient", mock.Anything, "user-2", "p-1", mock.Anything).Return(nil, storage.ErrNotFound).Once()
	repo.On("DeletePatient", mock.Anything, "user-2", "p-1").Return(storage.ErrNotFound).Once()
	repo.On("AddNote", mock.Anything, "user-2", "p-1", mock.Anything).Return(storage.ErrNotFound).Once()
	repo.On("ListNotes", mock.Anything, "user-2", "p-1").Return(nil, storage.ErrNotFound).Once()

	_, err := svc.Get(ctx, "user-2", "p-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.Update(ctx, "user-2", "p-1", models.PatientUpdate{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "user-2", "p-1"), storage.ErrNotFound)
	_, err = svc.AddNote(ctx, "user-2", "p-1", models.NoteInput{Content: "x"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = svc.Notes(ctx, "user-2", "p-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestPatientService_AddNote(t *testing.T) {
	repo := new(RepoMock)
	svc := NewPatientService(repo)
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	repo.On("AddNote", mock.Anything, "user-1", "p-1", mock.MatchedBy(func(n *models.Note) bool {
		return n.Content == "Follow-up" && n.VisitType == models.VisitFollowUp && n.Timestamp.Equal(fixed)
	})).Return(nil).Once()

	note, err := svc.AddNote(context.Background(), "user-1", "p-1", models.NoteInput{Content: "Follow-up", VisitType: models.VisitFollowUp})
	require.NoError(t, err)
	assert.NotEmpty(t, note.ID)
	assert.Equal(t, models.DefaultNoteAuthor, note.CreatedBy)
	repo.AssertExpectations(t)
}

func TestPatientService_AddNote_Invalid(t *testing.T) {
	repo := new(RepoMock)
	_, err := NewPatientService(repo).AddNote(context.Background(), "user-1", "p-1", models.NoteInput{Content: " "})
	require.ErrorIs(t, err, models.ErrInvalid)
	repo.AssertNotCalled(t, "AddNote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPatientService_Notes_Sorted(t *testing.T) {
	repo := new(RepoMock)
	base := time.Now()
	repo.On("ListNotes", mock.Anything, "user-1", "p-1").Return([]models.Note{
		{ID: "1", Timestamp: base.Add(time.Minute)},
		{ID: "2", Timestamp: base},
		{ID: "3", Timestamp: base.Add(time.Hour)},
	}, nil).Once()

	notes, err := NewPatientService(repo).Notes(context.Background(), "user-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "3", notes[0].ID)
	assert.Equal(t, "1", notes[1].ID)
	assert.Equal(t, "2", notes[2].ID)
}

func TestPatientService_ListGroupsStats(t *testing.T) {
	repo := new(RepoMock)
	svc := NewPatientService(repo)
	filter := models.PatientFilter{Search: "jo", FavoritesOnly: true}

	repo.On("ListPatients", mock.Anything, "user-1", filter).Return([]models.Patient{{ID: "p-1"}}, nil).Once()
	repo.On("ListGroups", mock.Anything, "user-1").Return([]string{"chronic"}, nil).Once()
	repo.On("PatientStats", mock.Anything, "user-1").Return(&models.PatientStats{TotalPatients: 1}, nil).Once()

	list, err := svc.List(context.Background(), "user-1", filter)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	groups, err := svc.Groups(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"chronic"}, groups)

	stats, err := svc.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalPatients)
	repo.AssertExpectations(t)
}

func TestPatientService_Update_EmptyGroupBecomesDefault(t *testing.T) {
	repo := new(RepoMock)
	svc := NewPatientService(repo)

	empty := ""
	repo.On("UpdatePatient", mock.Anything, "user-1", "p-1", mock.MatchedBy(func(u models.PatientUpdate) bool {
		return u.Group != nil && *u.Group == models.DefaultGroup && u.Name == nil
	})).Return(&models.Patient{ID: "p-1", Group: models.DefaultGroup}, nil).Once()

	p, err := svc.Update(context.Background(), "user-1", "p-1", models.PatientUpdate{Group: &empty})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultGroup, p.Group)
	repo.AssertExpectations(t)
}

func TestPatientService_Update_BlankNameRejected(t *testing.T) {
	repo := new(RepoMock)

	blank := "  "
	_, err := NewPatientService(repo).Update(context.Background(), "user-1", "p-1", models.PatientUpdate{Name: &blank})
	require.ErrorIs(t, err, models.ErrInvalid)
	repo.AssertNotCalled(t, "UpdatePatient", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
