// Package patient содержит операции над карточками пациентов и их заметками.
// Все операции выполняются от имени владельца и не видят чужие карточки.
package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/lib/displayid"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// Repository описывает хранилище карточек.
type Repository interface {
	NextPatientSequence(ctx context.Context, userID string) (int64, error)
	CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error)
	ListPatients(ctx context.Context, userID string, filter models.PatientFilter) ([]models.Patient, error)
	GetPatient(ctx context.Context, userID, patientID string) (*models.Patient, error)
	UpdatePatient(ctx context.Context, userID, patientID string, upd models.PatientUpdate) (*models.Patient, error)
	DeletePatient(ctx context.Context, userID, patientID string) error
	AddNote(ctx context.Context, userID, patientID string, note *models.Note) error
	ListNotes(ctx context.Context, userID, patientID string) ([]models.Note, error)
	ListGroups(ctx context.Context, userID string) ([]string, error)
	PatientStats(ctx context.Context, userID string) (*models.PatientStats, error)
}

// PatientService реализует операции над карточками.
type PatientService struct {
	repo Repository
	now  func() time.Time
}

// NewPatientService создает сервис.
func NewPatientService(repo Repository) *PatientService {
	return &PatientService{repo: repo, now: time.Now}
}

// Create выделяет следующий отображаемый id владельца и сохраняет карточку.
// Некорректный ввод отклоняется до выделения id, чтобы не оставлять пропусков.
func (s *PatientService) Create(ctx context.Context, userID string, in models.PatientInput) (*models.Patient, error) {
	const op = "services.patient.Create"

	if err := in.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	seq, err := s.repo.NextPatientSequence(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := models.NewPatient(userID, displayid.Format(seq), in, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	created, err := s.repo.CreatePatient(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// List возвращает карточки владельца по фильтру.
func (s *PatientService) List(ctx context.Context, userID string, filter models.PatientFilter) ([]models.Patient, error) {
	const op = "services.patient.List"

	list, err := s.repo.ListPatients(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range list {
		list[i].Notes = models.SortNotesDesc(list[i].Notes)
	}
	return list, nil
}

// Get возвращает карточку с заметками, новые первыми.
func (s *PatientService) Get(ctx context.Context, userID, patientID string) (*models.Patient, error) {
	const op = "services.patient.Get"

	p, err := s.repo.GetPatient(ctx, userID, patientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Notes = models.SortNotesDesc(p.Notes)
	return p, nil
}

// Update применяет частичное обновление.
func (s *PatientService) Update(ctx context.Context, userID, patientID string, upd models.PatientUpdate) (*models.Patient, error) {
	const op = "services.patient.Update"

	if err := upd.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if upd.Group != nil && *upd.Group == "" {
		group := models.DefaultGroup
		upd.Group = &group
	}
	p, err := s.repo.UpdatePatient(ctx, userID, patientID, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Notes = models.SortNotesDesc(p.Notes)
	return p, nil
}

// Delete удаляет карточку.
func (s *PatientService) Delete(ctx context.Context, userID, patientID string) error {
	const op = "services.patient.Delete"

	if err := s.repo.DeletePatient(ctx, userID, patientID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddNote добавляет заметку с серверными id и временем.
func (s *PatientService) AddNote(ctx context.Context, userID, patientID string, in models.NoteInput) (*models.Note, error) {
	const op = "services.patient.AddNote"

	note, err := models.NewNote(in, "", s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.AddNote(ctx, userID, patientID, note); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return note, nil
}

// Notes возвращает заметки карточки, новые первыми.
func (s *PatientService) Notes(ctx context.Context, userID, patientID string) ([]models.Note, error) {
	const op = "services.patient.Notes"

	notes, err := s.repo.ListNotes(ctx, userID, patientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return models.SortNotesDesc(notes), nil
}

// Groups возвращает группы, которые использует владелец.
func (s *PatientService) Groups(ctx context.Context, userID string) ([]string, error) {
	const op = "services.patient.Groups"

	groups, err := s.repo.ListGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return groups, nil
}

// Stats возвращает статистику по карточкам владельца.
func (s *PatientService) Stats(ctx context.Context, userID string) (*models.PatientStats, error) {
	const op = "services.patient.Stats"

	stats, err := s.repo.PatientStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return stats, nil
}
