// Package datasync отдает и принимает изменения для офлайн-клиента.
// Конфликты не разрешаются: последнее записанное значение побеждает.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// ChangesRepository отдает карточки, измененные после момента времени.
type ChangesRepository interface {
	PatientsChangedSince(ctx context.Context, userID string, since time.Time) (created, updated []models.Patient, err error)
}

// PatientWriter применяет изменения тем же путем, что и обычные запросы.
type PatientWriter interface {
	Create(ctx context.Context, userID string, in models.PatientInput) (*models.Patient, error)
	Update(ctx context.Context, userID, patientID string, upd models.PatientUpdate) (*models.Patient, error)
	Delete(ctx context.Context, userID, patientID string) error
}

// SyncService реализует pull и push.
type SyncService struct {
	changes  ChangesRepository
	patients PatientWriter
	validate *validator.Validate
	now      func() time.Time
}

// NewSyncService создает сервис.
func NewSyncService(changes ChangesRepository, patients PatientWriter) *SyncService {
	return &SyncService{
		changes:  changes,
		patients: patients,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Pull возвращает изменения после lastPulledAt (мс с начала эпохи).
// Удаления не отслеживаются, поэтому списки deleted всегда пустые.
func (s *SyncService) Pull(ctx context.Context, userID string, lastPulledAt int64) (*models.PullResult, error) {
	const op = "services.datasync.Pull"

	now := s.now()
	since := time.UnixMilli(lastPulledAt)

	created, updated, err := s.changes.PatientsChangedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notes := []models.NoteChange{}
	for _, list := range [][]models.Patient{created, updated} {
		for _, p := range list {
			for _, n := range p.Notes {
				if n.Timestamp.After(since) {
					notes = append(notes, models.NoteChange{Note: n, PatientID: p.ID})
				}
			}
		}
	}

	return &models.PullResult{
		Changes: models.PullChanges{
			Patients: models.PatientChanges{
				Created: nonNil(created),
				Updated: nonNil(updated),
				Deleted: []string{},
			},
			ClinicalNotes: models.NoteChanges{
				Created: notes,
				Updated: []models.NoteChange{},
				Deleted: []string{},
			},
		},
		Timestamp: now.UnixMilli(),
	}, nil
}

// Push применяет изменения клиента. Записи, не прошедшие те же правила,
// что и обычные запросы, а также отсутствующие или чужие карточки
// пропускаются и учитываются в Skipped.
func (s *SyncService) Push(ctx context.Context, userID string, changes models.PushChanges) (*models.PushResult, error) {
	const op = "services.datasync.Push"

	res := &models.PushResult{}
	for _, in := range changes.Patients.Created {
		if s.validate.Struct(in) != nil || in.Check() != nil {
			res.Skipped++
			continue
		}
		_, err := s.patients.Create(ctx, userID, in)
		if errors.Is(err, models.ErrInvalid) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res.Applied++
	}
	for _, edit := range changes.Patients.Updated {
		if s.validate.Struct(edit.PatientUpdate) != nil || edit.PatientUpdate.Check() != nil {
			res.Skipped++
			continue
		}
		_, err := s.patients.Update(ctx, userID, edit.ID, edit.PatientUpdate)
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, models.ErrInvalid) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res.Applied++
	}
	for _, id := range changes.Patients.Deleted {
		err := s.patients.Delete(ctx, userID, id)
		if errors.Is(err, storage.ErrNotFound) {
			res.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res.Applied++
	}
	return res, nil
}

func nonNil(list []models.Patient) []models.Patient {
	if list == nil {
		return []models.Patient{}
	}
	return list
}
