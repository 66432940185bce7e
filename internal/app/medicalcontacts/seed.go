package medicalcontacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/lib/displayid"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/password"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// DemoPassword пароль демо-пользователей.
const DemoPassword = "password123"

// SeedStore операции хранилища, нужные для заполнения демо-данными.
type SeedStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListPatients(ctx context.Context, userID string, filter models.PatientFilter) ([]models.Patient, error)
	CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error)
	EnsurePatientSequence(ctx context.Context, userID string, seq int64) error
}

type demoUser struct {
	id, email, phone, fullName, specialty string
	plan                                  models.Plan
	validFor                              time.Duration
}

var demoUsers = []demoUser{
	{
		id: "demo_user_1", email: "dr.sarah@clinic.com", phone: "+1234567890",
		fullName: "Dr. Sarah Johnson", specialty: "cardiology",
		plan: models.PlanPro, validFor: 365 * 24 * time.Hour,
	},
	{
		id: "demo_user_2", email: "dr.mike@physio.com", phone: "+1987654321",
		fullName: "Dr. Mike Chen", specialty: "physiotherapy",
		plan: models.PlanRegular, validFor: 30 * 24 * time.Hour,
	},
}

var demoPatients = []models.PatientInput{
	{
		Name: "John Wilson", Phone: "+1555123456", Email: "john.wilson@email.com",
		Address: "123 Main St, Springfield", Location: "Clinic Room 1",
		InitialComplaint: "Chest pain", InitialDiagnosis: "Suspected angina",
		Group: "cardiology", IsFavorite: true,
	},
	{
		Name: "Emma Rodriguez", Phone: "+1555987654", Email: "emma.r@email.com",
		Address: "456 Oak Ave, Springfield", Location: "Clinic Room 2",
		InitialComplaint: "High blood pressure review", InitialDiagnosis: "Hypertension",
		Group: "cardiology",
	},
	{
		Name: "Robert Chang", Phone: "+1555456789", Email: "robert.chang@email.com",
		Address: "789 Pine St, Springfield", Location: "Home Visit",
		InitialComplaint: "Diabetic foot care", InitialDiagnosis: "Diabetic neuropathy",
		Group: "endocrinology",
	},
	{
		Name: "Lisa Thompson", Phone: "+1555654321", Email: "lisa.thompson@email.com",
		Address: "321 Elm Dr, Springfield", Location: "Clinic Room 1",
		InitialComplaint: "Pregnancy cardiac monitoring", InitialDiagnosis: "Benign heart murmur",
		Group: "obstetric_cardiology", IsFavorite: true,
	},
	{
		Name: "David Miller", Phone: "+1555789012", Email: "david.miller@email.com",
		Address: "654 Maple Ave, Springfield", Location: "Clinic Room 3",
		InitialComplaint: "Post-cardiac surgery follow-up", InitialDiagnosis: "Post-operative recovery",
		Group: "post_surgical",
	},
}

// Seed создает демо-пользователей и карточки пациентов для первого из них.
// Существующие пользователи и уже заполненные картотеки не трогаются.
func Seed(ctx context.Context, log *slog.Logger, store SeedStore) error {
	const op = "medicalcontacts.Seed"

	hash, err := password.GetHash(DemoPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	now := time.Now().UTC()

	for _, du := range demoUsers {
		_, err := store.GetUserByEmail(ctx, du.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, err)
		}
		user := &models.User{
			ID:                  du.id,
			Email:               du.email,
			PasswordHash:        hash,
			FullName:            du.fullName,
			Phone:               du.phone,
			MedicalSpecialty:    du.specialty,
			Plan:                du.plan,
			SubscriptionStatus:  models.StatusActive,
			SubscriptionEndDate: now.Add(du.validFor),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := store.CreateUser(ctx, user); err != nil && !errors.Is(err, storage.ErrEmailTaken) {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("demo user created", slog.String("email", du.email))
	}

	owner := demoUsers[0]
	existing, err := store.ListPatients(ctx, owner.id, models.PatientFilter{})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(existing) > 0 {
		log.Info("demo patients already exist, skipping", slog.String("user_id", owner.id))
		return nil
	}

	for i, in := range demoPatients {
		p, err := models.NewPatient(owner.id, displayid.Format(int64(i+1)), in, now)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if i == 0 {
			note, err := models.NewNote(models.NoteInput{Content: "Initial consultation."}, owner.fullName, now)
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			p.Notes = append(p.Notes, *note)
		}
		if _, err := store.CreatePatient(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := store.EnsurePatientSequence(ctx, owner.id, int64(len(demoPatients))); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("demo data initialized", slog.Int("patients", len(demoPatients)))
	return nil
}
