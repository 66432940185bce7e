package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

const userColumns = `id, email, password_hash, full_name, phone, medical_specialty,
	plan, subscription_status, subscription_end_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.MedicalSpecialty, &u.Plan, &u.SubscriptionStatus, &u.SubscriptionEndDate,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя. Занятый email дает ErrEmailTaken.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (id, email, password_hash, full_name, phone, medical_specialty,
			      plan, subscription_status, subscription_end_date, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.DB.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Phone, user.MedicalSpecialty,
		user.Plan, user.SubscriptionStatus, user.SubscriptionEndDate, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его id.
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.GetUserByID"

	row := s.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}

// UpgradeToPro переводит пользователя на тариф pro с активной подпиской до until.
func (s *Storage) UpgradeToPro(ctx context.Context, userID string, until time.Time) (*models.User, error) {
	const op = "storage.UpgradeToPro"

	query := `UPDATE users
			  SET plan = $2, subscription_status = $3, subscription_end_date = $4, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns
	row := s.DB.QueryRowContext(ctx, query, userID, models.PlanPro, models.StatusActive, until)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, notFound(err))
	}
	return u, nil
}
