package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// PatientGrowth группирует карточки пользователя по месяцу создания (UTC), по возрастанию.
func (s *Storage) PatientGrowth(ctx context.Context, userID string) ([]models.MonthlyGrowth, error) {
	const op = "storage.PatientGrowth"

	query := `SELECT EXTRACT(YEAR FROM created_at AT TIME ZONE 'UTC')::int AS y,
			         EXTRACT(MONTH FROM created_at AT TIME ZONE 'UTC')::int AS m,
			         COUNT(*)
			  FROM patients
			  WHERE user_id = $1
			  GROUP BY y, m
			  ORDER BY y, m`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	growth := []models.MonthlyGrowth{}
	for rows.Next() {
		var g models.MonthlyGrowth
		if err = rows.Scan(&g.Year, &g.Month, &g.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		growth = append(growth, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return growth, nil
}
