// Package analytics считает агрегаты по карточкам пользователя (pro-функция).
package analytics

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// Repository описывает источник агрегатов.
type Repository interface {
	PatientGrowth(ctx context.Context, userID string) ([]models.MonthlyGrowth, error)
}

// AnalyticsService реализует аналитику.
type AnalyticsService struct {
	repo Repository
}

// NewAnalyticsService создает сервис.
func NewAnalyticsService(repo Repository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// PatientGrowth возвращает число новых карточек по месяцам, по возрастанию.
func (s *AnalyticsService) PatientGrowth(ctx context.Context, userID string) ([]models.MonthlyGrowth, error) {
	const op = "services.analytics.PatientGrowth"

	growth, err := s.repo.PatientGrowth(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return growth, nil
}
