// Package document хранит метаданные документов пациентов (pro-функция).
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// Repository описывает хранилище документов.
type Repository interface {
	CreateDocument(ctx context.Context, doc *models.Document) error
	ListDocuments(ctx context.Context, userID, patientID string) ([]models.Document, error)
}

// DocumentService реализует операции с документами.
type DocumentService struct {
	repo Repository
	now  func() time.Time
}

// NewDocumentService создает сервис.
func NewDocumentService(repo Repository) *DocumentService {
	return &DocumentService{repo: repo, now: time.Now}
}

// Create сохраняет метаданные документа для карточки владельца.
func (s *DocumentService) Create(ctx context.Context, userID string, in models.DocumentInput) (*models.Document, error) {
	const op = "services.document.Create"

	doc, err := models.NewDocument(userID, in, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.repo.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// List возвращает документы карточки владельца.
func (s *DocumentService) List(ctx context.Context, userID, patientID string) ([]models.Document, error) {
	const op = "services.document.List"

	docs, err := s.repo.ListDocuments(ctx, userID, patientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}
