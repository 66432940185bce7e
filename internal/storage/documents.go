package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// CreateDocument сохраняет метаданные документа. Если карточка пациента
// не принадлежит владельцу документа, возвращается ErrNotFound.
func (s *Storage) CreateDocument(ctx context.Context, doc *models.Document) error {
	const op = "storage.CreateDocument"

	query := `INSERT INTO documents (id, patient_id, user_id, file_name, storage_url, uploaded_at)
			  SELECT $1, $2, $3, $4, $5, $6
			  WHERE EXISTS (SELECT 1 FROM patients WHERE id = $2 AND user_id = $3)`
	res, err := s.DB.ExecContext(ctx, query,
		doc.ID, doc.PatientID, doc.UserID, doc.FileName, doc.StorageURL, doc.UploadedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ListDocuments возвращает документы карточки пользователя, свежие первыми.
func (s *Storage) ListDocuments(ctx context.Context, userID, patientID string) ([]models.Document, error) {
	const op = "storage.ListDocuments"

	exists, err := s.PatientExists(ctx, userID, patientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, patient_id, user_id, file_name, storage_url, uploaded_at
		FROM documents WHERE patient_id = $1 AND user_id = $2
		ORDER BY uploaded_at DESC`, patientID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err = rows.Scan(&d.ID, &d.PatientID, &d.UserID, &d.FileName, &d.StorageURL, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		docs = append(docs, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return docs, nil
}
