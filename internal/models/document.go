package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document метаданные файла пациента. Сам файл хранится во внешнем хранилище.
type Document struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	UserID     string    `json:"user_id"`
	FileName   string    `json:"file_name"`
	StorageURL string    `json:"storage_url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentInput данные документа из JSON-запроса.
type DocumentInput struct {
	PatientID  string `json:"patient_id" validate:"required,uuid"`
	FileName   string `json:"file_name" validate:"required,max=255"`
	StorageURL string `json:"storage_url" validate:"required,url,max=2048"`
}

// NewDocument создает запись о документе.
func NewDocument(userID string, in DocumentInput, now time.Time) (*Document, error) {
	if userID == "" || in.PatientID == "" {
		return nil, errors.New("owner and patient are required")
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, invalid("file_name", "must not be empty")
	}
	if in.StorageURL == "" {
		return nil, invalid("storage_url", "is a required field")
	}
	return &Document{
		ID:         uuid.NewString(),
		PatientID:  in.PatientID,
		UserID:     userID,
		FileName:   in.FileName,
		StorageURL: in.StorageURL,
		UploadedAt: now.UTC(),
	}, nil
}
