package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// VisitType тип визита, к которому относится заметка.
type VisitType string

const (
	VisitRegular   VisitType = "regular"
	VisitFollowUp  VisitType = "follow-up"
	VisitEmergency VisitType = "emergency"
)

// DefaultNoteAuthor подпись автора заметки по умолчанию.
const DefaultNoteAuthor = "practitioner"

// MaxNoteLength максимальная длина текста заметки в символах.
const MaxNoteLength = 5000

// Note заметка, встроенная в карточку пациента.
type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	VisitType VisitType `json:"visit_type"`
	CreatedBy string    `json:"created_by"`
	Timestamp time.Time `json:"timestamp"`
}

// NoteInput данные новой заметки из JSON-запроса.
type NoteInput struct {
	Content   string    `json:"content" validate:"required,max=5000"`
	VisitType VisitType `json:"visit_type" validate:"omitempty,oneof=regular follow-up emergency"`
}

// NewNote создает заметку с серверными id и временем.
func NewNote(in NoteInput, createdBy string, now time.Time) (*Note, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, invalid("content", "must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxNoteLength {
		return nil, invalid("content", fmt.Sprintf("must be at most %d characters", MaxNoteLength))
	}
	visit := in.VisitType
	switch visit {
	case "":
		visit = VisitRegular
	case VisitRegular, VisitFollowUp, VisitEmergency:
	default:
		return nil, invalid("visit_type", "must be one of: regular follow-up emergency")
	}
	if createdBy == "" {
		createdBy = DefaultNoteAuthor
	}
	return &Note{
		ID:        uuid.NewString(),
		Content:   content,
		VisitType: visit,
		CreatedBy: createdBy,
		Timestamp: now.UTC(),
	}, nil
}
