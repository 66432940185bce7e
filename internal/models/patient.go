package models

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultGroup группа пациента, если клиент ее не указал.
const DefaultGroup = "general"

// Patient карточка пациента. Видна только владельцу (UserID).
type Patient struct {
	ID               string    `json:"id"`
	DisplayID        string    `json:"patient_id"`
	UserID           string    `json:"user_id"`
	Name             string    `json:"name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Address          string    `json:"address"`
	Location         string    `json:"location"`
	InitialComplaint string    `json:"initial_complaint"`
	InitialDiagnosis string    `json:"initial_diagnosis"`
	Photo            string    `json:"photo"`
	Group            string    `json:"group"`
	IsFavorite       bool      `json:"is_favorite"`
	Notes            []Note    `json:"notes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PatientInput данные для создания пациента из JSON-запроса.
type PatientInput struct {
	Name             string `json:"name" validate:"required,max=200"`
	Phone            string `json:"phone" validate:"max=50"`
	Email            string `json:"email" validate:"omitempty,email,max=254"`
	Address          string `json:"address" validate:"max=500"`
	Location         string `json:"location" validate:"max=200"`
	InitialComplaint string `json:"initial_complaint" validate:"max=5000"`
	InitialDiagnosis string `json:"initial_diagnosis" validate:"max=5000"`
	Photo            string `json:"photo"`
	Group            string `json:"group" validate:"max=100"`
	IsFavorite       bool   `json:"is_favorite"`
}

// PatientUpdate частичное обновление: nil означает "не менять".
type PatientUpdate struct {
	Name             *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone            *string `json:"phone" validate:"omitempty,max=50"`
	Email            *string `json:"email" validate:"omitempty,email,max=254"`
	Address          *string `json:"address" validate:"omitempty,max=500"`
	Location         *string `json:"location" validate:"omitempty,max=200"`
	InitialComplaint *string `json:"initial_complaint" validate:"omitempty,max=5000"`
	InitialDiagnosis *string `json:"initial_diagnosis" validate:"omitempty,max=5000"`
	Photo            *string `json:"photo"`
	Group            *string `json:"group" validate:"omitempty,max=100"`
	IsFavorite       *bool   `json:"is_favorite"`
}

// Check проверяет правила, которые не выражаются тегами валидатора.
func (in PatientInput) Check() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "must not be empty")
	}
	return nil
}

// Check проверяет правила, которые не выражаются тегами валидатора.
// Указатель на пустую строку проходит omitempty, но имя обязано быть непустым.
func (u PatientUpdate) Check() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return invalid("name", "must not be empty")
	}
	return nil
}

// PatientFilter параметры выборки списка пациентов.
type PatientFilter struct {
	Search        string
	Group         string
	FavoritesOnly bool
}

// MaxPatientsPerList верхняя граница размера одного ответа со списком пациентов.
const MaxPatientsPerList = 1000

// NewPatient собирает новую карточку пациента с серверными полями.
func NewPatient(userID, displayID string, in PatientInput, now time.Time) (*Patient, error) {
	if userID == "" {
		return nil, errors.New("owner is required")
	}
	if displayID == "" {
		return nil, errors.New("display id is required")
	}
	if err := in.Check(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	group := in.Group
	if group == "" {
		group = DefaultGroup
	}
	now = now.UTC()
	return &Patient{
		ID:               uuid.NewString(),
		DisplayID:        displayID,
		UserID:           userID,
		Name:             name,
		Phone:            in.Phone,
		Email:            in.Email,
		Address:          in.Address,
		Location:         in.Location,
		InitialComplaint: in.InitialComplaint,
		InitialDiagnosis: in.InitialDiagnosis,
		Photo:            in.Photo,
		Group:            group,
		IsFavorite:       in.IsFavorite,
		Notes:            []Note{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// SortNotesDesc возвращает копию заметок, новые первыми.
// При равных отметках времени позже добавленная заметка идет раньше.
func SortNotesDesc(notes []Note) []Note {
	sorted := make([]Note, len(notes))
	for i := range notes {
		sorted[len(notes)-1-i] = notes[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

// GroupCount количество пациентов в группе.
type GroupCount struct {
	Group string `json:"group"`
	Count int64  `json:"count"`
}

// PatientStats статистика по пациентам пользователя.
type PatientStats struct {
	TotalPatients    int64        `json:"total_patients"`
	FavoritePatients int64        `json:"favorite_patients"`
	Groups           []GroupCount `json:"groups"`
}
