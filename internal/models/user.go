// Package models содержит доменные структуры сервиса: пользователей, пациентов,
// заметки, документы и агрегаты аналитики.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Plan тариф пользователя.
type Plan string

const (
	PlanTrial   Plan = "trial"
	PlanRegular Plan = "regular"
	PlanPro     Plan = "pro"
)

// Valid проверяет, что тариф известен.
func (p Plan) Valid() bool {
	switch p {
	case PlanTrial, PlanRegular, PlanPro:
		return true
	}
	return false
}

// SubscriptionStatus статус подписки.
// Переходы: trialing -> active (оплата), trialing -> inactive (истечение пробного периода).
type SubscriptionStatus string

const (
	StatusTrialing SubscriptionStatus = "trialing"
	StatusActive   SubscriptionStatus = "active"
	StatusInactive SubscriptionStatus = "inactive"
)

// TrialPeriod длительность пробного периода после регистрации.
const TrialPeriod = 30 * 24 * time.Hour

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID                  string             `json:"id"`
	Email               string             `json:"email"`
	PasswordHash        string             `json:"-"`
	FullName            string             `json:"full_name"`
	Phone               string             `json:"phone"`
	MedicalSpecialty    string             `json:"medical_specialty"`
	Plan                Plan               `json:"plan"`
	SubscriptionStatus  SubscriptionStatus `json:"subscription_status"`
	SubscriptionEndDate time.Time          `json:"subscription_end_date"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// IsPro сообщает, есть ли у пользователя доступ к pro-функциям.
func (u *User) IsPro() bool {
	return u.Plan == PlanPro
}

// NewUser создает пользователя на пробном периоде.
// Тариф pro нельзя получить при регистрации, только через оплату.
func NewUser(email, passwordHash, fullName, phone, specialty string, plan Plan, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, invalid("email", "is a required field")
	}
	if passwordHash == "" {
		return nil, errors.New("password hash is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, invalid("full_name", "must not be empty")
	}
	if plan == "" {
		plan = PlanTrial
	}
	if plan == PlanPro || !plan.Valid() {
		return nil, invalid("plan", "must be one of: trial regular")
	}
	if specialty == "" {
		specialty = "general"
	}
	now = now.UTC()
	return &User{
		ID:                  uuid.NewString(),
		Email:               email,
		PasswordHash:        passwordHash,
		FullName:            strings.TrimSpace(fullName),
		Phone:               phone,
		MedicalSpecialty:    specialty,
		Plan:                plan,
		SubscriptionStatus:  StatusTrialing,
		SubscriptionEndDate: now.Add(TrialPeriod),
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}
