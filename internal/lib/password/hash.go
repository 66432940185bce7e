// Package password реализует хеширование и проверку паролей через bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, если пароль не соответствует хешу.
var ErrMismatch = errors.New("password does not match")

// MaxBytes предел bcrypt на длину пароля в байтах.
const MaxBytes = 72

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хеш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt‑хеш с введённым паролем.
//
// Возвращает nil при совпадении, ErrMismatch при несовпадении
// и обернутую ошибку, если хеш поврежден.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
