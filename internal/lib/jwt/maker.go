// Package jwt реализует генерацию и парсинг access- и refresh-токенов.
//
// Maker выдает короткоживущие access-токены (subject + тариф пользователя)
// и долгоживущие refresh-токены (только subject). ParseToken различает
// истекший и невалидный токен, чтобы клиент мог понять, нужно ли обновление.
package jwt

import (
	"errors"
	"time"
)

// TokenType тип токена, хранится в claim "typ".
type TokenType string

const (
	// AccessToken используется для доступа к API.
	AccessToken TokenType = "access"
	// RefreshToken используется только для выпуска нового access-токена.
	RefreshToken TokenType = "refresh"
)

var (
	// ErrTokenExpired возвращается для токена с истекшим сроком действия.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid возвращается для поврежденного, чужого или не того типа токена.
	ErrTokenInvalid = errors.New("invalid token")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateAccessToken(userID, plan string) (string, error)
	GenerateRefreshToken(userID string) (string, error)
	ParseToken(tokenStr string, want TokenType) (*CustomClaims, error)
}

// MakerImpl реализует Maker с HMAC-подписью.
type MakerImpl struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTMaker создаёт новый MakerImpl на основе секретного ключа и времени жизни токенов.
func NewJWTMaker(secretKey string, accessTTL, refreshTTL time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey:  secretKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}
