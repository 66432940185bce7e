package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
// Идентификатор пользователя хранится в стандартном claim "sub".
type CustomClaims struct {
	Plan string    `json:"plan,omitempty"`
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// UserID возвращает subject токена.
func (c *CustomClaims) UserID() string {
	return c.Subject
}

// GenerateAccessToken создает access-токен с тарифом пользователя,
// чтобы проверка тарифа не требовала запроса к базе.
func (j *MakerImpl) GenerateAccessToken(userID, plan string) (string, error) {
	return j.sign(userID, plan, AccessToken, j.accessTTL)
}

// GenerateRefreshToken создает refresh-токен.
func (j *MakerImpl) GenerateRefreshToken(userID string) (string, error) {
	return j.sign(userID, "", RefreshToken, j.refreshTTL)
}

func (j *MakerImpl) sign(userID, plan string, typ TokenType, ttl time.Duration) (string, error) {
	const op = "jwt.sign"
	if userID == "" {
		return "", fmt.Errorf("%s: empty subject", op)
	}
	now := time.Now()
	claims := CustomClaims{
		Plan: plan,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken проверяет подпись, срок действия и тип токена.
//
// Истекший токен дает ErrTokenExpired, любой другой дефект дает ErrTokenInvalid.
func (j *MakerImpl) ParseToken(tokenStr string, want TokenType) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: %w: missing subject", op, ErrTokenInvalid)
	}
	if claims.Type != want {
		return nil, fmt.Errorf("%s: %w: expected %s token, got %q", op, ErrTokenInvalid, want, claims.Type)
	}
	return claims, nil
}
