package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func newTestMaker() *MakerImpl {
	return NewJWTMaker(testSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestMaker_AccessToken(t *testing.T) {
	maker := newTestMaker()

	tests := []struct {
		name   string
		userID string
		plan   string
	}{
		{name: "trial user", userID: "0b6f2b52-5d1e-4d7a-9c43-8b1f0b7c2a11", plan: "trial"},
		{name: "pro user", userID: "demo_user_1", plan: "pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateAccessToken(tt.userID, tt.plan)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token, AccessToken)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.UserID())
			assert.Equal(t, tt.plan, claims.Plan)
			assert.Equal(t, AccessToken, claims.Type)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_RefreshToken(t *testing.T) {
	maker := newTestMaker()

	token, err := maker.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := maker.ParseToken(token, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Empty(t, claims.Plan)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestMaker_EmptySubject(t *testing.T) {
	maker := newTestMaker()

	_, err := maker.GenerateAccessToken("", "pro")
	assert.Error(t, err)
}

func TestMaker_ParseToken_Failures(t *testing.T) {
	maker := newTestMaker()

	validAccess, err := maker.GenerateAccessToken("user-1", "trial")
	require.NoError(t, err)
	validRefresh, err := maker.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	expired, err := NewJWTMaker(testSecret, -time.Hour, -time.Hour).GenerateAccessToken("user-1", "trial")
	require.NoError(t, err)

	foreign, err := NewJWTMaker("wrong_secret_key", time.Hour, time.Hour).GenerateAccessToken("user-1", "pro")
	require.NoError(t, err)

	noneAlg, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, CustomClaims{
		Type: AccessToken,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		want    TokenType
		wantErr error
	}{
		{name: "empty token", token: "", want: AccessToken, wantErr: ErrTokenInvalid},
		{name: "malformed token", token: "invalid.token.here", want: AccessToken, wantErr: ErrTokenInvalid},
		{name: "expired token", token: expired, want: AccessToken, wantErr: ErrTokenExpired},
		{name: "wrong secret", token: foreign, want: AccessToken, wantErr: ErrTokenInvalid},
		{name: "tampered token", token: validAccess + "tampered", want: AccessToken, wantErr: ErrTokenInvalid},
		{name: "none algorithm", token: noneAlg, want: AccessToken, wantErr: ErrTokenInvalid},
		{name: "refresh used as access", token: validRefresh, want: AccessToken, wantErr: ErrTokenInvalid},
		{name: "access used as refresh", token: validAccess, want: RefreshToken, wantErr: ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token, tt.want)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestMaker_ExpiredIsNotInvalid(t *testing.T) {
	expired, err := NewJWTMaker(testSecret, -time.Minute, time.Hour).GenerateAccessToken("user-1", "trial")
	require.NoError(t, err)

	_, err = newTestMaker().ParseToken(expired, AccessToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}
