package password

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "password123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "short password", password: "short"},
		{name: "unicode password", password: "пароль123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := GetHash(tt.password)
			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, CompareHash(hash, tt.password))
		})
	}
}

func TestGetHash_Salted(t *testing.T) {
	first, err := GetHash("password123")
	require.NoError(t, err)
	second, err := GetHash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCompareHash(t *testing.T) {
	hash, err := GetHash("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name         string
		hash         string
		password     string
		wantMismatch bool
		wantErr      bool
	}{
		{name: "match", hash: hash, password: "correct-password"},
		{name: "wrong password", hash: hash, password: "wrong-password", wantMismatch: true, wantErr: true},
		{name: "empty password", hash: hash, password: "", wantMismatch: true, wantErr: true},
		{name: "corrupted hash", hash: "not-a-bcrypt-hash", password: "correct-password", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CompareHash(tt.hash, tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMismatch, errors.Is(err, ErrMismatch))
		})
	}
}
