package cache

import (
	"context"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

const userKeyPrefix = "user:"

// UserTTL время жизни профиля пользователя в кэше.
const UserTTL = 5 * time.Minute

// UserCache кэширует профили пользователей поверх Cache.
type UserCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewUserCache создает кэш профилей.
func NewUserCache(c *Cache, ttl time.Duration) *UserCache {
	return &UserCache{cache: c, ttl: ttl}
}

// GetUser возвращает профиль из кэша. Хэш пароля в кэш не попадает.
func (u *UserCache) GetUser(ctx context.Context, userID string) (*models.User, bool, error) {
	var user models.User
	found, err := u.cache.Get(ctx, userKeyPrefix+userID, &user)
	if err != nil || !found {
		return nil, false, err
	}
	return &user, true, nil
}

// SetUser кладет профиль в кэш.
func (u *UserCache) SetUser(ctx context.Context, user *models.User) error {
	return u.cache.Set(ctx, userKeyPrefix+user.ID, user, u.ttl)
}

// InvalidateUser удаляет профиль из кэша.
func (u *UserCache) InvalidateUser(ctx context.Context, userID string) error {
	return u.cache.Invalidate(ctx, userKeyPrefix+userID)
}
