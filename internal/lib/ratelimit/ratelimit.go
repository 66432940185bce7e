// Package ratelimit ограничивает частоту запросов по ключу (пользователь или IP).
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter решает, можно ли пропустить очередной запрос для ключа.
// retryAfter имеет смысл только при allowed == false.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// WindowCounter атомарно считает запросы в фиксированном окне.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiter фиксированное окно на общем счетчике в redis.
// Лимит соблюдается для всех экземпляров сервиса.
type RedisLimiter struct {
	counter WindowCounter
	limit   int64
	window  time.Duration
	prefix  string
}

// NewRedisLimiter создает лимитер: не больше limit запросов за window.
func NewRedisLimiter(counter WindowCounter, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		counter: counter,
		limit:   int64(limit),
		window:  window,
		prefix:  "ratelimit:",
	}
}

// Allow увеличивает счетчик окна ключа.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	const op = "ratelimit.RedisLimiter.Allow"

	n, ttl, err := l.counter.IncrWindow(ctx, l.prefix+key, l.window)
	if err != nil {
		return false, 0, fmt.Errorf("%s: %w", op, err)
	}
	if n > l.limit {
		return false, ttl, nil
	}
	return true, 0, nil
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter хранит токен-бакет на каждый ключ в памяти процесса.
// Используется, когда redis не настроен.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// NewMemoryLimiter создает лимитер со средней скоростью limit запросов за window
// и запасом limit запросов.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		idle:     2 * window,
		now:      time.Now,
	}
}

// Allow забирает токен из бакета ключа.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := l.now()

	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	r := v.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
		return false, delay, nil
	}
	return true, 0, nil
}

// Cleanup удаляет бакеты ключей, которые не появлялись дольше двух окон.
func (l *MemoryLimiter) Cleanup() {
	cutoff := l.now().Add(-l.idle)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// RunCleanup периодически чистит бакеты до отмены контекста.
func (l *MemoryLimiter) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

// Size возвращает число отслеживаемых ключей.
func (l *MemoryLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}
