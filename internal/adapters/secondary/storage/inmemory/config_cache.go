package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/admin/tg-bots/photo-bot/internal/ports/cache"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache in-memory кэш значений с TTL. Часы инжектируются, чтобы
// истечение TTL проверялось в тестах без реального ожидания.
type Cache struct {
	mu    sync.RWMutex
	now   func() time.Time
	items map[string]entry
}

// NewCache создаёт новый in-memory кэш. nil now — обычные часы.
func NewCache(now func() time.Time) cache.Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		now:   now,
		items: make(map[string]entry),
	}
}

// Get получает значение по ключу. Просроченная запись равносильна отсутствующей.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("key not found: %s", key)
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		return "", fmt.Errorf("key not found: %s", key)
	}
	return item.value, nil
}

// Set устанавливает значение с TTL. ttl <= 0 — запись без срока.
func (c *Cache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = entry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Delete удаляет значение по ключу
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Exists проверяет существование непросроченного ключа
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if _, err := c.Get(ctx, key); err != nil {
		return false, nil
	}
	return true, nil
}

// Close ничего не делает, нужен для соответствия интерфейсу
func (c *Cache) Close() error {
	return nil
}
