package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CacheItem представляет кэшированный результат поиска профиля.
type CacheItem struct {
	Data      uuid.UUID
	ExpiresAt time.Time
}

// CacheStore хранит соответствия "имя игрока → UUID" с ограниченным сроком жизни.
// Ключи нечувствительны к регистру, как и имена игроков.
type CacheStore struct {
	cache map[string]*CacheItem
	mutex sync.RWMutex
}

// NewCacheStore создает новый экземпляр CacheStore
func NewCacheStore() *CacheStore {
	return &CacheStore{
		cache: make(map[string]*CacheItem),
	}
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}

// Get извлекает кэшированный элемент по ключу
func (cs *CacheStore) Get(key string) (*CacheItem, bool) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	item, exists := cs.cache[normalizeKey(key)]
	if !exists || time.Now().After(item.ExpiresAt) {
		return nil, false
	}

	return item, true
}

// Put сохраняет элемент в кэш с указанным сроком действия
func (cs *CacheStore) Put(key string, data uuid.UUID, ttl time.Duration) {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	cs.cache[normalizeKey(key)] = &CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Len возвращает количество элементов, включая просроченные, но еще не удаленные.
func (cs *CacheStore) Len() int {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()
	return len(cs.cache)
}

// CleanupExpired удаляет просроченные элементы из кэша
func (cs *CacheStore) CleanupExpired() {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	now := time.Now()
	for key, item := range cs.cache {
		if now.After(item.ExpiresAt) {
			delete(cs.cache, key)
		}
	}
}

// StartCleanupTicker запускает таймер для периодической очистки просроченных элементов
func (cs *CacheStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// LineHash вычисляет SHA256 плоского текста строки чата вместе с наблюдателем.
// Используется для подавления повторной записи одного и того же рейда.
func LineHash(plain string, reporter uuid.UUID) string {
	hasher := sha256.New()
	hasher.Write(reporter[:])
	hasher.Write([]byte(plain))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
