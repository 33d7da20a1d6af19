package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var steve = uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5")

func TestCacheStore(t *testing.T) {
	t.Run("Создание нового хранилища кэша", func(t *testing.T) {
		cs := NewCacheStore()
		assert.NotNil(t, cs)
		assert.Equal(t, 0, cs.Len())
	})

	t.Run("Запись и чтение из кэша", func(t *testing.T) {
		cs := NewCacheStore()
		ttl := 1 * time.Minute

		cs.Put("Notch", steve, ttl)

		item, found := cs.Get("Notch")
		require.True(t, found)
		assert.Equal(t, steve, item.Data)
		assert.WithinDuration(t, time.Now().Add(ttl), item.ExpiresAt, 1*time.Second)
	})

	t.Run("Ключи нечувствительны к регистру", func(t *testing.T) {
		cs := NewCacheStore()
		cs.Put("Notch", steve, time.Minute)

		item, found := cs.Get("nOTCH")
		require.True(t, found)
		assert.Equal(t, steve, item.Data)
	})

	t.Run("Чтение несуществующего ключа", func(t *testing.T) {
		_, found := NewCacheStore().Get("non_existent_key")
		assert.False(t, found)
	})

	t.Run("Чтение просроченного ключа", func(t *testing.T) {
		cs := NewCacheStore()
		cs.Put("expired", steve, -1*time.Second)

		_, found := cs.Get("expired")
		assert.False(t, found)
	})

	t.Run("Очистка просроченных ключей", func(t *testing.T) {
		cs := NewCacheStore()
		cs.Put("expired", steve, -1*time.Minute)
		cs.Put("valid", steve, 1*time.Minute)

		cs.CleanupExpired()

		assert.Equal(t, 1, cs.Len())
		_, foundValid := cs.Get("valid")
		assert.True(t, foundValid, "Действительный элемент не должен быть удален")
	})
}

func TestStartCleanupTicker(t *testing.T) {
	cs := NewCacheStore()
	cs.Put("expired", steve, 50*time.Millisecond)
	cs.Put("valid", steve, 1*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cs.StartCleanupTicker(ctx, 100*time.Millisecond)

	assert.Eventually(t, func() bool { return cs.Len() == 1 }, 2*time.Second, 20*time.Millisecond,
		"Просроченный элемент должен быть удален таймером")

	_, foundValid := cs.Get("valid")
	assert.True(t, foundValid, "Действительный элемент должен остаться")
}

func TestLineHash(t *testing.T) {
	a := LineHash("line", steve)
	assert.Len(t, a, 64)
	assert.Equal(t, a, LineHash("line", steve))
	assert.NotEqual(t, a, LineHash("other line", steve))
	assert.NotEqual(t, a, LineHash("line", uuid.Nil))
}
