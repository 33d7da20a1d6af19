package mojang

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wynn-raid-parser/internal/cache"
)

const notchID = "069a79f444e94726a5befca90e38aaf5"

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		BaseURL:    srv.URL + "/",
		Timeout:    time.Second,
		CacheTTL:   time.Minute,
		MaxRetries: maxRetries,
	},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRetryInterval(time.Millisecond),
	)
	return c, &calls
}

func TestLookupUUID(t *testing.T) {
	ctx := context.Background()

	t.Run("успешное разрешение и кэширование", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/profiles/minecraft/Notch", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"` + notchID + `","name":"Notch"}`))
		}, 0)

		id, err := c.LookupUUID(ctx, "Notch")
		require.NoError(t, err)
		assert.Equal(t, uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"), id)

		// Повторный запрос в другом регистре обслуживается из кэша.
		id2, err := c.LookupUUID(ctx, "notch")
		require.NoError(t, err)
		assert.Equal(t, id, id2)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	})

	t.Run("игрок не найден", func(t *testing.T) {
		for _, status := range []int{http.StatusNotFound, http.StatusNoContent} {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}, 3)
			_, err := c.LookupUUID(ctx, "Ghost")
			assert.ErrorIs(t, err, ErrProfileNotFound)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls), "404 не должен повторяться")
		}
	})

	t.Run("повтор после ошибки сервера", func(t *testing.T) {
		var n int32
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&n, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"id":"` + notchID + `","name":"Notch"}`))
		}, 3)

		id, err := c.LookupUUID(ctx, "Notch")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("исчерпание попыток", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}, 2)

		_, err := c.LookupUUID(ctx, "Notch")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	})

	t.Run("429 переводит клиент в ожидание", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		}, 3)

		_, err := c.LookupUUID(ctx, "Notch")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.ErrorIs(t, c.Health(ctx), ErrRateLimited)
		// 429 не повторяется даже при оставшихся попытках.
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))

		// Пока действует ожидание, запросы не отправляются.
		_, err = c.LookupUUID(ctx, "Jeb")
		assert.ErrorIs(t, err, ErrRateLimited)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))

		c.clock = func() time.Time { return time.Now().Add(time.Minute) }
		assert.NoError(t, c.Health(ctx))
	})

	t.Run("некорректный ответ", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"not-a-uuid"}`))
		}, 2)
		_, err := c.LookupUUID(ctx, "Notch")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid profile id")
	})

	t.Run("пустое имя", func(t *testing.T) {
		c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, 0)
		_, err := c.LookupUUID(ctx, "  ")
		assert.ErrorIs(t, err, ErrProfileNotFound)
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})

	t.Run("общий кэш", func(t *testing.T) {
		shared := cache.NewCacheStore()
		want := uuid.New()
		shared.Put("Cached", want, time.Minute)

		c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, WithCache(shared))
		id, err := c.LookupUUID(ctx, "Cached")
		require.NoError(t, err)
		assert.Equal(t, want, id)
	})
}
