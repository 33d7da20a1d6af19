package mojang

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"wynn-raid-parser/internal/cache"
	"wynn-raid-parser/internal/ports"
)

const DefaultBaseURL = "https://api.mojang.com"

var (
	// ErrProfileNotFound возвращается, когда игрока с таким именем не существует.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrRateLimited возвращается, пока действует ограничение частоты запросов.
	ErrRateLimited = errors.New("profile api is rate limited")
)

// profileResponse - ответ эндпоинта /users/profiles/minecraft/{name}.
type profileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Config содержит параметры клиента профилей.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CacheTTL   time.Duration
	MaxRetries int
}

// Client разрешает имена игроков в UUID через публичный API Mojang.
// Успешные ответы кэшируются, ответ 429 переводит клиент в состояние ожидания.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	cache         *cache.CacheStore
	cacheTTL      time.Duration
	maxRetries    uint64
	retryInterval time.Duration
	clock         func() time.Time
	log           *slog.Logger

	mu             sync.RWMutex
	unhealthyUntil time.Time
}

// ClientOption определяет функциональную опцию для конфигурации клиента.
type ClientOption func(*Client)

// WithLogger устанавливает логгер для клиента.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient подменяет HTTP-клиент.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache устанавливает общее хранилище кэша.
func WithCache(cs *cache.CacheStore) ClientOption {
	return func(c *Client) {
		if cs != nil {
			c.cache = cs
		}
	}
}

// WithRetryInterval задает начальный интервал между повторными попытками.
func WithRetryInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

// NewClient создает новый экземпляр Client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	c := &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: timeout},
		cache:         cache.NewCacheStore(),
		cacheTTL:      cfg.CacheTTL,
		maxRetries:    uint64(maxRetries),
		retryInterval: 250 * time.Millisecond,
		clock:         time.Now,
		log:           slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ ports.ProfileLookup = (*Client)(nil)

// LookupUUID возвращает UUID игрока по его имени.
func (c *Client) LookupUUID(ctx context.Context, username string) (uuid.UUID, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return uuid.Nil, fmt.Errorf("%w: empty username", ErrProfileNotFound)
	}

	if item, ok := c.cache.Get(username); ok {
		c.log.DebugContext(ctx, "Profile cache hit", "username", username)
		return item.Data, nil
	}

	if err := c.checkHealthStatus(); err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	operation := func() error {
		res, err := c.fetchProfile(ctx, username)
		if err != nil {
			return err
		}
		id = res
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		c.log.WarnContext(ctx, "Profile lookup failed, retrying", "username", username, "error", err, "wait", wait)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if !errors.Is(err, ErrProfileNotFound) {
			c.log.WarnContext(ctx, "Profile lookup failed", "username", username, "error", err)
		}
		return uuid.Nil, err
	}

	c.clearRateLimit()
	if c.cacheTTL > 0 {
		c.cache.Put(username, id, c.cacheTTL)
	}
	c.log.DebugContext(ctx, "Profile resolved", "username", username, "uuid", id)
	return id, nil
}

// fetchProfile выполняет один запрос. Ошибки, которые не имеет смысла повторять,
// оборачиваются в backoff.Permanent.
func (c *Client) fetchProfile(ctx context.Context, username string) (uuid.UUID, error) {
	endpoint := c.baseURL + "/users/profiles/minecraft/" + url.PathEscape(username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return uuid.Nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return uuid.Nil, backoff.Permanent(ctx.Err())
		}
		return uuid.Nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent:
		return uuid.Nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrProfileNotFound, username))
	case resp.StatusCode == http.StatusTooManyRequests:
		// Внутри окна ожидания запросы не отправляются.
		c.markRateLimited(resp.Header.Get("Retry-After"))
		return uuid.Nil, backoff.Permanent(fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode))
	case resp.StatusCode >= http.StatusInternalServerError:
		return uuid.Nil, fmt.Errorf("profile api returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return uuid.Nil, backoff.Permanent(fmt.Errorf("profile api returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return uuid.Nil, backoff.Permanent(fmt.Errorf("failed to unmarshal profile: %w", err))
	}
	id, err := uuid.Parse(profile.ID)
	if err != nil {
		return uuid.Nil, backoff.Permanent(fmt.Errorf("invalid profile id %q: %w", profile.ID, err))
	}
	return id, nil
}

// markRateLimited переводит клиент в состояние ожидания на время из Retry-After (по умолчанию минута).
func (c *Client) markRateLimited(retryAfter string) {
	wait := time.Minute
	if d, err := time.ParseDuration(strings.TrimSpace(retryAfter) + "s"); err == nil && d > 0 {
		wait = d
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.unhealthyUntil = c.clock().Add(wait)
	c.log.Warn("Profile api rate limited, set unhealthy", "wait_duration", wait, "until", c.unhealthyUntil)
}

func (c *Client) clearRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unhealthyUntil = time.Time{}
}

// checkHealthStatus проверяет, не действует ли ограничение частоты запросов.
func (c *Client) checkHealthStatus() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.unhealthyUntil.IsZero() && c.clock().Before(c.unhealthyUntil) {
		return fmt.Errorf("%w: active until %v", ErrRateLimited, c.unhealthyUntil)
	}
	return nil
}

// Health сообщает, доступен ли клиент для новых запросов.
func (c *Client) Health(_ context.Context) error {
	return c.checkHealthStatus()
}
