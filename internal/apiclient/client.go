// Package apiclient - клиент HTTP API сервера рейдов.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/domain"
)

const reporterHeader = "X-Reporter-UUID"

// ServerClient - клиент для взаимодействия с API бэкенд-сервера.
type ServerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewServerClient создает новый экземпляр ServerClient.
func NewServerClient(baseURL string, timeout time.Duration) *ServerClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// LineResponse - ответ на отправку строки чата.
type LineResponse struct {
	Status string            `json:"status"`
	ID     string            `json:"id,omitempty"`
	Raid   *domain.GuildRaid `json:"raid,omitempty"`
	Reason string            `json:"reason,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// RaidRecord - запись рейда на сервере.
type RaidRecord struct {
	ID        string           `json:"id"`
	Raid      domain.GuildRaid `json:"raid"`
	CreatedAt time.Time        `json:"created_at"`
}

// RaidListResponse - ответ на запрос списка рейдов.
type RaidListResponse struct {
	Raids []RaidRecord `json:"raids"`
	Count int          `json:"count"`
}

// SubmitLine отправляет JSON строки чата на сервер. Ненулевой reporter передается в заголовке.
// Ответы 200, 201, 400, 413 и 422 возвращаются как LineResponse без ошибки.
func (c *ServerClient) SubmitLine(ctx context.Context, line []byte, reporter uuid.UUID) (*LineResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/lines", bytes.NewReader(line))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if reporter != uuid.Nil {
		req.Header.Set(reporterHeader, reporter.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusBadRequest,
		http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
	default:
		return nil, unexpectedStatus(resp)
	}

	var result LineResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// ListRaids запрашивает последние рейды. limit <= 0 означает значение сервера по умолчанию.
func (c *ServerClient) ListRaids(ctx context.Context, limit int) (*RaidListResponse, error) {
	endpoint := c.baseURL + "/api/v1/raids"
	if limit > 0 {
		endpoint += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var result RaidListResponse
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRaid запрашивает рейд по идентификатору.
func (c *ServerClient) GetRaid(ctx context.Context, id string) (*RaidRecord, error) {
	var result RaidRecord
	if err := c.getJSON(ctx, c.baseURL+"/api/v1/raids/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health проверяет доступность сервера.
func (c *ServerClient) Health(ctx context.Context) error {
	var result map[string]string
	return c.getJSON(ctx, c.baseURL+"/health", &result)
}

func (c *ServerClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpectedStatus(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func unexpectedStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if msg := strings.TrimSpace(string(body)); msg != "" {
		return fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
}
