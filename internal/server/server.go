package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"wynn-raid-parser/internal/cache"
	"wynn-raid-parser/internal/domain"
	"wynn-raid-parser/internal/pkg/config"
	"wynn-raid-parser/internal/server/usecase"
)

const (
	// ReporterHeader позволяет клиенту указать наблюдателя для конкретной строки.
	ReporterHeader = "X-Reporter-UUID"

	defaultListLimit = 50
	maxListLimit     = 1000
)

// LineProcessor определяет интерфейс для варианта использования, который обрабатывает строки чата.
type LineProcessor interface {
	ProcessLine(ctx context.Context, data []byte, reporterOverride uuid.UUID) (usecase.LineResult, error)
}

// HealthChecker сообщает о состоянии внешней зависимости.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	cfg        *config.Config
	raidStore  *RaidStore
	cacheStore *cache.CacheStore
	processor  LineProcessor
	profiles   HealthChecker
	log        *slog.Logger

	stopCleanup context.CancelFunc
}

// Option определяет функциональную опцию для Server.
type Option func(*Server)

// WithLogger устанавливает логгер сервера.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithProfileHealth подключает проверку клиента профилей к /health.
func WithProfileHealth(h HealthChecker) Option {
	return func(s *Server) {
		s.profiles = h
	}
}

type lineResponse struct {
	Status string            `json:"status"`
	ID     string            `json:"id,omitempty"`
	Raid   *domain.GuildRaid `json:"raid,omitempty"`
	Reason string            `json:"reason,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// New создает новый экземпляр Server
func New(cfg *config.Config, processor LineProcessor, raidStore *RaidStore, cacheStore *cache.CacheStore, opts ...Option) (*Server, error) {
	if processor == nil {
		return nil, errors.New("line processor is required")
	}

	s := &Server{
		cfg:        cfg,
		raidStore:  raidStore,
		cacheStore: cacheStore,
		processor:  processor,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.Logger)
	chiRouter.Use(middleware.Recoverer)

	chiRouter.Get("/health", s.handleHealth)

	// Маршруты API
	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Post("/lines", s.handleLine)
		r.Get("/raids", s.handleListRaids)
		r.Get("/raids/{raidID}", s.handleGetRaid)
	})

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Запуск тикеров для очистки просроченных рейдов и элементов кэша
	ctx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel
	if interval := cfg.Processing.CleanupInterval; interval > 0 {
		s.raidStore.StartCleanupTicker(ctx, interval)
		if s.cacheStore != nil {
			s.cacheStore.StartCleanupTicker(ctx, interval)
		}
	}

	return s, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.profiles != nil {
		if err := s.profiles.Health(r.Context()); err != nil {
			// Строки с явным UUID наблюдателя обрабатываются и без клиента профилей.
			resp["profile_lookup"] = err.Error()
		} else {
			resp["profile_lookup"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var override uuid.UUID
	if raw := r.Header.Get(ReporterHeader); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, lineResponse{Status: "error", Error: "invalid " + ReporterHeader + " header"})
			return
		}
		override = id
	}

	body := io.Reader(r.Body)
	if limit := s.cfg.Processing.MaxLineBytes; limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, lineResponse{Status: "error", Error: usecase.ErrLineTooLarge.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, lineResponse{Status: "error", Error: "failed to read request body"})
		return
	}

	result, err := s.processor.ProcessLine(ctx, data, override)
	if err != nil {
		s.writeLineError(w, r, err)
		return
	}

	record, added := s.raidStore.Add(result.Raid, result.LineHash, s.cfg.Processing.RaidTTL)
	if !added {
		s.log.InfoContext(ctx, "Duplicate raid line ignored", "raid_id", record.ID, "request_id", middleware.GetReqID(ctx))
		writeJSON(w, http.StatusOK, lineResponse{Status: "duplicate", ID: record.ID, Raid: &record.Raid})
		return
	}

	s.log.InfoContext(ctx, "Guild raid recorded",
		"raid_id", record.ID,
		"raid", record.Raid.Type.Code(),
		"request_id", middleware.GetReqID(ctx),
	)
	writeJSON(w, http.StatusCreated, lineResponse{Status: "recorded", ID: record.ID, Raid: &record.Raid})
}

// writeLineError переводит ошибку обработки строки в HTTP-ответ.
func (s *Server) writeLineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrLineTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, lineResponse{Status: "error", Error: err.Error()})
		return
	case errors.Is(err, usecase.ErrInvalidLine):
		writeJSON(w, http.StatusBadRequest, lineResponse{Status: "error", Error: err.Error()})
		return
	}

	reason := domain.ReasonOf(err)
	resp := lineResponse{Reason: reason.String(), Error: err.Error()}
	switch reason {
	case domain.ReasonNotARaidLine:
		writeJSON(w, http.StatusOK, lineResponse{Status: "ignored", Reason: reason.String()})
	case domain.ReasonUnknownRaidType, domain.ReasonMalformedNumber:
		resp.Status = "rejected"
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	case domain.ReasonMissingLocalPlayer:
		resp.Status = "error"
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		s.log.ErrorContext(r.Context(), "Failed to process line", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, lineResponse{Status: "error", Error: "internal error"})
	}
}

func (s *Server) handleListRaids(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Некорректный параметр limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxListLimit)
	}

	records := s.raidStore.List(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"raids": records,
		"count": len(records),
	})
}

func (s *Server) handleGetRaid(w http.ResponseWriter, r *http.Request) {
	raidID := chi.URLParam(r, "raidID")

	record, err := s.raidStore.Get(raidID)
	if err != nil {
		http.Error(w, "Рейд не найден", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера и останавливает фоновую очистку
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Завершение работы HTTP-сервера")
	s.stopCleanup()
	return s.HTTPServer.Shutdown(ctx)
}
