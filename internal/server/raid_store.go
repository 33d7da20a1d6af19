package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"wynn-raid-parser/internal/domain"
)

// RaidRecord представляет собой один записанный рейд
type RaidRecord struct {
	ID        string           `json:"id"`
	Raid      domain.GuildRaid `json:"raid"`
	LineHash  string           `json:"-"`
	CreatedAt time.Time        `json:"created_at"`
	ExpiresAt time.Time        `json:"-"` // Для автоматической очистки
}

// RaidStore хранит недавно извлеченные рейды и подавляет повторную запись одной и той же строки.
type RaidStore struct {
	raids  map[string]*RaidRecord
	byHash map[string]string
	mutex  sync.RWMutex
	clock  func() time.Time
}

// NewRaidStore создает новый экземпляр RaidStore
func NewRaidStore() *RaidStore {
	return &RaidStore{
		raids:  make(map[string]*RaidRecord),
		byHash: make(map[string]string),
		clock:  time.Now,
	}
}

// Add сохраняет рейд. Если строка с тем же хешем уже записана и не истекла,
// возвращается существующая запись и false.
func (rs *RaidStore) Add(raid domain.GuildRaid, lineHash string, ttl time.Duration) (RaidRecord, bool) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	now := rs.clock()
	if id, ok := rs.byHash[lineHash]; ok {
		if existing, found := rs.raids[id]; found && now.Before(existing.ExpiresAt) {
			return *existing, false
		}
	}

	record := &RaidRecord{
		ID:        uuid.NewString(),
		Raid:      raid,
		LineHash:  lineHash,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	rs.raids[record.ID] = record
	if lineHash != "" {
		rs.byHash[lineHash] = record.ID
	}
	return *record, true
}

// Get извлекает запись по ее ID
func (rs *RaidStore) Get(id string) (RaidRecord, error) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	record, exists := rs.raids[id]
	if !exists || rs.clock().After(record.ExpiresAt) {
		return RaidRecord{}, fmt.Errorf("рейд с ID %s не найден", id)
	}
	return *record, nil
}

// List возвращает не более limit записей, начиная с самых новых. limit <= 0 означает все записи.
func (rs *RaidStore) List(limit int) []RaidRecord {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	now := rs.clock()
	records := make([]RaidRecord, 0, len(rs.raids))
	for _, record := range rs.raids {
		if now.After(record.ExpiresAt) {
			continue
		}
		records = append(records, *record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

// Len возвращает количество хранимых записей, включая просроченные
func (rs *RaidStore) Len() int {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()
	return len(rs.raids)
}

// CleanupExpired удаляет просроченные записи из хранилища
func (rs *RaidStore) CleanupExpired() {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	now := rs.clock()
	for id, record := range rs.raids {
		if now.After(record.ExpiresAt) {
			delete(rs.raids, id)
			if rs.byHash[record.LineHash] == id {
				delete(rs.byHash, record.LineHash)
			}
		}
	}
}

// StartCleanupTicker запускает тикер для периодической очистки просроченных записей
func (rs *RaidStore) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rs.CleanupExpired()
			}
		}
	}()
}
