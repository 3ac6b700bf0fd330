package store

import (
	"context"
	"sort"
	"sync"

	"github.com/quizdrill/backend/internal/domain/examconfig"
	"github.com/quizdrill/backend/internal/domain/questionbank"
)

// MemoryStore keeps everything in process. It encodes the bank the same way
// SQLStore does, so both behave alike on odd input.
type MemoryStore struct {
	mu       sync.RWMutex
	bank     []byte
	config   *examconfig.Config
	sessions map[string]SessionRecord
}

func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]SessionRecord)}
}

func (m *MemoryStore) LoadBank(ctx context.Context) ([]questionbank.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.bank == nil {
		return nil, ErrNotFound
	}
	return decodeBank(m.bank)
}

func (m *MemoryStore) SaveBank(ctx context.Context, questions []questionbank.Question) error {
	data, err := encodeBank(questions)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bank = data
	return nil
}

func (m *MemoryStore) LoadExamConfig(ctx context.Context) (examconfig.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return examconfig.Config{}, ErrNotFound
	}
	return *m.config, nil
}

func (m *MemoryStore) SaveExamConfig(ctx context.Context, cfg examconfig.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg = cfg.Normalize()
	m.config = &cfg
	return nil
}

func (m *MemoryStore) SaveSessionResult(ctx context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.WrongIDs = append([]string{}, rec.WrongIDs...)
	m.sessions[rec.ID] = rec
	return nil
}

func (m *MemoryStore) ListSessionResults(ctx context.Context, limit int) ([]SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]SessionRecord, 0, len(m.sessions))
	for _, rec := range m.sessions {
		rec.WrongIDs = append([]string{}, rec.WrongIDs...)
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].FinishedAt.Equal(records[j].FinishedAt) {
			return records[i].FinishedAt.After(records[j].FinishedAt)
		}
		return records[i].ID < records[j].ID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
