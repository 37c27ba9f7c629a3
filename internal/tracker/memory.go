package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/RichMarin19/fast-life-sub000/internal/guidance"
)

// MemoryStore is an in-process Store. It backs tests and single-device
// deployments where Redis is not configured.
type MemoryStore struct {
	mu         sync.RWMutex
	lastFired  map[guidance.ActivityType]time.Time
	dailyCount map[string]int // "<type>.<dayKey>"
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lastFired:  make(map[guidance.ActivityType]time.Time),
		dailyCount: make(map[string]int),
	}
}

func (m *MemoryStore) GetLastFired(_ context.Context, activity guidance.ActivityType) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	firedAt, ok := m.lastFired[activity]
	return firedAt, ok, nil
}

func (m *MemoryStore) SetLastFired(_ context.Context, activity guidance.ActivityType, firedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFired[activity] = firedAt
	return nil
}

func (m *MemoryStore) GetDailyCount(_ context.Context, activity guidance.ActivityType, dayKey string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dailyCount[string(activity)+"."+dayKey], nil
}

func (m *MemoryStore) IncrDailyCount(_ context.Context, activity guidance.ActivityType, dayKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dailyCount[string(activity)+"."+dayKey]++
	return nil
}
