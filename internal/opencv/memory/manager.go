package memory

import (
	"sort"
	"sync"
	"time"
)

// Manager implements safe.MemoryTracker. It keeps a record of every live Mat
// so leaks show up in the session's debug logs and in tests.
type Manager struct {
	allocations map[uint64]*AllocationRecord
	mu          sync.RWMutex
	stats       Stats
}

type AllocationRecord struct {
	Tag       string
	CreatedAt time.Time
	Size      int64
}

type Stats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakMats       int64
}

func NewManager() *Manager {
	return &Manager{
		allocations: make(map[uint64]*AllocationRecord),
	}
}

func (m *Manager) TrackAllocation(id uint64, size int64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.allocations[id] = &AllocationRecord{
		Tag:       tag,
		CreatedAt: time.Now(),
		Size:      size,
	}
	m.stats.TotalAllocated += size
	m.stats.ActiveMats++
	if m.stats.ActiveMats > m.stats.PeakMats {
		m.stats.PeakMats = m.stats.ActiveMats
	}
}

func (m *Manager) TrackDeallocation(id uint64, tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.allocations[id]
	if !ok {
		return
	}
	delete(m.allocations, id)
	m.stats.TotalReleased += record.Size
	m.stats.ActiveMats--
}

func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// LiveBytes is the number of bytes held by Mats that have not been closed.
func (m *Manager) LiveBytes() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.TotalAllocated - m.stats.TotalReleased
}

// LiveTags lists the tags of every Mat still open, oldest first.
func (m *Manager) LiveTags() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*AllocationRecord, 0, len(m.allocations))
	for _, record := range m.allocations {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	tags := make([]string, len(records))
	for i, record := range records {
		tags[i] = record.Tag
	}
	return tags
}
