package calls

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory call record repository for tests and early
// development. It mirrors the PostgresRepo behavior, including the room_id
// uniqueness constraint and guarded status updates.
type MemoryRepo struct {
	mu      sync.Mutex
	byID    map[string]CallRecord
	byRoom  map[string]string // room_id -> call id
	ordered []string          // insertion order, oldest first
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   map[string]CallRecord{},
		byRoom: map[string]string{},
	}
}

func (m *MemoryRepo) Insert(ctx context.Context, rec CallRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[rec.ID]; ok {
		return fmt.Errorf("duplicate call id %s", rec.ID)
	}
	if _, ok := m.byRoom[rec.RoomID]; ok {
		return fmt.Errorf("duplicate room id %s", rec.RoomID)
	}
	m.byID[rec.ID] = rec
	m.byRoom[rec.RoomID] = rec.ID
	m.ordered = append(m.ordered, rec.ID)
	return nil
}

func (m *MemoryRepo) GetByID(ctx context.Context, id string) (CallRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return CallRecord{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryRepo) GetByRoomID(ctx context.Context, roomID string) (CallRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byRoom[roomID]
	if !ok {
		return CallRecord{}, ErrNotFound
	}
	return m.byID[id], nil
}

func (m *MemoryRepo) UpdateGuarded(ctx context.Context, rec CallRecord, prevStatus Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[rec.ID]
	if !ok || cur.Status != prevStatus {
		return false, nil
	}
	// room_id and creation fields are immutable.
	rec.RoomID = cur.RoomID
	rec.CreatedAt = cur.CreatedAt
	rec.Metadata = cur.Metadata
	m.byID[rec.ID] = rec
	return true, nil
}

func (m *MemoryRepo) FindActiveByPair(ctx context.Context, userA, userB string) (CallRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.ordered) - 1; i >= 0; i-- {
		rec := m.byID[m.ordered[i]]
		if rec.Status.IsTerminal() {
			continue
		}
		if (rec.InitiatorID == userA && rec.ReceiverID == userB) ||
			(rec.InitiatorID == userB && rec.ReceiverID == userA) {
			return rec, true, nil
		}
	}
	return CallRecord{}, false, nil
}

func (m *MemoryRepo) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]CallRecord, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]CallRecord, 0)
	for _, id := range m.ordered {
		rec := m.byID[id]
		if rec.InitiatorID == userID || rec.ReceiverID == userID {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return []CallRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MemoryRepo) UserStats(ctx context.Context, userID string) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{UserID: userID, ByStatus: map[Status]int{}}
	for _, id := range m.ordered {
		rec := m.byID[id]
		if rec.InitiatorID != userID && rec.ReceiverID != userID {
			continue
		}
		st.TotalCalls++
		st.TotalDurationSeconds += rec.DurationSeconds
		st.ByStatus[rec.Status]++
	}
	return st, nil
}

func (m *MemoryRepo) SetRecording(ctx context.Context, id, url string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.RecordingURL = url
	rec.HasRecording = true
	rec.UpdatedAt = now
	m.byID[id] = rec
	return nil
}

func (m *MemoryRepo) SetQuality(ctx context.Context, id string, q Quality, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.Quality = q
	rec.UpdatedAt = now
	m.byID[id] = rec
	return nil
}

func (m *MemoryRepo) MarkScreenShare(ctx context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	rec.HasScreenShare = true
	rec.UpdatedAt = now
	m.byID[id] = rec
	return nil
}
