package announcement

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "futoconnect/internal/domain/announcement"
)

// MemoryStore implements Store in process memory. It is used by --store=memory
// and by tests that do not need SQL.
type MemoryStore struct {
	mu    sync.Mutex
	byID  map[string]*domain.Announcement
	order []string // insertion order, oldest first
	last  time.Time
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*domain.Announcement), now: time.Now}
}

// List returns announcements matching the filter, newest first.
func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]domain.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []domain.Announcement{}
	skipped := 0
	for i := len(s.order) - 1; i >= 0; i-- {
		a := s.byID[s.order[i]]
		if !matches(a, filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		list = append(list, *a)
		if filter.Limit > 0 && len(list) == filter.Limit {
			break
		}
	}
	return list, nil
}

// Count returns the number of announcements matching the filter.
func (s *MemoryStore) Count(_ context.Context, filter ListFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, a := range s.byID {
		if matches(a, filter) {
			n++
		}
	}
	return n, nil
}

// GetByID retrieves an announcement by ID.
func (s *MemoryStore) GetByID(_ context.Context, id string) (domain.Announcement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return domain.Announcement{}, domain.ErrNotFound
	}
	return *a, nil
}

// Create inserts a new announcement and assigns its createdAt.
func (s *MemoryStore) Create(_ context.Context, value domain.Announcement) (domain.Announcement, error) {
	if err := value.Validate(); err != nil {
		return domain.Announcement{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[value.ID]; exists {
		return domain.Announcement{}, domain.WrapStorage("create", fmt.Errorf("duplicate id %q", value.ID))
	}
	stamp := s.now().UTC()
	if !stamp.After(s.last) {
		stamp = s.last.Add(time.Nanosecond)
	}
	s.last = stamp
	value.CreatedAt = stamp

	stored := value
	s.byID[value.ID] = &stored
	s.order = append(s.order, value.ID)
	return value, nil
}

// Update overwrites the editable fields of an announcement.
func (s *MemoryStore) Update(_ context.Context, id string, edit domain.Edit) error {
	edit = edit.Normalize()
	if err := edit.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	return a.ApplyEdit(edit)
}

// Delete removes an announcement by ID. An absent id is not an error.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return nil
	}
	delete(s.byID, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// MarkRead sets isRead on an announcement.
func (s *MemoryStore) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.MarkRead()
	return nil
}

// ToggleSaved flips isSaved and returns the new value.
func (s *MemoryStore) ToggleSaved(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	return a.ToggleSaved(), nil
}

// Seeded reports whether the store holds at least one announcement.
func (s *MemoryStore) Seeded(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID) > 0, nil
}

func matches(a *domain.Announcement, filter ListFilter) bool {
	if filter.Category != "" && a.Category != filter.Category {
		return false
	}
	if filter.Tag != "" && a.Tag != filter.Tag {
		return false
	}
	if filter.Saved != nil && a.IsSaved != *filter.Saved {
		return false
	}
	if filter.Read != nil && a.IsRead != *filter.Read {
		return false
	}
	if filter.Urgent != nil && a.IsUrgent != *filter.Urgent {
		return false
	}
	if filter.Search != "" {
		q := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Description), q) {
			return false
		}
	}
	return true
}
