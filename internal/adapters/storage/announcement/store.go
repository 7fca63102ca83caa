package announcement

import (
	"context"

	domain "futoconnect/internal/domain/announcement"
)

// Store persists Announcement state.
// Every mutating operation is atomic for a single id.
//
// Create stores IsRead, IsSaved and Time exactly as given and only assigns
// CreatedAt. Creation defaults belong to the caller (domain.New), which lets
// seeding load announcements that are already read or saved.
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error)
	Count(ctx context.Context, filter ListFilter) (int, error)
	GetByID(ctx context.Context, id string) (domain.Announcement, error)
	Create(ctx context.Context, value domain.Announcement) (domain.Announcement, error)
	Update(ctx context.Context, id string, edit domain.Edit) error
	Delete(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) error
	ToggleSaved(ctx context.Context, id string) (bool, error)
	Seeded(ctx context.Context) (bool, error)
}

// ListFilter carries filtering parameters for List and Count.
// Nil flag pointers and empty strings mean "any".
type ListFilter struct {
	Category string
	Tag      string
	Saved    *bool
	Read     *bool
	Urgent   *bool
	Search   string // case-insensitive substring of title or description
	Limit    int
	Offset   int
}

// Bool returns a pointer to b, for building filters.
func Bool(b bool) *bool {
	return &b
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MongoStore)(nil)
)
