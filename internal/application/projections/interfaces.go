package projections

import (
	"context"

	"futoconnect/internal/adapters/storage/announcement"
	domainAnnouncement "futoconnect/internal/domain/announcement"
)

// AnnouncementStore interface for announcement queries.
type AnnouncementStore interface {
	GetByID(ctx context.Context, id string) (domainAnnouncement.Announcement, error)
	List(ctx context.Context, filter announcement.ListFilter) ([]domainAnnouncement.Announcement, error)
	Count(ctx context.Context, filter announcement.ListFilter) (int, error)
}
