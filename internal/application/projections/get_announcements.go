package projections

import (
	"context"

	"futoconnect/internal/adapters/storage/announcement"
	domainAnnouncement "futoconnect/internal/domain/announcement"
)

// GetAnnouncementsDeps holds dependencies for the plain announcement queries.
type GetAnnouncementsDeps struct {
	AnnouncementStore AnnouncementStore
}

// QueryListAnnouncements returns every announcement.
// PRE: none
// POST: Returns all announcements newest first; never nil
func QueryListAnnouncements(ctx context.Context, deps GetAnnouncementsDeps) ([]domainAnnouncement.Announcement, error) {
	return deps.AnnouncementStore.List(ctx, announcement.ListFilter{})
}

// QueryGetAnnouncement returns a single announcement.
// PRE: id is non-empty
// POST: Returns the announcement or ErrNotFound
func QueryGetAnnouncement(ctx context.Context, id string, deps GetAnnouncementsDeps) (domainAnnouncement.Announcement, error) {
	if id == "" {
		return domainAnnouncement.Announcement{}, domainAnnouncement.ErrNotFound
	}
	return deps.AnnouncementStore.GetByID(ctx, id)
}
