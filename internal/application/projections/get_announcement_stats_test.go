package projections

import (
	"context"
	"errors"
	"testing"

	"futoconnect/internal/adapters/storage/announcement"
	domainAnnouncement "futoconnect/internal/domain/announcement"
)

// failingStore returns err from every call.
type failingStore struct {
	err error
}

func (f failingStore) GetByID(context.Context, string) (domainAnnouncement.Announcement, error) {
	return domainAnnouncement.Announcement{}, f.err
}

func (f failingStore) List(context.Context, announcement.ListFilter) ([]domainAnnouncement.Announcement, error) {
	return nil, f.err
}

func (f failingStore) Count(context.Context, announcement.ListFilter) (int, error) {
	return 0, f.err
}

func TestQueryGetAnnouncementStats(t *testing.T) {
	stats, err := QueryGetAnnouncementStats(context.Background(), GetAnnouncementStatsDeps{AnnouncementStore: newFeedStore(t, 12)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 12 || stats.Unread != 6 || stats.Saved != 3 || stats.Urgent != 4 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByCategory["Academic"] != 6 || stats.ByCategory["Events"] != 6 {
		t.Errorf("by category = %v", stats.ByCategory)
	}
}

func TestQueryGetAnnouncementStats_StoreError(t *testing.T) {
	boom := domainAnnouncement.WrapStorage("list", errors.New("boom"))
	_, err := QueryGetAnnouncementStats(context.Background(), GetAnnouncementStatsDeps{AnnouncementStore: failingStore{err: boom}})
	if !errors.Is(err, domainAnnouncement.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}

func TestQueryGetAnnouncement(t *testing.T) {
	deps := GetAnnouncementsDeps{AnnouncementStore: newFeedStore(t, 2)}
	a, err := QueryGetAnnouncement(context.Background(), "a01", deps)
	if err != nil || a.Title != "Notice 1" {
		t.Errorf("got %+v, %v", a, err)
	}
	if _, err := QueryGetAnnouncement(context.Background(), "", deps); !errors.Is(err, domainAnnouncement.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty id, got %v", err)
	}

	list, err := QueryListAnnouncements(context.Background(), deps)
	if err != nil || len(list) != 2 || list[0].ID != "a02" {
		t.Errorf("list = %v, %v", list, err)
	}
}
