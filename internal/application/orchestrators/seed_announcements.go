package orchestrators

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"futoconnect/internal/domain/announcement"
)

//go:embed seed_announcements.yaml
var defaultAnnouncementSeed []byte

// AnnouncementStoreForSeed defines the store interface needed by SeedAnnouncements.
type AnnouncementStoreForSeed interface {
	Seeded(ctx context.Context) (bool, error)
	Create(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error)
}

// seedFile is the YAML layout of a seed file. Entries are listed newest first.
type seedFile struct {
	Announcements []seedEntry `yaml:"announcements"`
}

type seedEntry struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Tag         string `yaml:"tag"`
	Time        string `yaml:"time"`
	IsUrgent    bool   `yaml:"isUrgent"`
	IsRead      bool   `yaml:"isRead"`
	IsSaved     bool   `yaml:"isSaved"`
}

// SeedAnnouncementsInput carries input for SeedAnnouncements.
type SeedAnnouncementsInput struct {
	// Data is a YAML seed document. Nil uses the embedded default set.
	Data []byte
}

// SeedAnnouncementsDeps holds dependencies for SeedAnnouncements.
type SeedAnnouncementsDeps struct {
	AnnouncementStore AnnouncementStoreForSeed
	GenerateID        func() string
}

// ParseAnnouncementSeed decodes and validates a seed document.
// PRE: none
// POST: Returns announcements in file order (newest first), each with an ID
func ParseAnnouncementSeed(data []byte, generateID func() string) ([]announcement.Announcement, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	list := make([]announcement.Announcement, 0, len(f.Announcements))
	for i, e := range f.Announcements {
		id := e.ID
		if id == "" {
			id = generateID()
		}
		a, err := announcement.New(id, announcement.Edit{
			Title:       e.Title,
			Description: e.Description,
			Category:    e.Category,
			Tag:         e.Tag,
			IsUrgent:    e.IsUrgent,
		})
		if err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		if e.Time != "" {
			a.Time = e.Time
		}
		a.IsRead = e.IsRead
		a.IsSaved = e.IsSaved
		list = append(list, a)
	}
	return list, nil
}

// ExecuteSeedAnnouncements loads the bootstrap announcements into an empty store.
// PRE: Store is migrated
// POST: If the store was empty, every seed entry is persisted and the first entry lists first;
// otherwise nothing changes. Returns the number inserted.
func ExecuteSeedAnnouncements(ctx context.Context, input SeedAnnouncementsInput, deps SeedAnnouncementsDeps) (int, error) {
	seeded, err := deps.AnnouncementStore.Seeded(ctx)
	if err != nil {
		return 0, err
	}
	if seeded {
		return 0, nil
	}

	data := input.Data
	if data == nil {
		data = defaultAnnouncementSeed
	}
	list, err := ParseAnnouncementSeed(data, deps.GenerateID)
	if err != nil {
		return 0, err
	}

	// Insert oldest first so createdAt order matches file order.
	for i := len(list) - 1; i >= 0; i-- {
		if _, err := deps.AnnouncementStore.Create(ctx, list[i]); err != nil {
			return len(list) - 1 - i, err
		}
	}

	slog.Info("seed_event", "event", "announcements_seeded", "count", len(list))
	return len(list), nil
}
