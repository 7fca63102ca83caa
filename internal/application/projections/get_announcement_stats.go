package projections

import (
	"context"

	"futoconnect/internal/adapters/storage/announcement"
)

// AnnouncementStats are the counts shown on the admin analytics panel.
type AnnouncementStats struct {
	Total      int            `json:"total"`
	Unread     int            `json:"unread"`
	Saved      int            `json:"saved"`
	Urgent     int            `json:"urgent"`
	ByCategory map[string]int `json:"byCategory"`
}

// GetAnnouncementStatsDeps holds dependencies for GetAnnouncementStats.
type GetAnnouncementStatsDeps struct {
	AnnouncementStore AnnouncementStore
}

// QueryGetAnnouncementStats aggregates the announcement collection.
// PRE: none
// POST: Total equals the sum of ByCategory; an empty category is counted under ""
func QueryGetAnnouncementStats(ctx context.Context, deps GetAnnouncementStatsDeps) (AnnouncementStats, error) {
	list, err := deps.AnnouncementStore.List(ctx, announcement.ListFilter{})
	if err != nil {
		return AnnouncementStats{}, err
	}

	stats := AnnouncementStats{Total: len(list), ByCategory: make(map[string]int)}
	for _, a := range list {
		if !a.IsRead {
			stats.Unread++
		}
		if a.IsSaved {
			stats.Saved++
		}
		if a.IsUrgent {
			stats.Urgent++
		}
		stats.ByCategory[a.Category]++
	}
	return stats, nil
}
