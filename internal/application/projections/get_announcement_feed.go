package projections

import (
	"context"
	"fmt"

	"futoconnect/internal/adapters/storage/announcement"
	"futoconnect/internal/application/listutil"
	domainAnnouncement "futoconnect/internal/domain/announcement"
)

// Feed views mirror the client's tabs and badges.
const (
	ViewAll    = "all"
	ViewSaved  = "saved"
	ViewUnread = "unread"
	ViewUrgent = "urgent"
)

// FeedFilterKeys are the exact-match query parameters the feed accepts.
var FeedFilterKeys = []string{"category", "tag"}

// UnknownViewError reports an unsupported feed view.
type UnknownViewError struct {
	View string
}

func (e *UnknownViewError) Error() string {
	return fmt.Sprintf("unknown feed view %q", e.View)
}

// Is makes an unknown view a validation failure.
func (e *UnknownViewError) Is(target error) bool {
	return target == domainAnnouncement.ErrValidation
}

// GetAnnouncementFeedQuery carries query parameters.
type GetAnnouncementFeedQuery struct {
	View   string // empty means ViewAll
	Params listutil.ListParams
}

// GetAnnouncementFeedResult carries one page of the feed.
type GetAnnouncementFeedResult struct {
	Items []domainAnnouncement.Announcement
	Page  listutil.PageInfo
}

// GetAnnouncementFeedDeps holds dependencies for GetAnnouncementFeed.
type GetAnnouncementFeedDeps struct {
	AnnouncementStore AnnouncementStore
}

// QueryGetAnnouncementFeed returns one page of announcements for a view.
// PRE: View is empty or one of the View constants
// POST: Items are newest first; Page.Page is clamped to the last page
func QueryGetAnnouncementFeed(ctx context.Context, query GetAnnouncementFeedQuery, deps GetAnnouncementFeedDeps) (GetAnnouncementFeedResult, error) {
	filter := announcement.ListFilter{
		Category: query.Params.Filters["category"],
		Tag:      query.Params.Filters["tag"],
		Search:   query.Params.Search,
	}
	switch query.View {
	case "", ViewAll:
	case ViewSaved:
		filter.Saved = announcement.Bool(true)
	case ViewUnread:
		filter.Read = announcement.Bool(false)
	case ViewUrgent:
		filter.Urgent = announcement.Bool(true)
	default:
		return GetAnnouncementFeedResult{}, &UnknownViewError{View: query.View}
	}

	total, err := deps.AnnouncementStore.Count(ctx, filter)
	if err != nil {
		return GetAnnouncementFeedResult{}, err
	}
	page := listutil.NewPageInfo(query.Params.Page, query.Params.PerPage, total)

	filter.Limit = page.PerPage
	filter.Offset = page.Offset()
	items, err := deps.AnnouncementStore.List(ctx, filter)
	if err != nil {
		return GetAnnouncementFeedResult{}, err
	}
	return GetAnnouncementFeedResult{Items: items, Page: page}, nil
}
