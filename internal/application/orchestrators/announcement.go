package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"futoconnect/internal/domain/announcement"
)

// AnnouncementStoreForOrchestrator defines the store interface needed by announcement orchestrators.
type AnnouncementStoreForOrchestrator interface {
	Create(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error)
	Update(ctx context.Context, id string, edit announcement.Edit) error
	Delete(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) error
	ToggleSaved(ctx context.Context, id string) (bool, error)
}

var errIDRequired = &announcement.ValidationError{Field: "id", Reason: "is required"}

// --- Create Announcement ---

// CreateAnnouncementInput carries input for the create announcement orchestrator.
type CreateAnnouncementInput struct {
	Title       string
	Description string
	Category    string
	Tag         string
	IsUrgent    bool
}

// CreateAnnouncementDeps holds dependencies for CreateAnnouncement.
type CreateAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
	GenerateID        func() string
	// OnUrgent, if set, is called with every created announcement that has IsUrgent.
	// It must not block.
	OnUrgent func(announcement.Announcement)
}

// ExecuteCreateAnnouncement creates a new announcement.
// PRE: Title and Description are non-empty after trimming
// POST: Announcement persisted with a fresh ID, Time="Just now", IsRead=false, IsSaved=false
// and a store-assigned CreatedAt; urgent announcements are handed to OnUrgent
func ExecuteCreateAnnouncement(ctx context.Context, input CreateAnnouncementInput, deps CreateAnnouncementDeps) (announcement.Announcement, error) {
	a, err := announcement.New(deps.GenerateID(), announcement.Edit{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Tag:         input.Tag,
		IsUrgent:    input.IsUrgent,
	})
	if err != nil {
		return announcement.Announcement{}, err
	}

	created, err := deps.AnnouncementStore.Create(ctx, a)
	if err != nil {
		return announcement.Announcement{}, err
	}

	slog.Info("announcement_event", "event", "announcement_created", "announcement_id", created.ID,
		"category", created.Category, "is_urgent", created.IsUrgent)
	if created.IsUrgent && deps.OnUrgent != nil {
		deps.OnUrgent(created)
	}
	return created, nil
}

// --- Edit Announcement ---

// EditAnnouncementInput carries input for the edit announcement orchestrator.
// All editable fields are overwritten.
type EditAnnouncementInput struct {
	AnnouncementID string
	Title          string
	Description    string
	Category       string
	Tag            string
	IsUrgent       bool
}

// EditAnnouncementDeps holds dependencies for EditAnnouncement.
type EditAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
}

// ExecuteEditAnnouncement overwrites the editable fields of an existing announcement.
// PRE: AnnouncementID is non-empty; Title and Description are non-empty after trimming
// POST: Fields replaced; ID, CreatedAt, IsRead and IsSaved unchanged; ErrNotFound if absent
func ExecuteEditAnnouncement(ctx context.Context, input EditAnnouncementInput, deps EditAnnouncementDeps) error {
	if input.AnnouncementID == "" {
		return errIDRequired
	}
	edit := announcement.Edit{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Tag:         input.Tag,
		IsUrgent:    input.IsUrgent,
	}.Normalize()
	if err := edit.Validate(); err != nil {
		return err
	}

	if err := deps.AnnouncementStore.Update(ctx, input.AnnouncementID, edit); err != nil {
		return err
	}

	slog.Info("announcement_event", "event", "announcement_edited", "announcement_id", input.AnnouncementID)
	return nil
}

// --- Delete Announcement ---

// DeleteAnnouncementInput carries input for the delete announcement orchestrator.
type DeleteAnnouncementInput struct {
	AnnouncementID string
}

// DeleteAnnouncementDeps holds dependencies for DeleteAnnouncement.
type DeleteAnnouncementDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
}

// ExecuteDeleteAnnouncement permanently removes an announcement.
// Deleting an absent id succeeds.
// PRE: AnnouncementID is non-empty
// POST: No announcement with the id remains
func ExecuteDeleteAnnouncement(ctx context.Context, input DeleteAnnouncementInput, deps DeleteAnnouncementDeps) error {
	if input.AnnouncementID == "" {
		return errIDRequired
	}
	if err := deps.AnnouncementStore.Delete(ctx, input.AnnouncementID); err != nil {
		return err
	}
	slog.Info("announcement_event", "event", "announcement_deleted", "announcement_id", input.AnnouncementID)
	return nil
}

// --- Mark Read ---

// MarkReadInput carries input for the mark-read orchestrator.
type MarkReadInput struct {
	AnnouncementID string
}

// MarkReadDeps holds dependencies for MarkRead.
type MarkReadDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
}

// ExecuteMarkRead marks an announcement as read. Repeating it is a no-op.
// PRE: AnnouncementID is non-empty
// POST: IsRead is true; ErrNotFound if absent
func ExecuteMarkRead(ctx context.Context, input MarkReadInput, deps MarkReadDeps) error {
	if input.AnnouncementID == "" {
		return errIDRequired
	}
	if err := deps.AnnouncementStore.MarkRead(ctx, input.AnnouncementID); err != nil {
		return err
	}
	slog.Debug("announcement_event", "event", "announcement_read", "announcement_id", input.AnnouncementID)
	return nil
}

// --- Toggle Saved ---

// ToggleSavedInput carries input for the toggle-saved orchestrator.
type ToggleSavedInput struct {
	AnnouncementID string
}

// ToggleSavedDeps holds dependencies for ToggleSaved.
type ToggleSavedDeps struct {
	AnnouncementStore AnnouncementStoreForOrchestrator
}

// ExecuteToggleSaved flips the saved flag and returns its new value.
// PRE: AnnouncementID is non-empty
// POST: IsSaved negated atomically; ErrNotFound if absent
func ExecuteToggleSaved(ctx context.Context, input ToggleSavedInput, deps ToggleSavedDeps) (bool, error) {
	if input.AnnouncementID == "" {
		return false, errIDRequired
	}
	saved, err := deps.AnnouncementStore.ToggleSaved(ctx, input.AnnouncementID)
	if err != nil {
		if !errors.Is(err, announcement.ErrNotFound) {
			slog.Error("announcement_event", "event", "toggle_saved_failed", "announcement_id", input.AnnouncementID, "error", err)
		}
		return false, err
	}
	slog.Debug("announcement_event", "event", "announcement_save_toggled", "announcement_id", input.AnnouncementID, "is_saved", saved)
	return saved, nil
}
