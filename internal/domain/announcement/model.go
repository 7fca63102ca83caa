package announcement

import (
	"strings"
	"time"
)

// TimeJustNow is the recency label given to every freshly created announcement.
const TimeJustNow = "Just now"

// Announcement is a single university announcement.
// ID and CreatedAt are fixed at creation. IsRead only ever moves from false to true;
// IsSaved toggles freely.
type Announcement struct {
	ID          string
	Title       string
	Description string // Markdown allowed
	Category    string // open set: Academic, Social, Admin, Exam, Urgent, Events, General
	Tag         string // open set: GENERAL, EXAMS, SPORTS, RESULTS, WORKSHOP
	Time        string // display label only, never used for ordering
	IsUrgent    bool
	IsRead      bool
	IsSaved     bool
	CreatedAt   time.Time // assigned by the store, strictly increasing with insertion order
}

// Edit carries the caller-editable fields of an announcement.
type Edit struct {
	Title       string
	Description string
	Category    string
	Tag         string
	IsUrgent    bool
}

// Normalize trims surrounding whitespace from the text fields.
func (e Edit) Normalize() Edit {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Category = strings.TrimSpace(e.Category)
	e.Tag = strings.TrimSpace(e.Tag)
	return e
}

// Validate checks the required fields of an edit.
// PRE: none
// POST: Returns a *ValidationError naming the first missing field, or nil
func (e Edit) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return &ValidationError{Field: "title", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(e.Description) == "" {
		return &ValidationError{Field: "description", Reason: "cannot be empty"}
	}
	return nil
}

// New builds an unsaved announcement with creation defaults applied.
// CreatedAt stays zero; the store assigns it on insert.
// PRE: id is non-empty
// POST: Returns a validated announcement with IsRead=false, IsSaved=false, Time="Just now"
func New(id string, e Edit) (Announcement, error) {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return Announcement{}, err
	}
	return Announcement{
		ID:          id,
		Title:       e.Title,
		Description: e.Description,
		Category:    e.Category,
		Tag:         e.Tag,
		Time:        TimeJustNow,
		IsUrgent:    e.IsUrgent,
	}, nil
}

// Validate checks that the announcement has valid data.
func (a *Announcement) Validate() error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Reason: "cannot be empty"}
	}
	return a.Edit().Validate()
}

// Edit returns the editable view of the announcement.
func (a *Announcement) Edit() Edit {
	return Edit{
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Tag:         a.Tag,
		IsUrgent:    a.IsUrgent,
	}
}

// ApplyEdit overwrites the editable fields.
// PRE: none
// POST: on success only Title, Description, Category, Tag and IsUrgent change
func (a *Announcement) ApplyEdit(e Edit) error {
	e = e.Normalize()
	if err := e.Validate(); err != nil {
		return err
	}
	a.Title = e.Title
	a.Description = e.Description
	a.Category = e.Category
	a.Tag = e.Tag
	a.IsUrgent = e.IsUrgent
	return nil
}

// MarkRead sets IsRead. Calling it on a read announcement is a no-op.
func (a *Announcement) MarkRead() {
	a.IsRead = true
}

// ToggleSaved flips IsSaved and returns the new value.
func (a *Announcement) ToggleSaved() bool {
	a.IsSaved = !a.IsSaved
	return a.IsSaved
}
