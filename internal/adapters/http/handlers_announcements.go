package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"futoconnect/internal/application/orchestrators"
	"futoconnect/internal/application/projections"
)

// handleListAnnouncements handles GET /api/announcements.
// PRE: none
// POST: 200 with every announcement, newest first
func (s *server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := projections.QueryListAnnouncements(r.Context(), projections.GetAnnouncementsDeps{
		AnnouncementStore: s.deps.Announcements,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(list))
}

// handleGetAnnouncement handles GET /api/announcements/{id}.
func (s *server) handleGetAnnouncement(w http.ResponseWriter, r *http.Request) {
	a, err := projections.QueryGetAnnouncement(r.Context(), mux.Vars(r)["id"], projections.GetAnnouncementsDeps{
		AnnouncementStore: s.deps.Announcements,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(a))
}

// handleCreateAnnouncement handles POST /api/announcements.
// PRE: JSON body with title and description
// POST: 201 with the stored announcement
func (s *server) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	a, err := orchestrators.ExecuteCreateAnnouncement(r.Context(), orchestrators.CreateAnnouncementInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Tag:         req.Tag,
		IsUrgent:    req.IsUrgent,
	}, orchestrators.CreateAnnouncementDeps{
		AnnouncementStore: s.deps.Announcements,
		GenerateID:        s.deps.GenerateID,
		OnUrgent:          s.deps.OnUrgent,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(a))
}

// handleUpdateAnnouncement handles PATCH /api/announcements/{id}.
// PRE: JSON body with every editable field
// POST: 200 with an empty body; 404 if the id is unknown
func (s *server) handleUpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	err := orchestrators.ExecuteEditAnnouncement(r.Context(), orchestrators.EditAnnouncementInput{
		AnnouncementID: mux.Vars(r)["id"],
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Tag:            req.Tag,
		IsUrgent:       req.IsUrgent,
	}, orchestrators.EditAnnouncementDeps{AnnouncementStore: s.deps.Announcements})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleDeleteAnnouncement handles DELETE /api/announcements/{id}.
// Deleting an unknown id still answers 204.
func (s *server) handleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteAnnouncement(r.Context(), orchestrators.DeleteAnnouncementInput{
		AnnouncementID: mux.Vars(r)["id"],
	}, orchestrators.DeleteAnnouncementDeps{AnnouncementStore: s.deps.Announcements})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMarkRead handles PATCH /api/announcements/{id}/read.
func (s *server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteMarkRead(r.Context(), orchestrators.MarkReadInput{
		AnnouncementID: mux.Vars(r)["id"],
	}, orchestrators.MarkReadDeps{AnnouncementStore: s.deps.Announcements})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type toggleSavedResponse struct {
	IsSaved bool `json:"isSaved"`
}

// handleToggleSaved handles PATCH /api/announcements/{id}/toggle-save.
// POST: 200 with {"isSaved": <new value>}
func (s *server) handleToggleSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := orchestrators.ExecuteToggleSaved(r.Context(), orchestrators.ToggleSavedInput{
		AnnouncementID: mux.Vars(r)["id"],
	}, orchestrators.ToggleSavedDeps{AnnouncementStore: s.deps.Announcements})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleSavedResponse{IsSaved: saved})
}
