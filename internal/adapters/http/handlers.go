package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"futoconnect/internal/domain/announcement"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// validate checks request shapes. It is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode_response_failed", "error", err)
	}
}

// writeError writes a {"error": msg} JSON reply.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// writeStoreError maps domain error kinds to HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, announcement.ErrNotFound):
		writeError(w, http.StatusNotFound, "announcement not found")
	case errors.Is(err, announcement.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields,
// trailing data and bodies over maxBodyBytes.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: unexpected data after object")
	}
	return nil
}

// decodeAndValidate decodes a JSON body into v and checks its validate tags.
// On failure it writes a 400 and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := strictDecode(w, r, v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage turns validator errors into a short client-facing message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

// announcementRequest is the body of create and update requests.
type announcementRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"max=40"`
	Tag         string `json:"tag" validate:"max=40"`
	IsUrgent    bool   `json:"isUrgent"`
}

// announcementResponse is the wire form of an announcement.
type announcementResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tag         string    `json:"tag"`
	Time        string    `json:"time"`
	IsUrgent    bool      `json:"isUrgent"`
	IsRead      bool      `json:"isRead"`
	IsSaved     bool      `json:"isSaved"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toResponse(a announcement.Announcement) announcementResponse {
	return announcementResponse{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Tag:         a.Tag,
		Time:        a.Time,
		IsUrgent:    a.IsUrgent,
		IsRead:      a.IsRead,
		IsSaved:     a.IsSaved,
		CreatedAt:   a.CreatedAt,
	}
}

func toResponses(list []announcement.Announcement) []announcementResponse {
	out := make([]announcementResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toResponse(a))
	}
	return out
}
