// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/unifiedui/docrepo-service/internal/domain/models"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// NoteResponse represents a note.
type NoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteToResponse converts a note to its response form.
func NoteToResponse(note *models.Note) *NoteResponse {
	return &NoteResponse{
		ID:        note.ID.String(),
		Title:     note.Title,
		Body:      note.Body,
		Tags:      note.Tags,
		Priority:  note.Priority,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// NotesToResponse converts notes to their response form.
func NotesToResponse(notes []*models.Note) []*NoteResponse {
	result := make([]*NoteResponse, 0, len(notes))
	for _, note := range notes {
		result = append(result, NoteToResponse(note))
	}
	return result
}

// ListNotesResponse represents one page of notes.
type ListNotesResponse struct {
	Notes []*NoteResponse `json:"notes"`
	Total int64           `json:"total"`
	Limit int64           `json:"limit"`
	Skip  int64           `json:"skip"`
}

// CreateNotesResponse represents the notes created by a batch request.
type CreateNotesResponse struct {
	Notes []*NoteResponse `json:"notes"`
}

// DeleteNotesResponse reports how many notes were deleted.
type DeleteNotesResponse struct {
	Deleted int64 `json:"deleted"`
}

// NoteStatsResponse summarises the notes of a tenant.
type NoteStatsResponse struct {
	Collection      string        `json:"collection"`
	Count           int64         `json:"count"`
	TotalPriority   float64       `json:"totalPriority"`
	HighestPriority *NoteResponse `json:"highestPriority,omitempty"`
	LowestPriority  *NoteResponse `json:"lowestPriority,omitempty"`
}

// IndexResponse represents a created index.
type IndexResponse struct {
	Name string `json:"name"`
}

// ListIndexesResponse lists the indexes of a collection.
type ListIndexesResponse struct {
	Collection string   `json:"collection"`
	Indexes    []string `json:"indexes"`
}
