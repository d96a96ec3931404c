package dto

// CreateNoteRequest represents the request body for creating or replacing a note.
type CreateNoteRequest struct {
	// ID is optional; one is generated when empty.
	ID       string   `json:"id,omitempty"`
	Title    string   `json:"title" binding:"required"`
	Body     string   `json:"body,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Priority int      `json:"priority,omitempty"`
}

// CreateNotesRequest represents a batch of notes to create.
type CreateNotesRequest struct {
	Notes []CreateNoteRequest `json:"notes" binding:"required,dive"`
}

// UpdateNoteRequest represents a partial note update. Nil fields are left unchanged.
type UpdateNoteRequest struct {
	Title    *string   `json:"title,omitempty"`
	Body     *string   `json:"body,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Priority *int      `json:"priority,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (r *UpdateNoteRequest) IsEmpty() bool {
	return r.Title == nil && r.Body == nil && r.Tags == nil && r.Priority == nil
}

// Index kinds accepted by CreateIndexRequest.
const (
	IndexKindAscending    = "ascending"
	IndexKindDescending   = "descending"
	IndexKindText         = "text"
	IndexKindHashed       = "hashed"
	IndexKindCombinedText = "combinedText"
)

// CreateIndexRequest represents the request body for creating an index.
type CreateIndexRequest struct {
	Kind   string   `json:"kind" binding:"required,oneof=ascending descending text hashed combinedText"`
	Fields []string `json:"fields"`
	Name   string   `json:"name,omitempty"`
	Unique bool     `json:"unique,omitempty"`
	Sparse bool     `json:"sparse,omitempty"`
	// ExpireAfterSeconds turns the index into a TTL index.
	ExpireAfterSeconds *int             `json:"expireAfterSeconds,omitempty"`
	DefaultLanguage    string           `json:"defaultLanguage,omitempty"`
	Weights            map[string]int32 `json:"weights,omitempty"`
}
