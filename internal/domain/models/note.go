// Package models contains the documents stored by the docrepo service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a tenant-scoped text document keyed by uuid.
// Notes of a tenant live in the "<tenantId>-notes" collection.
type Note struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	Body      string    `json:"body,omitempty" bson:"body,omitempty"`
	Tags      []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Priority  int       `json:"priority" bson:"priority"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// GetID returns the note id.
func (n *Note) GetID() uuid.UUID { return n.ID }

// SetID sets the note id.
func (n *Note) SetID(id uuid.UUID) { n.ID = id }

// NewNote creates a note without an id; one is assigned when it is stored.
func NewNote(title, body string, tags []string, priority int) *Note {
	now := time.Now().UTC()
	return &Note{
		Title:     title,
		Body:      body,
		Tags:      tags,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
