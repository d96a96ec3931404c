package models

import (
	"time"
)

// AuditAction is the kind of mutation an audit entry records.
type AuditAction string

const (
	// AuditActionCreate records a created document.
	AuditActionCreate AuditAction = "create"
	// AuditActionUpdate records an updated document.
	AuditActionUpdate AuditAction = "update"
	// AuditActionDelete records deleted documents.
	AuditActionDelete AuditAction = "delete"
	// AuditActionIndex records an index change.
	AuditActionIndex AuditAction = "index"
)

// AuditEntry records one mutation made through the API.
// Entries are string keyed and stored in the shared "auditEntries" collection.
type AuditEntry struct {
	ID         string      `json:"id" bson:"_id"`
	TenantID   string      `json:"tenantId" bson:"tenantId"`
	Action     AuditAction `json:"action" bson:"action"`
	Collection string      `json:"collection" bson:"collection"`
	// Subject is the affected document id or index name.
	Subject    string    `json:"subject,omitempty" bson:"subject,omitempty"`
	Count      int64     `json:"count,omitempty" bson:"count,omitempty"`
	RecordedAt time.Time `json:"recordedAt" bson:"recordedAt"`
}

// GetID returns the entry id.
func (a *AuditEntry) GetID() string { return a.ID }

// SetID sets the entry id.
func (a *AuditEntry) SetID(id string) { a.ID = id }

// NewAuditEntry creates an audit entry stamped with the current time.
func NewAuditEntry(tenantID string, action AuditAction, collection, subject string, count int64) *AuditEntry {
	return &AuditEntry{
		TenantID:   tenantID,
		Action:     action,
		Collection: collection,
		Subject:    subject,
		Count:      count,
		RecordedAt: time.Now().UTC(),
	}
}
