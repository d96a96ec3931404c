package repository

import (
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// Formatter assigns identifiers to documents that do not carry one yet.
//
// A document whose identifier equals the zero value of K is treated as
// unidentified. A caller that deliberately stores the zero value (for example
// an empty string or uuid.Nil) therefore gets a generated identifier instead.
type Formatter[K comparable] struct{}

// Format assigns a new identifier to doc when its current one is the zero value.
// Already identified documents are left untouched.
func (Formatter[K]) Format(doc Document[K]) error {
	if isNil(doc) {
		return domainerrors.NewArgumentNullError("document")
	}

	var zero K
	if doc.GetID() != zero {
		return nil
	}

	id, err := NewID[K]()
	if err != nil {
		return err
	}
	doc.SetID(id)
	return nil
}
