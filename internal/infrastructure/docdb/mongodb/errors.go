package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// Server error codes the repository layer distinguishes.
const (
	codeIndexNotFound             = 27
	codeDocumentValidationFailure = 121
)

// classify tags a driver error with the domain taxonomy. Errors it does not
// recognise are returned untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return docdb.ErrNoDocuments
	}
	if mongo.IsDuplicateKeyError(err) {
		return domainerrors.NewWriteConflictError(err)
	}
	if hasServerErrorCode(err, codeDocumentValidationFailure) {
		return domainerrors.NewStoreValidationError(err)
	}

	var selectionErr topology.ServerSelectionError
	if errors.As(err, &selectionErr) ||
		errors.Is(err, mongo.ErrClientDisconnected) ||
		mongo.IsNetworkError(err) {
		return domainerrors.NewConnectionError(err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if mongo.IsTimeout(err) {
		return domainerrors.NewTimeoutError(op, err)
	}

	return err
}

// classifyDrop maps a missing index to a recoverable error before falling back to classify.
func classifyDrop(name string, err error) error {
	if err == nil {
		return nil
	}
	if isIndexNotFound(err) {
		return domainerrors.NewNotFoundOnDropError(name, err)
	}
	return fmt.Errorf("failed to drop index %s: %w", name, classify("drop index", err))
}

func isIndexNotFound(err error) bool {
	if hasServerErrorCode(err, codeIndexNotFound) {
		return true
	}
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Name == "IndexNotFound"
}

func hasServerErrorCode(err error, code int) bool {
	var serverErr mongo.ServerError
	return errors.As(err, &serverErr) && serverErr.HasErrorCode(code)
}
