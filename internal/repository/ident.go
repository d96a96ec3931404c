package repository

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

var (
	generatorsMu sync.RWMutex
	generators   = map[reflect.Type]func() interface{}{
		typeOf[uuid.UUID]():          func() interface{} { return uuid.New() },
		typeOf[primitive.ObjectID](): func() interface{} { return primitive.NewObjectID() },
		typeOf[string]():             func() interface{} { return uuid.NewString() },
	}
)

// RegisterIDGenerator installs the generation policy for identifier type K,
// replacing any existing one.
func RegisterIDGenerator[K comparable](generate func() K) {
	generatorsMu.Lock()
	defer generatorsMu.Unlock()

	generators[typeOf[K]()] = func() interface{} { return generate() }
}

// NewID returns a fresh identifier of type K.
// It fails with UNSUPPORTED_IDENTIFIER_TYPE when no policy is registered for K.
func NewID[K comparable]() (K, error) {
	var zero K
	t := typeOf[K]()

	generatorsMu.RLock()
	generate, ok := generators[t]
	generatorsMu.RUnlock()

	if !ok {
		return zero, domainerrors.NewUnsupportedIdentifierTypeError(t.String())
	}
	return generate().(K), nil
}
