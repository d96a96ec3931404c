package repository

import (
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
)

// partitionSeparator joins a partition key and the default collection name.
const partitionSeparator = "-"

var namerType = reflect.TypeOf((*CollectionNamer)(nil)).Elem()

// Resolver maps (document type, partition key) pairs to collections of the database context.
// It keeps no state of its own beyond the database.
type Resolver struct {
	db docdb.Database
}

// NewResolver creates a resolver over the given database context.
func NewResolver(db docdb.Database) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the collection backing the target.
func (r *Resolver) Resolve(target Target) docdb.Collection {
	return r.db.Collection(CollectionName(target.Type, target.PartitionKey))
}

// CollectionName derives the physical collection name for a document type.
// An empty partition key selects the type's default collection; otherwise
// the name is "<partitionKey>-<default>".
func CollectionName(docType reflect.Type, partitionKey string) string {
	name := defaultCollectionName(docType)
	if partitionKey == "" {
		return name
	}
	return partitionKey + partitionSeparator + name
}

func defaultCollectionName(docType reflect.Type) string {
	if namer, ok := namerFor(docType); ok {
		if name := namer.CollectionName(); name != "" {
			return name
		}
	}

	for docType.Kind() == reflect.Pointer {
		docType = docType.Elem()
	}
	name := docType.Name()
	// Instantiated generic types report "Box[int]".
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return pluralize(lowerFirst(name))
}

func namerFor(docType reflect.Type) (CollectionNamer, bool) {
	switch {
	case docType.Kind() == reflect.Pointer && docType.Implements(namerType):
		return reflect.New(docType.Elem()).Interface().(CollectionNamer), true
	case docType.Kind() != reflect.Interface && docType.Implements(namerType):
		return reflect.Zero(docType).Interface().(CollectionNamer), true
	case docType.Kind() != reflect.Pointer && reflect.PointerTo(docType).Implements(namerType):
		return reflect.New(docType).Interface().(CollectionNamer), true
	}
	return nil, false
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func pluralize(s string) string {
	switch {
	case s == "":
		return s
	case strings.HasSuffix(s, "y") && len(s) > 1 && !strings.ContainsRune("aeiou", rune(s[len(s)-2])):
		return s[:len(s)-1] + "ies"
	case strings.HasSuffix(s, "s"), strings.HasSuffix(s, "x"), strings.HasSuffix(s, "z"),
		strings.HasSuffix(s, "ch"), strings.HasSuffix(s, "sh"):
		return s + "es"
	default:
		return s + "s"
	}
}
