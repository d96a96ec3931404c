// Package repository implements a generic data-access layer over a document database.
//
// Documents of any type keyed by any comparable identifier are stored in
// collections derived from the document type and an optional partition key.
// Every operation exists on two surfaces: DocumentSet[T, K] for an explicit
// identifier type and DefaultSet[T] for uuid.UUID, the latter being an alias
// of the former so that both always behave identically.
package repository

import (
	"reflect"
)

// Document is a record that exposes an identifier of type K.
// Implementations are normally pointers to structs with a `bson:"_id"` field.
type Document[K comparable] interface {
	GetID() K
	SetID(id K)
}

// CollectionNamer lets a document type choose its default collection name.
type CollectionNamer interface {
	CollectionName() string
}

// Target identifies the physical collection an operation runs against.
type Target struct {
	Type         reflect.Type
	PartitionKey string
}

// TargetOf returns the target for document type T and the given partition key.
func TargetOf[T any](partitionKey string) Target {
	return Target{Type: typeOf[T](), PartitionKey: partitionKey}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// isNil reports whether v is nil or a nil pointer, map, slice or interface.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
