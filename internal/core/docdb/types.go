// Package docdb provides the document database type constants.
package docdb

// Type represents the type of document database.
type Type string

const (
	// TypeMongoDB represents a MongoDB database.
	TypeMongoDB Type = "mongodb"
	// TypeCosmosDB represents an Azure Cosmos DB database.
	TypeCosmosDB Type = "cosmosdb"
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	// SortOrderAsc represents ascending order.
	SortOrderAsc SortOrder = "asc"
	// SortOrderDesc represents descending order.
	SortOrderDesc SortOrder = "desc"
)

// Direction returns the store's numeric sort direction.
func (o SortOrder) Direction() int {
	if o == SortOrderDesc {
		return -1
	}
	return 1
}

// IndexKind identifies how a field participates in an index.
type IndexKind string

const (
	IndexAscending  IndexKind = "ascending"
	IndexDescending IndexKind = "descending"
	IndexText       IndexKind = "text"
	IndexHashed     IndexKind = "hashed"
)
