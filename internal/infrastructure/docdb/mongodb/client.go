// Package mongodb provides MongoDB client implementation.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
)

// defaultConnectTimeout bounds connection establishment when the config leaves it unset.
const defaultConnectTimeout = 10 * time.Second

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client   *mongo.Client
	database *Database
}

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI            string
	DatabaseName   string
	ConnectTimeout time.Duration
}

// NewClient creates a new MongoDB client.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	timeout := config.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout).
		SetRegistry(NewRegistry())
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", domainerrors.NewConnectionError(err))
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", domainerrors.NewConnectionError(err))
	}

	return NewClientFromMongo(client, config.DatabaseName), nil
}

// NewClientFromMongo wraps an already connected mongo client.
// The client should be configured with NewRegistry for UUID identifiers to be stored as subtype 4.
func NewClientFromMongo(client *mongo.Client, databaseName string) *Client {
	return &Client{
		client:   client,
		database: NewDatabase(client.Database(databaseName)),
	}
}

// Database returns the database interface.
func (c *Client) Database() docdb.Database {
	return c.database
}

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", classify("ping", err))
	}
	return nil
}

// Close closes the MongoDB connection.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
