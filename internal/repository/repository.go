package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/unifiedui/docrepo-service/internal/core/cache"
	"github.com/unifiedui/docrepo-service/internal/core/docdb"
	domainerrors "github.com/unifiedui/docrepo-service/internal/domain/errors"
	"github.com/unifiedui/docrepo-service/internal/pkg/encryption"
	"github.com/unifiedui/docrepo-service/internal/pkg/lazy"
)

// Option configures a Repository.
type Option func(*settings)

type settings struct {
	logger   zerolog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
	sealer   encryption.Encryptor
}

// WithLogger sets the logger used for component construction and index administration.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithCache enables the read-through document cache for GetByID.
// A ttl of 0 uses the cache's default expiration.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *settings) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithCacheEncryption seals cached documents with enc before they leave the process.
// It has no effect without WithCache.
func WithCacheEncryption(enc encryption.Encryptor) Option {
	return func(s *settings) {
		s.sealer = enc
	}
}

// Repository is the entry point for documents keyed by K.
// It is safe for concurrent use; its components are built on first use and
// shared for the repository's lifetime.
type Repository[K comparable] struct {
	resolver  *Resolver
	formatter Formatter[K]
	cache     *documentCache
	logger    zerolog.Logger

	creator lazy.Value[Creator[K]]
	eraser  lazy.Value[Eraser[K]]
	updater lazy.Value[Updater[K]]
	indexes lazy.Value[IndexManager]
}

// New creates a repository for identifier type K over the database context db.
func New[K comparable](db docdb.Database, opts ...Option) (*Repository[K], error) {
	if isNil(db) {
		return nil, domainerrors.NewArgumentNullError("database")
	}

	s := settings{
		logger: log.Logger.With().Str("component", "repository").Logger(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	r := &Repository[K]{
		resolver: NewResolver(db),
		logger:   s.logger,
	}
	if s.cache != nil {
		r.cache = &documentCache{store: s.cache, ttl: s.cacheTTL, sealer: s.sealer, logger: s.logger}
	}
	return r, nil
}

// GUIDRepository is a repository whose documents are keyed by uuid.UUID.
type GUIDRepository = Repository[uuid.UUID]

// NewDefault creates a repository keyed by uuid.UUID.
func NewDefault(db docdb.Database, opts ...Option) (*GUIDRepository, error) {
	return New[uuid.UUID](db, opts...)
}

// Resolver returns the collection resolver shared by all components.
func (r *Repository[K]) Resolver() *Resolver {
	return r.resolver
}

// Creator returns the shared Creator, building it on first use.
func (r *Repository[K]) Creator() *Creator[K] {
	return r.creator.Get(func() *Creator[K] {
		r.logger.Debug().Msg("creator initialized")
		return &Creator[K]{resolver: r.resolver, formatter: r.formatter}
	})
}

// Eraser returns the shared Eraser, building it on first use.
func (r *Repository[K]) Eraser() *Eraser[K] {
	return r.eraser.Get(func() *Eraser[K] {
		r.logger.Debug().Msg("eraser initialized")
		return &Eraser[K]{resolver: r.resolver, cache: r.cache}
	})
}

// Updater returns the shared Updater, building it on first use.
func (r *Repository[K]) Updater() *Updater[K] {
	return r.updater.Get(func() *Updater[K] {
		r.logger.Debug().Msg("updater initialized")
		return &Updater[K]{resolver: r.resolver, cache: r.cache}
	})
}

// Indexes returns the shared IndexManager, building it on first use.
func (r *Repository[K]) Indexes() *IndexManager {
	return r.indexes.Get(func() *IndexManager {
		r.logger.Debug().Msg("index manager initialized")
		return &IndexManager{resolver: r.resolver, logger: r.logger}
	})
}
