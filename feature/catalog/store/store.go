package store

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Backends.
const (
	BackendFile   = "file"
	BackendObject = "s3"
	BackendDB     = "db"
)

// ErrRevisionConflict is returned by Save when the stored catalog changed since it was loaded.
var ErrRevisionConflict = errors.New("catalog revision conflict")

// Config selects and configures the catalog backend.
type Config struct {
	// Backend is one of file, s3 or db.
	Backend string `mapstructure:"backend" default:"file"`
	// Path is the JSON document location for the file backend.
	Path string `mapstructure:"path" default:"data/products.json"`
	// Object is the object key for the s3 backend.
	Object string `mapstructure:"object" default:"catalog/products.json"`
	// Backups is how many previous documents the s3 backend keeps. Zero disables backups.
	Backups int `mapstructure:"backups" default:"5"`
	// AutoMigrate lets the db backend create its tables.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
}

// Snapshot is the catalog as read at one revision.
type Snapshot struct {
	Items []models.CatalogItem
	// Revision identifies the stored content. It is empty when nothing was stored yet.
	Revision string
}

// Store reads and replaces the whole catalog.
type Store interface {
	// Load reads the full catalog.
	Load(ctx context.Context) (Snapshot, error)
	// Save replaces the full catalog if the stored revision still equals expectedRevision,
	// and returns the new revision. A mismatch fails with ErrRevisionConflict and writes nothing.
	Save(ctx context.Context, items []models.CatalogItem, expectedRevision string) (string, error)
}

// Deps are the connections a backend may need.
type Deps struct {
	Storage storage.Client
	Bucket  string
	DB      *gorm.DB
	Logger  *zap.Logger
}

// New builds the configured backend.
func New(cfg Config, deps Deps) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path), nil
	case BackendObject:
		if deps.Storage == nil {
			return nil, fmt.Errorf("catalog backend %q requires a storage client", cfg.Backend)
		}
		return NewObjectStore(deps.Storage, deps.Bucket, cfg.Object, cfg.Backups, deps.Logger), nil
	case BackendDB:
		if deps.DB == nil {
			return nil, fmt.Errorf("catalog backend %q requires a database connection", cfg.Backend)
		}
		return NewDBStore(deps.DB, cfg.AutoMigrate)
	default:
		return nil, fmt.Errorf("unknown catalog backend %q", cfg.Backend)
	}
}
