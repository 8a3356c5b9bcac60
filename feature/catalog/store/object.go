package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ObjectStore keeps the catalog as a JSON object in an S3 compatible bucket.
type ObjectStore struct {
	client  storage.Client
	bucket  string
	key     string
	backups int
	logger  *zap.Logger
	now     func() time.Time
}

// NewObjectStore creates a store for bucket/key. When backups > 0 the previous
// document is copied under <dir>/backups/ before each replace and only the
// newest backups are kept.
func NewObjectStore(client storage.Client, bucket, key string, backups int, logger *zap.Logger) *ObjectStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{
		client:  client,
		bucket:  bucket,
		key:     key,
		backups: backups,
		logger:  logger,
		now:     time.Now,
	}
}

// Load implements Store.
func (s *ObjectStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := s.read(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	items, err := Decode(data)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Items: items, Revision: Revision(data)}, nil
}

// Save implements Store. The object is replaced with a single PutObject.
func (s *ObjectStore) Save(ctx context.Context, items []models.CatalogItem, expectedRevision string) (string, error) {
	data, err := Encode(items)
	if err != nil {
		return "", err
	}

	current, err := s.read(ctx)
	if err != nil {
		return "", err
	}
	if Revision(current) != expectedRevision {
		return "", ErrRevisionConflict
	}

	if len(current) > 0 && s.backups > 0 {
		if err := s.backup(ctx, current); err != nil {
			return "", err
		}
	}

	if err := s.put(ctx, s.key, data); err != nil {
		return "", err
	}
	return Revision(data), nil
}

func (s *ObjectStore) read(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get catalog object: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// minio reports a missing object on first read.
		if storage.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read catalog object: %w", err)
	}
	return data, nil
}

func (s *ObjectStore) put(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

func (s *ObjectStore) backupPrefix() string {
	base := strings.TrimSuffix(path.Base(s.key), path.Ext(s.key))
	return path.Join(path.Dir(s.key), "backups", base) + "-"
}

func (s *ObjectStore) backup(ctx context.Context, data []byte) error {
	key := s.backupPrefix() + s.now().UTC().Format("20060102T150405.000Z") + ".json"
	if err := s.put(ctx, key, data); err != nil {
		return err
	}
	if err := s.pruneBackups(ctx); err != nil {
		s.logger.Warn("Catalog backup pruning failed", zap.String("bucket", s.bucket), zap.Error(err))
	}
	return nil
}

// pruneBackups removes the oldest backups beyond the configured count.
// Backup keys sort chronologically.
func (s *ObjectStore) pruneBackups(ctx context.Context) error {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.backupPrefix(), Recursive: true}) {
		if obj.Err != nil {
			return fmt.Errorf("failed to list catalog backups: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	if len(keys) <= s.backups {
		return nil
	}

	sort.Strings(keys)
	for _, key := range keys[:len(keys)-s.backups] {
		if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("failed to remove catalog backup %s: %w", key, err)
		}
	}
	return nil
}
