package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"catalog-sync/core/storage/mocks"
	"catalog-sync/feature/catalog/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func body(s string) io.ReadCloser {
	return io.NopCloser(bytes.NewReader([]byte(s)))
}

func TestObjectStore_LoadMissing(t *testing.T) {
	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "catalog", "catalog/products.json", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})

	s := NewObjectStore(m, "catalog", "catalog/products.json", 0, zap.NewNop())
	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Revision)
}

func TestObjectStore_LoadError(t *testing.T) {
	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "catalog", "catalog/products.json", mock.Anything).
		Return(nil, errors.New("connection reset"))

	s := NewObjectStore(m, "catalog", "catalog/products.json", 0, zap.NewNop())
	_, err := s.Load(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestObjectStore_SaveWithBackups(t *testing.T) {
	ctx := context.Background()
	existing := `[{"id":"old","name":"Old"}]`

	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "catalog", "catalog/products.json", mock.Anything).Return(body(existing), nil)

	var uploaded []byte
	m.On("PutObject", mock.Anything, "catalog", "catalog/products.json", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)
	m.On("PutObject", mock.Anything, "catalog", "catalog/backups/products-20260102T030405.000Z.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	listed := make(chan minio.ObjectInfo, 3)
	listed <- minio.ObjectInfo{Key: "catalog/backups/products-20260101T000000.000Z.json"}
	listed <- minio.ObjectInfo{Key: "catalog/backups/products-20251231T000000.000Z.json"}
	listed <- minio.ObjectInfo{Key: "catalog/backups/products-20260102T030405.000Z.json"}
	close(listed)
	m.On("ListObjects", mock.Anything, "catalog", minio.ListObjectsOptions{Prefix: "catalog/backups/products-", Recursive: true}).
		Return((<-chan minio.ObjectInfo)(listed))
	m.On("RemoveObject", mock.Anything, "catalog", "catalog/backups/products-20251231T000000.000Z.json", mock.Anything).Return(nil)

	s := NewObjectStore(m, "catalog", "catalog/products.json", 2, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	rev, err := s.Save(ctx, []models.CatalogItem{{ID: "new", Name: "New"}}, Revision([]byte(existing)))
	require.NoError(t, err)
	assert.Equal(t, Revision(uploaded), rev)
	assert.Contains(t, string(uploaded), `"id": "new"`)
	m.AssertExpectations(t)
}

func TestObjectStore_SaveConflict(t *testing.T) {
	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "catalog", "catalog/products.json", mock.Anything).Return(body(`[{"id":"changed"}]`), nil)

	s := NewObjectStore(m, "catalog", "catalog/products.json", 2, zap.NewNop())
	_, err := s.Save(context.Background(), nil, "stale")
	assert.ErrorIs(t, err, ErrRevisionConflict)
	m.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestObjectStore_SaveUploadFails(t *testing.T) {
	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "catalog", "catalog/products.json", mock.Anything).
		Return(nil, minio.ErrorResponse{Code: "NoSuchKey"})
	m.On("PutObject", mock.Anything, "catalog", "catalog/products.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("bucket unavailable"))

	s := NewObjectStore(m, "catalog", "catalog/products.json", 2, zap.NewNop())
	_, err := s.Save(context.Background(), nil, "")
	assert.ErrorContains(t, err, "bucket unavailable")
}
