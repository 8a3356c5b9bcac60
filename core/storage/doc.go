// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface so the object-backed
// catalog store can be tested against the mock in core/storage/mocks. Both AWS S3
// and self-hosted MinIO work.
//
// # Operations
//
//   - BucketExists / MakeBucket (via EnsureBucket): prepare the target bucket.
//   - PutObject / GetObject: write and read the catalog document.
//   - ListObjects / RemoveObject: prune old catalog backups.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
