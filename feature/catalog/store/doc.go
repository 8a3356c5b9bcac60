// Package store persists the catalog as one document, replaced wholesale.
//
// Three backends implement Store:
//   - FileStore: a JSON file, written to a temporary file and renamed into place.
//   - ObjectStore: a JSON object in a minio/S3 bucket, with optional rolling backups.
//   - DBStore: gorm tables catalog_items and catalog_revisions.
//
// Every backend tracks a revision of the stored content. Save only succeeds when the
// caller's expected revision is still current, so a sync run cannot silently overwrite
// edits made after it loaded the catalog.
package store
