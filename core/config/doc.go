// Package config provides configuration management for catalog-sync.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults live next to each setting in `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port)
//   - Log: Logging level and format
//   - Database: SQL connection details (used by the "db" catalog backend)
//   - Storage: S3/MinIO credentials and bucket settings (used by the "s3" catalog backend)
//   - Catalog: which backend holds the local catalog and where
//   - ERS: External Retail System endpoint, token and scoping identifiers
//   - Sync: fetch thresholds, retry policy, pacing and schedule
//   - Redis: optional cross-process run lock
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.ERS.BaseURL)
package config
