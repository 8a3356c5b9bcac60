// Package lock guards a catalog sync run against concurrent runs.
//
// LocalLocker covers a single process (the scheduler racing an HTTP trigger).
// RedisLocker covers several replicas sharing one catalog, using SET NX with a TTL
// and a token-checked release. Chain combines both.
//
// Acquire never waits: a held lock fails fast with ErrLocked.
package lock
