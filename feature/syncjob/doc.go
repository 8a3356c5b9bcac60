// Package syncjob exposes catalog reconciliation runs over HTTP, the CLI and a scheduler.
//
// Every trigger goes through Service, which holds the run lock so that manual
// and scheduled runs never overlap.
package syncjob
