// Package server holds the HTTP server configuration.
//
// The start command builds its fiber application from Config.FiberConfig and
// listens on Config.Addr.
package server
