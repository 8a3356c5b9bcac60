// Package utils provides helpers shared across catalog-sync.
//
// The conversion helpers accept the loosely typed values the external retail system
// returns (numbers as strings, ids as floats) and the slug helper builds stable item ids.
package utils
