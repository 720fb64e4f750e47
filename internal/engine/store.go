// Package engine implements the document store that backs remote mode: named
// collections of JSON documents held in memory and persisted per collection.
package engine

import (
	"errors"
	"regexp"
)

var (
	// ErrCollectionNotFound is returned when a requested collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDocumentNotFound is returned when a requested document does not exist within a collection.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidName is returned for collection or document ids outside [A-Za-z0-9_-].
	ErrInvalidName = errors.New("invalid name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidName reports whether s may be used as a collection name or document id.
// Names end up as file names and protocol tokens.
func ValidName(s string) bool {
	return validName.MatchString(s)
}
