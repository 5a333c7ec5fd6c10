// Package id generates identifiers for persisted entities and operations.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for entity identifiers.
const (
	PrefixUser    = "user"
	PrefixBook    = "book"
	PrefixSession = "sess"
	PrefixToken   = "tok"
)

// Generate creates a prefixed NanoID, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
//
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewBatchID returns a random UUID identifying a bulk operation such as an
// import, so its log lines can be correlated.
func NewBatchID() string {
	return uuid.NewString()
}
