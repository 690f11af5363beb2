// Package uuid generates the time-ordered identifiers used as primary keys.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a UUIDv7 string. Cart lines and order items are listed by
// created_at then id, so a v7 id breaks ties in insertion order.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.NewString()
	}
	return id.String()
}

// Canonical returns s in the lowercase hyphenated form stored in the
// database. Braced, URN and uppercase inputs are accepted.
func Canonical(s string) (string, bool) {
	id, err := googleuuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
