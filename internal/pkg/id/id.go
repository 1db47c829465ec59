package id

import (
	"crypto/rand"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time, which the post feed and comment indexes rely on.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NewObjectKey returns a random UUIDv4 for S3 object names and device UUIDs.
func NewObjectKey() string {
	return uuid.NewString()
}
