package export

import "github.com/google/uuid"

// IDGenerator supplies ids for border lines that were saved without one.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator draws random version 4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// IDFunc adapts a function to IDGenerator.
type IDFunc func() string

func (f IDFunc) NewID() string {
	return f()
}

// StaticID always returns the same id. It is meant for tests and previews.
type StaticID string

func (s StaticID) NewID() string {
	return string(s)
}
