package export

import (
	"errors"
	"fmt"

	"honnef.co/go/curve"
)

var (
	// ErrInvalidTree is matched by every *InvalidTreeError.
	ErrInvalidTree = errors.New("invalid project tree")
	// ErrGeometry is matched by every *GeometryError.
	ErrGeometry = errors.New("invalid geometry")
)

// InvalidTreeError reports a node that violates the tree's structural rules.
type InvalidTreeError struct {
	Path   string
	Reason string
}

func (e *InvalidTreeError) Error() string {
	return fmt.Sprintf("invalid project tree at %s: %s", e.Path, e.Reason)
}

func (e *InvalidTreeError) Is(target error) bool {
	return target == ErrInvalidTree
}

// GeometryError reports a coordinate that has no finite drawing representation.
type GeometryError struct {
	Path  string
	Point curve.Point
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("non-finite coordinate %v at %s", e.Point, e.Path)
}

func (e *GeometryError) Is(target error) bool {
	return target == ErrGeometry
}

func invalidf(path, format string, args ...any) error {
	return &InvalidTreeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
