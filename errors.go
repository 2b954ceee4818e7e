package metasprite

import (
	"errors"
	"fmt"
)

// Sentinel errors for class matching with errors.Is.
var (
	// ErrParse indicates the source sheet could not be parsed.
	ErrParse = errors.New("metasprite: parse error")
	// ErrPacking indicates atlas generation failed.
	ErrPacking = errors.New("metasprite: packing error")
)

// ParseError describes a malformed source sheet. Fatal: it aborts the
// import run.
type ParseError struct {
	Path   string // source file path, if known
	Reason string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("metasprite: parse error: %s", e.Reason)
	}
	return fmt.Sprintf("metasprite: parse error in %s: %s", e.Path, e.Reason)
}

// Is reports ErrParse so callers can match the error class without
// holding the concrete type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// PackingError describes an atlas generation failure (oversized frame or
// empty input). Fatal: it aborts the import run.
type PackingError struct {
	Group  string // content group being packed
	Reason string
}

func (e *PackingError) Error() string {
	if e.Group == "" {
		return fmt.Sprintf("metasprite: packing error: %s", e.Reason)
	}
	return fmt.Sprintf("metasprite: packing error in group %q: %s", e.Group, e.Reason)
}

func (e *PackingError) Is(target error) bool {
	return target == ErrPacking
}
