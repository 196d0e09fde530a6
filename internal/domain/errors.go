package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can decide whether to skip a file
// or abort the run.
type ErrorKind int

const (
	Unknown ErrorKind = iota
	FileAccess
	UnsupportedMedia
	MetadataParse
	MemoryMapLimit
	GeocodeService
	CorruptStore
)

func (k ErrorKind) String() string {
	switch k {
	case FileAccess:
		return "file_access"
	case UnsupportedMedia:
		return "unsupported_media"
	case MetadataParse:
		return "metadata_parse"
	case MemoryMapLimit:
		return "memory_map_limit"
	case GeocodeService:
		return "geocode_service"
	case CorruptStore:
		return "corrupt_store"
	default:
		return "unknown"
	}
}

// Error is a classified failure, optionally tied to a file.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewError wraps err with a kind and path.
func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: X})
// works without a sentinel per kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil && t.Path == ""
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
