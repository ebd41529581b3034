package archive

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable class of an input-format failure.
type ErrorKind string

const (
	KindInvalidArchive     ErrorKind = "invalid_archive"
	KindTranscriptNotFound ErrorKind = "transcript_not_found"
	KindDecodeError        ErrorKind = "decode_error"
)

// Error is returned for uploads that cannot be processed as a chat export.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match on kind alone, e.g. errors.Is(err, ErrTranscriptNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Detail == "" && t.Err == nil
}

var (
	ErrInvalidArchive     = &Error{Kind: KindInvalidArchive}
	ErrTranscriptNotFound = &Error{Kind: KindTranscriptNotFound}
	ErrDecode             = &Error{Kind: KindDecodeError}
)

// KindOf extracts the kind of an archive error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}
	return ""
}
