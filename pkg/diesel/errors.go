package diesel

import (
	"fmt"

	"github.com/pkg/errors"
)

// Model file errors.
var (
	ErrBadMagic                   = errors.New("invalid model file header: expected -1 sentinel")
	ErrMalformedSection           = errors.New("malformed section")
	ErrUnsupportedChannelEncoding = errors.New("unsupported channel encoding")
	ErrMissingReference           = errors.New("missing section reference")
	ErrTypeMismatch               = errors.New("section reference type mismatch")
	ErrIndexOutOfBounds           = errors.New("index out of bounds")
	ErrUnresolved                 = errors.New("document references are not resolved")
)

// SectionError describes a failure tied to one section and field.
type SectionError struct {
	ID    uint32 // owning section
	Tag   uint32
	Field string
	Ref   uint32 // referenced id, for reference errors
	Want  Kind   // expected kind, for type mismatches
	Got   Kind
	Err   error
	Msg   string
}

func (e *SectionError) Error() string {
	switch e.Err {
	case ErrMissingReference:
		return fmt.Sprintf("section %d (%s) field %s: %v: id %d does not exist",
			e.ID, KindOf(e.Tag), e.Field, e.Err, e.Ref)
	case ErrTypeMismatch:
		return fmt.Sprintf("section %d (%s) field %s: %v: id %d is %s, expected %s",
			e.ID, KindOf(e.Tag), e.Field, e.Err, e.Ref, e.Got, e.Want)
	}
	if e.Msg != "" {
		return fmt.Sprintf("section %d (%s) field %s: %v: %s", e.ID, KindOf(e.Tag), e.Field, e.Err, e.Msg)
	}
	return fmt.Sprintf("section %d (%s) field %s: %v", e.ID, KindOf(e.Tag), e.Field, e.Err)
}

func (e *SectionError) Unwrap() error { return e.Err }

func malformed(h SectionHeader, field string, format string, args ...interface{}) error {
	return &SectionError{
		ID:    h.ID,
		Tag:   h.Tag,
		Field: field,
		Err:   ErrMalformedSection,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// Warning is a recoverable anomaly found while decoding or encoding.
type Warning struct {
	SectionID uint32
	Field     string
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("section %d %s: %s", w.SectionID, w.Field, w.Message)
}
