package brcode

import (
	"errors"
	"fmt"
)

var (
	ErrFieldTooLong    = errors.New("field too long")
	ErrInvalidChecksum = errors.New("invalid checksum")
	ErrMalformed       = errors.New("malformed payload")
)

// FieldTooLongError reports a value that cannot be described by a two digit
// length.
type FieldTooLongError struct {
	Tag    string
	Length int
}

func (e *FieldTooLongError) Error() string {
	return fmt.Sprintf("field %s: value is %d bytes, max %d", e.Tag, e.Length, MaxValueLen)
}

func (e *FieldTooLongError) Is(target error) bool { return target == ErrFieldTooLong }

// InvalidChecksumError is returned by Validate when the trailing checksum does
// not match the one recomputed over the payload body.
type InvalidChecksumError struct {
	Claimed  string
	Expected string
}

func (e *InvalidChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: payload claims %s, computed %s", e.Claimed, e.Expected)
}

func (e *InvalidChecksumError) Is(target error) bool { return target == ErrInvalidChecksum }

// SyntaxError points at the byte offset where a payload stops following the
// tag-length-value grammar.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrMalformed }
