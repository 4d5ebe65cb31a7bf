package rsproto

import "github.com/pkg/errors"

var (
	// ErrUnderflow means a decode needed more bytes than the frame held.
	ErrUnderflow = errors.New("rsproto: read past end of frame")

	// ErrOversizeString means a string length field exceeded the
	// remaining bytes of the frame.
	ErrOversizeString = errors.New("rsproto: string length exceeds remaining bytes")

	// ErrEncodeSizeMismatch means a command's Write emitted a byte count
	// different from its SizeNeeded.
	ErrEncodeSizeMismatch = errors.New("rsproto: encoded size differs from size needed")

	// ErrUnknownCommand means a frame arrived with a key outside the
	// dispatch table.
	ErrUnknownCommand = errors.New("rsproto: unknown command")
)
