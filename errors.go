// Package sectorimg turns a geometry-tagged flat image (one sector after
// another, host cylinder/head/sector order) into a bit-level IBM System-34
// MFM/FM track stream on demand, and turns a bit-level write stream back
// into sectors written to that same flat image.
package sectorimg

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// DriverError is returned across every package boundary in this module. It
// chains additional context onto a root cause without losing the ability to
// test the chain with errors.Is.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type baseImageError string

const rootError = baseImageError("")

// ErrBadImage is fatal: the image's on-disk layout, geometry, or track map
// violates a structural invariant the arena and encoder rely on. Opening or
// decoding must stop.
var ErrBadImage = rootError.WithMessage("disk image structure is invalid")

// ErrCrcMismatch is returned by image.Image.ConsumeWriteWord when a written
// IDAM's header CRC does not match; the sector that follows is not written.
// A data-field CRC mismatch is not reported with it: that sector is still
// written. It is not fatal on its own; callers decide whether to retry,
// discard the sector, or abort.
var ErrCrcMismatch = rootError.WithMessage("CRC mismatch decoding sector")

// ErrUnknownSectorID is raised when an IDAM names a sector id that does not
// appear anywhere in the track's layout.
var ErrUnknownSectorID = rootError.WithMessage("sector id not present in track layout")

// ErrMidTrackWriteUnresolvable is raised when a write stream starts with a
// DAM and no preceding IDAM, and rotational bit-cell arithmetic cannot
// localize which sector it belongs to.
var ErrMidTrackWriteUnresolvable = rootError.WithMessage("write started mid-track and could not be localized")

var ErrIOFailed = rootError.WithMessage("backing store I/O failed")
var ErrInvalidArgument = rootError.WithMessage("invalid argument")
var ErrArgumentOutOfRange = rootError.WithMessage("numerical argument out of domain")
var ErrNotSupported = rootError.WithMessage("operation not supported")
var ErrNotImplemented = rootError.WithMessage("function not implemented")

func (e baseImageError) Error() string {
	return string(e)
}

func (e baseImageError) RootCause() DriverError {
	return e
}

func (e baseImageError) WithMessage(message string) DriverError {
	return customImageError{message: message, originalError: e}
}

func (e baseImageError) Wrap(err error) DriverError {
	return customImageError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

type customImageError struct {
	message       string
	originalError error
}

func (e customImageError) Error() string {
	return e.message
}

func (e customImageError) WithMessage(message string) DriverError {
	return customImageError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customImageError) Wrap(err error) DriverError {
	return customImageError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customImageError) Unwrap() error {
	return e.originalError
}
