package sectorimg

import "io"

// LayoutFlag records how a physical (cylinder, head) pair maps onto the
// order in which tracks are stored in the backing file; seek.TrackOffset
// applies it when computing a track's byte offset.
type LayoutFlag uint8

const (
	// LayoutSequential lays logical tracks out side-major: side 0 of
	// every cylinder, then side 1 of every cylinder.
	LayoutSequential LayoutFlag = 1 << iota
	// LayoutSidesSwapped exchanges head 0 and head 1 for every cylinder
	// after the sequential/interleaved assignment is otherwise complete.
	LayoutSidesSwapped
)

// ReverseSideBit returns the layout bit that reverses the cylinder order of
// the named side only (side must be 0 or 1), leaving the other side's
// cylinder order untouched.
func ReverseSideBit(side int) LayoutFlag {
	return LayoutFlag(1 << uint(2+side))
}

// FileCollaborator is the external, caller-supplied file I/O abstraction
// the image engine reads sector bytes through and writes decoded sector
// bytes back to. It is intentionally narrow: everything about geometry,
// track layout, and encoding lives inside this module, and everything about
// where bytes ultimately live lives with the caller.
type FileCollaborator interface {
	io.ReaderAt
	io.WriterAt
	// Size returns the current length of the backing image in bytes.
	Size() (int64, error)
	// Truncate grows or shrinks the backing image to exactly newSize bytes.
	// Handler.Extend does not call it; a caller growing an image passes the
	// offset Extend reports.
	Truncate(newSize int64) error
}

// Handler is the per-format vtable an image opener returns once it has
// recognized a file's contents. It is deliberately small and stateless
// beyond what Open captured in its receiver: everything else is driven by
// the seek/track engine calling back into it once per physical track.
type Handler interface {
	// Name identifies the recognized format, e.g. "ibm-pc-dos", "atr",
	// "d81". Used for diagnostics only.
	Name() string

	// SetupTrack selects the physical track at (cyl, head): it resolves the
	// *layout.Trk the track map points at and its rotational sector order,
	// infers the data rate when the Trk has none and records it on the Trk,
	// and prepares the track decoder. Gap sizes are resolved later, by the
	// encoder.
	SetupTrack(cyl, head int) error

	// ReadTrack fills a *mfm.Encoder positioned at decode_pos 0 for the
	// physical track at (cyl, head), pulling sector payload bytes from the
	// FileCollaborator via the byte offset formula appropriate to the
	// format (contiguous, per-track, or via an explicit offset table).
	ReadTrack(cyl, head int) error

	// Extend reports the byte offset one past the last valid sector this
	// format would occupy if the image were grown to include physical
	// track (cyl, head), or ok=false if the format does not support
	// growing past its currently open size.
	Extend(cyl, head int) (offset int64, ok bool)
}
