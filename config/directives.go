package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Auto is the sentinel value for gap and head directives written as "a" in
// the sidecar grammar, meaning "let the track assembler compute this".
const Auto = -1

// TrackSelector is one comma-separated element of a "tracks=" directive:
// a cylinder range, optionally restricted to one head.
type TrackSelector struct {
	FirstCyl, LastCyl int
	Head              int // -1 means both heads
}

// Section is the fully decoded key=value payload of one scored-in sidecar
// section, ready to be applied to a layout.Trk by the tag-config opener.
type Section struct {
	Cyls, Heads, Secs int // 0 if unset
	Bps               int // sector size in bytes, 0 if unset
	IDBase            int
	Head              int // Auto, 0, or 1
	FM                bool
	ModeSet           bool
	Interleave        int
	CSkew, HSkew      int
	RPM, RateKbps     int
	Gap2, Gap3, Gap4A int // Auto if unset
	IAM               bool
	IAMSet            bool
	Step              int
	Tracks            []TrackSelector
	FileLayoutTokens  []string
}

// NewSection returns a Section with every gap/head field defaulted to Auto,
// matching simple_layout's zero-initialized-then-probed fields.
func NewSection() Section {
	return Section{Head: Auto, Gap2: Auto, Gap3: Auto, Gap4A: Auto, IAM: true, Step: 1, Interleave: 1}
}

// Apply folds one KeyValue token into sec, returning an error for a key
// this grammar doesn't recognize or a malformed value.
func (sec *Section) Apply(tok Token) error {
	if tok.Kind != KeyValue {
		return fmt.Errorf("config: Apply called on non-KeyValue token at line %d", tok.Line)
	}

	switch tok.Key {
	case "cyls":
		return setInt(&sec.Cyls, tok.Value)
	case "heads":
		return setInt(&sec.Heads, tok.Value)
	case "secs":
		return setInt(&sec.Secs, tok.Value)
	case "bps":
		n, err := strconv.Atoi(tok.Value)
		if err != nil {
			return fmt.Errorf("config: line %d: bad bps %q: %w", tok.Line, tok.Value, err)
		}
		sec.Bps = n
	case "id":
		return setInt(&sec.IDBase, tok.Value)
	case "h":
		switch tok.Value {
		case "a":
			sec.Head = Auto
		case "0":
			sec.Head = 0
		case "1":
			sec.Head = 1
		default:
			return fmt.Errorf("config: line %d: bad h value %q", tok.Line, tok.Value)
		}
	case "mode":
		sec.ModeSet = true
		switch tok.Value {
		case "fm":
			sec.FM = true
		case "mfm":
			sec.FM = false
		default:
			return fmt.Errorf("config: line %d: bad mode %q", tok.Line, tok.Value)
		}
	case "interleave":
		return setInt(&sec.Interleave, tok.Value)
	case "cskew":
		return setInt(&sec.CSkew, tok.Value)
	case "hskew":
		return setInt(&sec.HSkew, tok.Value)
	case "rpm":
		return setInt(&sec.RPM, tok.Value)
	case "rate":
		return setInt(&sec.RateKbps, tok.Value)
	case "gap2":
		return setAutoInt(&sec.Gap2, tok.Value)
	case "gap3":
		return setAutoInt(&sec.Gap3, tok.Value)
	case "gap4a":
		return setAutoInt(&sec.Gap4A, tok.Value)
	case "iam":
		sec.IAMSet = true
		switch tok.Value {
		case "yes":
			sec.IAM = true
		case "no":
			sec.IAM = false
		default:
			return fmt.Errorf("config: line %d: bad iam value %q", tok.Line, tok.Value)
		}
	case "step":
		return setInt(&sec.Step, tok.Value)
	case "tracks":
		selectors, err := parseTrackSelectors(tok.Value)
		if err != nil {
			return fmt.Errorf("config: line %d: %w", tok.Line, err)
		}
		sec.Tracks = selectors
	case "file-layout":
		sec.FileLayoutTokens = strings.Split(tok.Value, ",")
	default:
		return fmt.Errorf("config: line %d: unrecognized key %q", tok.Line, tok.Key)
	}
	return nil
}

func setInt(dest *int, raw string) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("bad integer %q: %w", raw, err)
	}
	*dest = n
	return nil
}

func setAutoInt(dest *int, raw string) error {
	if raw == "a" {
		*dest = Auto
		return nil
	}
	return setInt(dest, raw)
}

// parseTrackSelectors parses "tracks=c[-c][.h],..." into TrackSelectors.
func parseTrackSelectors(raw string) ([]TrackSelector, error) {
	var out []TrackSelector
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sel := TrackSelector{Head: -1}
		cylPart := part
		if dot := strings.IndexByte(part, '.'); dot >= 0 {
			cylPart = part[:dot]
			head, err := strconv.Atoi(part[dot+1:])
			if err != nil {
				return nil, fmt.Errorf("bad head in selector %q: %w", part, err)
			}
			sel.Head = head
		}
		if dash := strings.IndexByte(cylPart, '-'); dash >= 0 {
			first, err := strconv.Atoi(cylPart[:dash])
			if err != nil {
				return nil, fmt.Errorf("bad cylinder range %q: %w", cylPart, err)
			}
			last, err := strconv.Atoi(cylPart[dash+1:])
			if err != nil {
				return nil, fmt.Errorf("bad cylinder range %q: %w", cylPart, err)
			}
			sel.FirstCyl, sel.LastCyl = first, last
		} else {
			cyl, err := strconv.Atoi(cylPart)
			if err != nil {
				return nil, fmt.Errorf("bad cylinder %q: %w", cylPart, err)
			}
			sel.FirstCyl, sel.LastCyl = cyl, cyl
		}
		out = append(out, sel)
	}
	return out, nil
}
