package dpx

import (
	"fmt"
	"strings"
)

// TimeCode is a SMPTE 12M time code packed in TV60 layout: BCD digit pairs
// for frame, seconds, minutes and hours in the low to high bytes, with the
// drop-frame flag in bit 6.
type TimeCode uint32

// NewTimeCode packs the given wall-clock fields.
func NewTimeCode(hours, minutes, seconds, frame int, dropFrame bool) TimeCode {
	t := uint32(frame%10) | uint32(frame/10)<<4 |
		uint32(seconds%10)<<8 | uint32(seconds/10)<<12 |
		uint32(minutes%10)<<16 | uint32(minutes/10)<<20 |
		uint32(hours%10)<<24 | uint32(hours/10)<<28
	if dropFrame {
		t |= 1 << 6
	}
	return TimeCode(t)
}

// Frame returns the frame number within the second.
func (t TimeCode) Frame() int {
	return int(t&0xF) + 10*int(t>>4&0x3)
}

// Seconds returns the seconds field.
func (t TimeCode) Seconds() int {
	return int(t>>8&0xF) + 10*int(t>>12&0x7)
}

// Minutes returns the minutes field.
func (t TimeCode) Minutes() int {
	return int(t>>16&0xF) + 10*int(t>>20&0x7)
}

// Hours returns the hours field.
func (t TimeCode) Hours() int {
	return int(t>>24&0xF) + 10*int(t>>28&0x3)
}

// DropFrame reports whether the drop-frame flag is set.
func (t TimeCode) DropFrame() bool {
	return t&(1<<6) != 0
}

// String formats the time code as "HH:MM:SS:FF", with a semicolon before
// the frame field for drop-frame encoding.
func (t TimeCode) String() string {
	sep := ':'
	if t.DropFrame() {
		sep = ';'
	}
	return fmt.Sprintf("%02d:%02d:%02d%c%02d", t.Hours(), t.Minutes(), t.Seconds(), sep, t.Frame())
}

// perfsForFormat returns the perforations per frame and per count for a film
// format name. The table is a best-effort heuristic keyed on the textual
// format field; unmatched formats get the 35mm 4-perf defaults.
func perfsForFormat(format string) (perfsPerFrame, perfsPerCount int) {
	perfsPerFrame = 4
	perfsPerCount = 64
	switch {
	case format == "8kimax":
		perfsPerFrame = 15
		perfsPerCount = 120
	case strings.HasPrefix(format, "2kvv"), strings.HasPrefix(format, "4kvv"):
		perfsPerFrame = 8
	case format == "VistaVision":
		perfsPerFrame = 8
	case strings.HasPrefix(format, "2k35"), strings.HasPrefix(format, "4k35"):
		perfsPerFrame = 4
	case format == "Full Aperture":
		perfsPerFrame = 4
	case format == "Academy":
		perfsPerFrame = 4
	case strings.HasPrefix(format, "2k3perf"), strings.HasPrefix(format, "4k3perf"):
		perfsPerFrame = 3
	case format == "3perf":
		perfsPerFrame = 3
	}
	return
}

// keyCodeValues decodes the film-edge keycode fields into the 7-element
// integer form: manufacturer code, film type, prefix, count, perforation
// offset, perforations per frame and perforations per count.
func keyCodeValues(h *Header) []int {
	perfsPerFrame, perfsPerCount := perfsForFormat(h.Format)
	return []int{
		stoiField(h.FilmManufacturingIDCode),
		stoiField(h.FilmType),
		stoiField(h.Prefix),
		stoiField(h.Count),
		stoiField(h.PerfsOffset),
		perfsPerFrame,
		perfsPerCount,
	}
}

// filmEdgeCode formats the film-edge identification fields as one code
// string, empty when the manufacturing ID is not set.
func filmEdgeCode(h *Header) string {
	if h.FilmManufacturingIDCode == "" {
		return ""
	}
	return fmt.Sprintf("%2s%2s%2s%6s%4s",
		h.FilmManufacturingIDCode, h.FilmType, h.PerfsOffset, h.Prefix, h.Count)
}
