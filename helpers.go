package dpx

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var iso88591Decoder = charmap.ISO8859_1.NewDecoder()

// cstring extracts a string from a fixed-width header field. Some
// non-compliant writers dump 0xFF filler rather than a NUL termination on
// the first character, so treat a leading 0xFF the same as an empty field.
// Extraction never reads past the declared field width.
func cstring(b []byte) string {
	if len(b) == 0 || b[0] == 0 || b[0] == undefinedU8 {
		return ""
	}
	end := len(b)
	for i, c := range b {
		if c == 0 || c == undefinedU8 {
			end = i
			break
		}
	}
	s, err := iso88591Decoder.Bytes(b[:end])
	if err != nil {
		return string(b[:end])
	}
	return string(s)
}

// readString reads a fixed-width string field at the current offset.
func (e *streamReader) readString(n int) string {
	return cstring(e.readBytesVolatile(n))
}

// stoiField parses the leading decimal digits of a fixed-width numeric
// field, returning 0 when the field holds no number.
func stoiField(s string) int {
	s = strings.TrimLeft(s, " ")
	var (
		n   int
		any bool
	)
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		any = true
	}
	if !any {
		return 0
	}
	return n
}

// Date/time format constants of the header fields (%Y:%m:%d:%H:%M:%S%Z):
// the separator between date and time sits at byte 10 and the timezone
// suffix starts at byte 19.
const (
	dateTimeSeparatorOffset = 10
	dateTimeLength          = 19
)

// formatDateTime reformats a header date/time string by replacing the
// date/time separator with a space and dropping the timezone suffix.
func formatDateTime(s string) string {
	b := []byte(s)
	if len(b) > dateTimeLength {
		b = b[:dateTimeLength]
	}
	if len(b) > dateTimeSeparatorOffset {
		b[dateTimeSeparatorOffset] = ' '
	}
	return string(b)
}
