// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package dpx decodes DPX (SMPTE 268M digital picture exchange) files: the
// fixed binary header, a normalized pixel layout and attribute set per image
// element, and scanline blocks of pixel data with optional conversion of the
// packed video-style YCbCr encodings to RGB.
package dpx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	// ErrInvalidMagic is returned when the magic cookie matches neither
	// byte-order variant.
	ErrInvalidMagic = errors.New("dpx: invalid magic cookie")

	// ErrBadSubimage is returned for a subimage index outside the header's
	// element count.
	ErrBadSubimage = errors.New("dpx: subimage index out of range")

	// ErrUnsupportedComponentSize is returned for a bit depth this package
	// cannot decode.
	ErrUnsupportedComponentSize = errors.New("dpx: unsupported component data size")

	// ErrClosed is returned for operations on a closed decoder.
	ErrClosed = errors.New("dpx: decoder is closed")

	// Internal error to signal that we should stop any further processing.
	errStop = errors.New("stop")
)

// InvalidHeaderError is returned when the header is truncated or a field is
// structurally invalid.
type InvalidHeaderError struct {
	Err error
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("dpx: invalid header: %v", e.Err)
}

func (e *InvalidHeaderError) Unwrap() error {
	return e.Err
}

func newInvalidHeaderErrorf(format string, args ...any) *InvalidHeaderError {
	return &InvalidHeaderError{Err: fmt.Errorf(format, args...)}
}

// Options contains the options for the Open function.
type Options struct {
	// The Reader (typically a *os.File) to read the image from.
	R io.ReaderAt

	// RawColor requests native (possibly packed, non-RGB) component data
	// without colorspace conversion.
	RawColor bool

	// Config is an optional attribute-style configuration map. The keys
	// "dpx:RawColor", "oiio:RawColor" and the deprecated "dpx:RawData" are
	// recognized; any non-zero value requests raw-color mode.
	Config map[string]int

	// Warnf will be called for each warning.
	Warnf func(string, ...any)
}

func (o Options) rawColor() bool {
	return o.RawColor ||
		o.Config["dpx:RawColor"] != 0 ||
		o.Config["dpx:RawData"] != 0 ||
		o.Config["oiio:RawColor"] != 0
}

// IsDPX reports whether r starts with a valid DPX magic cookie. It inspects
// only the first 4 bytes and returns false on short reads.
func IsDPX(r io.ReaderAt) bool {
	var b [4]byte
	if n, _ := r.ReadAt(b[:], 0); n != len(b) {
		return false
	}
	return validMagic(binary.BigEndian.Uint32(b[:]))
}

// Decoder decodes one DPX file. It owns the stream exclusively until Close.
// Calls on one Decoder are serialized internally; decoders over distinct
// streams are fully independent.
type Decoder struct {
	mu sync.Mutex

	sr     *streamReader
	header *Header
	opts   Options

	// Raw-color mode as requested at open time. The resolved per-subimage
	// spec may force it on.
	rawColorRequested bool

	// Current subimage, -1 when none is selected.
	subimage int
	spec     Spec

	// Cached per-file user data blob.
	userBuf []byte

	// Scratch decode buffer; grows, never shrinks.
	decodeBuf []byte

	closed bool
}

// Open parses and validates the header of the DPX stream in opts.R and
// selects the first subimage. A failed open releases the stream.
func Open(opts Options) (d *Decoder, err error) {
	if opts.R == nil {
		return nil, fmt.Errorf("dpx: no reader provided")
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	sr := newStreamReader(opts.R, binary.BigEndian)

	defer func() {
		if err2 := recoveredError(recover(), sr); err2 != nil {
			err = wrapHeaderError(err2)
			d = nil
			if c, ok := opts.R.(io.Closer); ok {
				c.Close()
			}
		}
	}()

	header := parseHeader(sr)

	d = &Decoder{
		sr:                sr,
		header:            header,
		opts:              opts,
		rawColorRequested: opts.rawColor(),
		subimage:          -1,
	}

	if _, err := d.seekSubimage(0); err != nil {
		d.Close()
		return nil, err
	}

	return d, nil
}

// recoveredError normalizes a recovered panic from the stream read flow.
func recoveredError(r any, sr *streamReader) error {
	if r == nil {
		return nil
	}
	err := sr.readErr
	sr.readErr = nil
	if err != nil {
		return err
	}
	if errp, ok := r.(error); ok && errp != errStop {
		return errp
	}
	return fmt.Errorf("dpx: unknown panic: %v", r)
}

func wrapHeaderError(err error) error {
	if errors.Is(err, ErrInvalidMagic) {
		return err
	}
	var ih *InvalidHeaderError
	if errors.As(err, &ih) {
		return err
	}
	return &InvalidHeaderError{Err: err}
}

// Header returns the parsed header. It is read-only after Open.
func (d *Decoder) Header() *Header {
	return d.header
}

// NumSubimages returns the number of image elements in the file.
func (d *Decoder) NumSubimages() int {
	if d.header == nil {
		return 0
	}
	return d.header.ElementCount()
}

// CurrentSubimage returns the selected subimage, -1 if none.
func (d *Decoder) CurrentSubimage() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.subimage
}

// Spec returns the resolved layout and attributes of the selected subimage.
func (d *Decoder) Spec() Spec {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spec
}

// SeekSubimage selects a subimage, recomputing its layout and attributes.
// On failure the previously selected subimage stays in effect.
func (d *Decoder) SeekSubimage(subimage int) (Spec, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seekSubimage(subimage)
}

func (d *Decoder) seekSubimage(subimage int) (spec Spec, err error) {
	if d.closed {
		return Spec{}, ErrClosed
	}
	if subimage == d.subimage {
		return d.spec, nil
	}

	spec, err = resolveSpec(d.header, subimage, d.rawColorRequested)
	if err != nil {
		return Spec{}, err
	}

	defer func() {
		if err2 := recoveredError(recover(), d.sr); err2 != nil {
			err = fmt.Errorf("dpx: reading user data: %w", err2)
			spec = Spec{}
		}
	}()

	d.extractAttrs(subimage, &spec)

	d.subimage = subimage
	d.spec = spec
	return spec, nil
}

// ReadScanlines decodes the rows [ybegin, yend) of the given subimage into
// dst, switching subimage first if needed. The caller sizes dst for the
// resolved (possibly converted) layout, spec.ScanlineBytes(yend-ybegin)
// bytes. Samples wider than one byte are written in little-endian byte
// order. On failure dst may hold partial data.
func (d *Decoder) ReadScanlines(subimage, ybegin, yend int, dst []byte) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	spec, err := d.seekSubimage(subimage)
	if err != nil {
		return err
	}

	if yend <= ybegin {
		return fmt.Errorf("dpx: empty scanline range [%d,%d)", ybegin, yend)
	}
	if need := spec.ScanlineBytes(yend - ybegin); len(dst) < need {
		return fmt.Errorf("dpx: destination buffer %d bytes, need %d", len(dst), need)
	}

	b := block{
		x1: 0,
		y1: ybegin - spec.Y,
		x2: spec.Width - 1,
		y2: yend - 1 - spec.Y,
	}

	defer func() {
		if err2 := recoveredError(recover(), d.sr); err2 != nil {
			err = fmt.Errorf("dpx: reading scanlines [%d,%d): %w", ybegin, yend, err2)
		}
	}()

	if spec.RawColor {
		return d.readBlock(subimage, dst, b)
	}

	// Read the native block, then convert to RGB. The scratch buffer only
	// grows, to amortize allocation across many scanline reads.
	ptr := dst
	if bufsize := queryRGBBufferSize(d.header, subimage, b); bufsize > 0 {
		if bufsize > cap(d.decodeBuf) {
			d.decodeBuf = make([]byte, bufsize)
		}
		ptr = d.decodeBuf[:bufsize]
	}

	if err := d.readBlock(subimage, ptr, b); err != nil {
		return err
	}
	return convertToRGB(d.header, subimage, ptr, dst, b)
}

// Close releases the stream and resets the decoder to its pre-open state.
// If the reader implements io.Closer it is closed.
func (d *Decoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.sr = nil
	d.header = nil
	d.subimage = -1
	d.spec = Spec{}
	d.userBuf = nil
	d.decodeBuf = nil
	if c, ok := d.opts.R.(io.Closer); ok {
		d.opts.R = nil
		return c.Close()
	}
	d.opts.R = nil
	return nil
}
