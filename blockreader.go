// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package dpx

import (
	"encoding/binary"
	"fmt"
)

// block is a rectangle in source coordinates, both bounds inclusive.
type block struct {
	x1, y1, x2, y2 int
}

func (b block) rows() int {
	return b.y2 - b.y1 + 1
}

func (b block) cols() int {
	return b.x2 - b.x1 + 1
}

// nativeSampleSize returns the byte size of one unpacked sample.
func nativeSampleSize(size DataSize) int {
	switch size {
	case DataSizeByte:
		return 1
	case DataSizeWord:
		return 2
	case DataSizeFloat:
		return 4
	case DataSizeDouble:
		return 8
	default:
		return 0
	}
}

// nativeRowBytes returns the on-disk byte size of one image row, including
// the end-of-line padding.
func nativeRowBytes(el *ImageElement, width int) int {
	samples := width * el.Descriptor.ComponentCount()
	var n int
	switch el.BitDepth {
	case 8:
		n = samples
	case 16:
		n = samples * 2
	case 32:
		n = samples * 4
	case 64:
		n = samples * 8
	case 10, 12:
		switch el.Packing {
		case PackingFilledMethodA, PackingFilledMethodB:
			if el.BitDepth == 10 {
				// Three samples per 32-bit word.
				n = (samples + 2) / 3 * 4
			} else {
				// One sample per 16-bit word.
				n = samples * 2
			}
		default:
			// Continuous bitstream padded to a word boundary.
			n = (samples*int(el.BitDepth) + 31) / 32 * 4
		}
	}
	return n + int(el.EndOfLinePadding)
}

// sampleStream yields unpacked samples from the element's bit layout at the
// current stream position. 10 and 12-bit samples come out right-justified
// in the low bits.
type sampleStream struct {
	sr       *streamReader
	bitDepth uint
	packing  Packing

	// Bit buffer for packed layouts.
	bitBuf uint64
	nbits  uint

	// Unconsumed samples of the current word for filled layouts.
	pending  [3]uint16
	npending int
}

func newSampleStream(sr *streamReader, el *ImageElement) *sampleStream {
	return &sampleStream{
		sr:       sr,
		bitDepth: uint(el.BitDepth),
		packing:  el.Packing,
	}
}

// reset discards buffered word state, e.g. when jumping to a new row.
func (s *sampleStream) reset() {
	s.bitBuf = 0
	s.nbits = 0
	s.npending = 0
}

func (s *sampleStream) next() uint64 {
	switch s.bitDepth {
	case 8:
		return uint64(s.sr.read1())
	case 16:
		return uint64(s.sr.read2())
	case 32:
		return uint64(s.sr.read4())
	case 64:
		return s.sr.read8()
	}

	if s.packing == PackingFilledMethodA || s.packing == PackingFilledMethodB {
		if s.npending == 0 {
			s.fill()
		}
		s.npending--
		v := s.pending[0]
		s.pending[0] = s.pending[1]
		s.pending[1] = s.pending[2]
		return uint64(v)
	}

	// Packed: samples run least-significant-bit first across 32-bit words.
	for s.nbits < s.bitDepth {
		s.bitBuf |= uint64(s.sr.read4()) << s.nbits
		s.nbits += 32
	}
	v := s.bitBuf & (1<<s.bitDepth - 1)
	s.bitBuf >>= s.bitDepth
	s.nbits -= s.bitDepth
	return v
}

func (s *sampleStream) fill() {
	if s.bitDepth == 10 {
		w := s.sr.read4()
		if s.packing == PackingFilledMethodA {
			// Padding in bits 0-1, first sample in the high bits.
			s.pending = [3]uint16{
				uint16(w >> 22 & 0x3FF),
				uint16(w >> 12 & 0x3FF),
				uint16(w >> 2 & 0x3FF),
			}
		} else {
			// Padding in bits 30-31.
			s.pending = [3]uint16{
				uint16(w >> 20 & 0x3FF),
				uint16(w >> 10 & 0x3FF),
				uint16(w & 0x3FF),
			}
		}
		s.npending = 3
		return
	}
	// 12-bit: one sample per 16-bit word.
	w := s.sr.read2()
	if s.packing == PackingFilledMethodA {
		s.pending[0] = w >> 4
	} else {
		s.pending[0] = w & 0xFFF
	}
	s.npending = 1
}

// writeSample encodes one unpacked sample into dst. Samples wider than one
// byte are written in little-endian byte order.
func writeSample(dst []byte, v uint64, size int) {
	switch size {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(dst, v)
	}
}

// readSample decodes one sample previously written by writeSample.
func readSample(src []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(src[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(src))
	case 4:
		return uint64(binary.LittleEndian.Uint32(src))
	case 8:
		return binary.LittleEndian.Uint64(src)
	default:
		return 0
	}
}

// dataOffset returns the start of the element's pixel data.
func (d *Decoder) dataOffset(subimage int) int64 {
	el := &d.header.Elements[subimage]
	if el.DataOffset != 0 && el.DataOffset != undefinedU32 {
		return int64(el.DataOffset)
	}
	return int64(d.header.ImageOffset)
}

// readBlock reads the requested rectangle of the element into dst as
// unpacked native samples at the resolved scalar size.
func (d *Decoder) readBlock(subimage int, dst []byte, b block) error {
	el := &d.header.Elements[subimage]
	size, ok := el.ComponentDataSize()
	if !ok {
		return fmt.Errorf("%w: bit depth %d", ErrUnsupportedComponentSize, el.BitDepth)
	}
	sampleSize := nativeSampleSize(size)
	cpp := el.Descriptor.ComponentCount()
	width := d.header.Width()
	height := d.header.Height()

	if b.x1 < 0 || b.y1 < 0 || b.x2 >= width || b.y2 >= height || b.x1 > b.x2 || b.y1 > b.y2 {
		return fmt.Errorf("dpx: block (%d,%d)-(%d,%d) outside image %dx%d",
			b.x1, b.y1, b.x2, b.y2, width, height)
	}
	if need := b.rows() * b.cols() * cpp * sampleSize; len(dst) < need {
		return fmt.Errorf("dpx: destination buffer %d bytes, need %d", len(dst), need)
	}

	if el.Encoding == EncodingRLE {
		return d.readBlockRLE(subimage, dst, b)
	}

	stream := newSampleStream(d.sr, el)
	rowBytes := nativeRowBytes(el, width)
	offset := d.dataOffset(subimage)
	di := 0

	for y := b.y1; y <= b.y2; y++ {
		d.sr.seek(offset + int64(y)*int64(rowBytes))
		stream.reset()
		// Decode the full row; samples left of the block cannot be
		// skipped without tracking bit positions.
		for i := 0; i < (b.x2+1)*cpp; i++ {
			v := stream.next()
			if i >= b.x1*cpp {
				writeSample(dst[di:], v, sampleSize)
				di += sampleSize
			}
		}
	}

	return nil
}

// readBlockRLE decodes a run-length encoded element. The encoding has no
// row index, so decoding restarts from the element origin for each block.
// A flag sample with the least significant bit set starts a run: the next
// pixel repeats count times. A clear bit means count literal pixels follow.
func (d *Decoder) readBlockRLE(subimage int, dst []byte, b block) error {
	el := &d.header.Elements[subimage]
	size, _ := el.ComponentDataSize()
	sampleSize := nativeSampleSize(size)
	cpp := el.Descriptor.ComponentCount()
	width := d.header.Width()

	d.sr.seek(d.dataOffset(subimage))
	stream := newSampleStream(d.sr, el)

	rowSamples := width * cpp
	endSample := (b.y2 + 1) * rowSamples
	pixel := make([]uint64, cpp)
	di := 0

	emit := func(idx int, v uint64) {
		y := idx / rowSamples
		x := idx % rowSamples
		if y < b.y1 || y > b.y2 || x < b.x1*cpp || x >= (b.x2+1)*cpp {
			return
		}
		writeSample(dst[di:], v, sampleSize)
		di += sampleSize
	}

	idx := 0
	for idx < endSample {
		flag := stream.next()
		count := int(flag >> 1)
		if count == 0 {
			continue
		}
		if flag&1 != 0 {
			// A run: one pixel repeated count times.
			for c := 0; c < cpp; c++ {
				pixel[c] = stream.next()
			}
			for n := 0; n < count; n++ {
				for c := 0; c < cpp; c++ {
					emit(idx, pixel[c])
					idx++
				}
			}
		} else {
			for n := 0; n < count; n++ {
				for c := 0; c < cpp; c++ {
					emit(idx, stream.next())
					idx++
				}
			}
		}
	}

	return nil
}
