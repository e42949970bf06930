// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package dpx

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var errShortRead = errors.New("short read")

func newStreamReader(r io.ReaderAt, byteOrder binary.ByteOrder) *streamReader {
	return &streamReader{
		r:         r,
		byteOrder: byteOrder,
	}
}

// streamReader wraps an io.ReaderAt with a current offset and typed read
// helpers. All multi-byte reads honor byteOrder.
// Note that this is not thread safe.
type streamReader struct {
	r         io.ReaderAt
	byteOrder binary.ByteOrder

	offset int64
	buf    []byte

	readErr error
}

func (e *streamReader) allocateBuf(length int) {
	if length > cap(e.buf) {
		e.buf = make([]byte, length)
	}
}

func (e *streamReader) pos() int64 {
	return e.offset
}

func (e *streamReader) seek(pos int64) {
	e.offset = pos
}

func (e *streamReader) skip(n int64) {
	e.offset += n
}

// readBytesVolatile reads n bytes at the current offset into the shared
// buffer. The returned slice is only valid until the next read.
func (e *streamReader) readBytesVolatile(n int) []byte {
	e.allocateBuf(n)
	n2, err := e.r.ReadAt(e.buf[:n], e.offset)
	if err != nil && !(err == io.EOF && n2 == n) {
		e.stop(err)
	}
	if n2 != n {
		e.stop(errShortRead)
	}
	e.offset += int64(n)
	return e.buf[:n]
}

// readBytesAt reads len(b) bytes at the given absolute offset without
// touching the current offset.
func (e *streamReader) readBytesAt(b []byte, pos int64) {
	n, err := e.r.ReadAt(b, pos)
	if err != nil && !(err == io.EOF && n == len(b)) {
		e.stop(err)
	}
	if n != len(b) {
		e.stop(errShortRead)
	}
}

func (e *streamReader) readBytes(b []byte) {
	e.readBytesAt(b, e.offset)
	e.offset += int64(len(b))
}

func (e *streamReader) read1() uint8 {
	b := e.readBytesVolatile(1)
	return b[0]
}

func (e *streamReader) read2() uint16 {
	b := e.readBytesVolatile(2)
	return e.byteOrder.Uint16(b)
}

func (e *streamReader) read4() uint32 {
	b := e.readBytesVolatile(4)
	return e.byteOrder.Uint32(b)
}

func (e *streamReader) read4f() float32 {
	return math.Float32frombits(e.read4())
}

func (e *streamReader) read8() uint64 {
	b := e.readBytesVolatile(8)
	return e.byteOrder.Uint64(b)
}

func (e *streamReader) stop(err error) {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		e.readErr = err
	}
	panic(errStop)
}
