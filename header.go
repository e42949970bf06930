// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package dpx

import (
	"encoding/binary"
	"math"
)

const (
	// magicBigEndian is the "SDPX" magic cookie of a big-endian file.
	magicBigEndian = 0x53445058
	// magicLittleEndian is the byte-swapped "XPDS" cookie of a little-endian file.
	magicLittleEndian = 0x58504453

	headerSize = 2048

	// maxElements is the number of image element slots in the header.
	maxElements = 8

	// maxUserDataSize is the SMPTE 268M limit on the user data area.
	maxUserDataSize = 1 << 20

	// Unset-field sentinels defined by SMPTE 268M.
	undefinedU8  = 0xFF
	undefinedU32 = 0xFFFFFFFF
)

// ImageElement is the header record for one of up to 8 image elements.
type ImageElement struct {
	DataSign          uint32
	LowData           uint32
	LowQuantity       float32
	HighData          uint32
	HighQuantity      float32
	Descriptor        Descriptor
	Transfer          Characteristic
	Colorimetric      Characteristic
	BitDepth          uint8
	Packing           Packing
	Encoding          Encoding
	DataOffset        uint32
	EndOfLinePadding  uint32
	EndOfImagePadding uint32
	Description       string
}

// ComponentDataSize returns the native storage kind implied by the element's
// bit depth, or ok=false for a bit depth this package cannot decode.
func (e *ImageElement) ComponentDataSize() (DataSize, bool) {
	switch e.BitDepth {
	case 8:
		return DataSizeByte, true
	case 10, 12, 16:
		return DataSizeWord, true
	case 32:
		return DataSizeFloat, true
	case 64:
		return DataSizeDouble, true
	default:
		return 0, false
	}
}

// Header is the parsed 2048-byte DPX header. It is immutable once parsed.
type Header struct {
	byteOrder binary.ByteOrder

	// File information.
	Magic            uint32
	ImageOffset      uint32
	Version          string
	FileSize         uint32
	DittoKey         uint32
	GenericSize      uint32
	IndustrySize     uint32
	UserSize         uint32
	FileName         string
	CreationTimeDate string
	Creator          string
	Project          string
	Copyright        string
	EncryptKey       uint32

	// Image information.
	Orientation     Orientation
	NumberElements  uint16
	PixelsPerLine   uint32
	LinesPerElement uint32
	Elements        [maxElements]ImageElement

	// Image origination.
	XOffset                 uint32
	YOffset                 uint32
	XCenter                 float32
	YCenter                 float32
	XOriginalSize           uint32
	YOriginalSize           uint32
	SourceImageFileName     string
	SourceTimeDate          string
	InputDevice             string
	InputDeviceSerialNumber string
	Border                  [4]uint16
	AspectRatio             [2]uint32
	XScannedSize            float32
	YScannedSize            float32

	// Film industry.
	FilmManufacturingIDCode string
	FilmType                string
	PerfsOffset             string
	Prefix                  string
	Count                   string
	Format                  string
	FramePosition           uint32
	SequenceLength          uint32
	HeldCount               uint32
	FrameRate               float32
	ShutterAngle            float32
	FrameID                 string
	SlateInfo               string

	// Television industry.
	TimeCode             uint32
	UserBits             uint32
	Interlace            uint8
	FieldNumber          uint8
	VideoSignal          VideoSignal
	HorizontalSampleRate float32
	VerticalSampleRate   float32
	TemporalFrameRate    float32
	TimeOffset           float32
	Gamma                float32
	BlackLevel           float32
	BlackGain            float32
	BreakPoint           float32
	WhiteLevel           float32
	IntegrationTimes     float32
}

// validMagic reports whether m is one of the two valid magic cookies.
func validMagic(m uint32) bool {
	return m == magicBigEndian || m == magicLittleEndian
}

// Width is the image width in pixels.
func (h *Header) Width() int {
	return int(h.PixelsPerLine)
}

// Height is the image height in pixels.
func (h *Header) Height() int {
	return int(h.LinesPerElement)
}

// ElementCount is the number of image elements, clamped to the slot count.
func (h *Header) ElementCount() int {
	n := int(h.NumberElements)
	if n > maxElements {
		n = maxElements
	}
	return n
}

// PixelAspectRatio returns the horizontal/vertical aspect ratio, 1 when the
// denominator is zero.
func (h *Header) PixelAspectRatio() float64 {
	if h.AspectRatio[1] == 0 {
		return 1.0
	}
	return float64(h.AspectRatio[0]) / float64(h.AspectRatio[1])
}

// parseHeader reads and validates the full fixed-size header. The magic
// cookie selects the byte order for everything that follows. Read failures
// surface through the streamReader's panic flow.
func parseHeader(sr *streamReader) *Header {
	sr.seek(0)
	magicBytes := make([]byte, 4)
	sr.readBytes(magicBytes)

	magic := binary.BigEndian.Uint32(magicBytes)
	switch magic {
	case magicBigEndian:
		sr.byteOrder = binary.BigEndian
	case magicLittleEndian:
		sr.byteOrder = binary.LittleEndian
		magic = magicBigEndian
	default:
		sr.stop(ErrInvalidMagic)
	}

	h := &Header{
		byteOrder: sr.byteOrder,
		Magic:     magic,
	}

	// File information section.
	h.ImageOffset = sr.read4()
	h.Version = sr.readString(8)
	h.FileSize = sr.read4()
	h.DittoKey = sr.read4()
	h.GenericSize = sr.read4()
	h.IndustrySize = sr.read4()
	h.UserSize = sr.read4()
	h.FileName = sr.readString(100)
	h.CreationTimeDate = sr.readString(24)
	h.Creator = sr.readString(100)
	h.Project = sr.readString(200)
	h.Copyright = sr.readString(200)
	h.EncryptKey = sr.read4()
	sr.skip(104)

	// Image information section.
	h.Orientation = Orientation(sr.read2())
	h.NumberElements = sr.read2()
	h.PixelsPerLine = sr.read4()
	h.LinesPerElement = sr.read4()
	for i := range h.Elements {
		el := &h.Elements[i]
		el.DataSign = sr.read4()
		el.LowData = sr.read4()
		el.LowQuantity = sr.read4f()
		el.HighData = sr.read4()
		el.HighQuantity = sr.read4f()
		el.Descriptor = Descriptor(sr.read1())
		el.Transfer = Characteristic(sr.read1())
		el.Colorimetric = Characteristic(sr.read1())
		el.BitDepth = sr.read1()
		el.Packing = Packing(sr.read2())
		el.Encoding = Encoding(sr.read2())
		el.DataOffset = sr.read4()
		el.EndOfLinePadding = sr.read4()
		el.EndOfImagePadding = sr.read4()
		el.Description = sr.readString(32)
	}
	sr.skip(52)

	// Image origination section.
	h.XOffset = sr.read4()
	h.YOffset = sr.read4()
	h.XCenter = sr.read4f()
	h.YCenter = sr.read4f()
	h.XOriginalSize = sr.read4()
	h.YOriginalSize = sr.read4()
	h.SourceImageFileName = sr.readString(100)
	h.SourceTimeDate = sr.readString(24)
	h.InputDevice = sr.readString(32)
	h.InputDeviceSerialNumber = sr.readString(32)
	for i := range h.Border {
		h.Border[i] = sr.read2()
	}
	h.AspectRatio[0] = sr.read4()
	h.AspectRatio[1] = sr.read4()
	h.XScannedSize = sr.read4f()
	h.YScannedSize = sr.read4f()
	sr.skip(20)

	// Film industry section.
	h.FilmManufacturingIDCode = sr.readString(2)
	h.FilmType = sr.readString(2)
	h.PerfsOffset = sr.readString(2)
	h.Prefix = sr.readString(6)
	h.Count = sr.readString(4)
	h.Format = sr.readString(32)
	h.FramePosition = sr.read4()
	h.SequenceLength = sr.read4()
	h.HeldCount = sr.read4()
	h.FrameRate = sr.read4f()
	h.ShutterAngle = sr.read4f()
	h.FrameID = sr.readString(32)
	h.SlateInfo = sr.readString(100)
	sr.skip(56)

	// Television industry section.
	h.TimeCode = sr.read4()
	h.UserBits = sr.read4()
	h.Interlace = sr.read1()
	h.FieldNumber = sr.read1()
	h.VideoSignal = VideoSignal(sr.read1())
	sr.skip(1)
	h.HorizontalSampleRate = sr.read4f()
	h.VerticalSampleRate = sr.read4f()
	h.TemporalFrameRate = sr.read4f()
	h.TimeOffset = sr.read4f()
	h.Gamma = sr.read4f()
	h.BlackLevel = sr.read4f()
	h.BlackGain = sr.read4f()
	h.BreakPoint = sr.read4f()
	h.WhiteLevel = sr.read4f()
	h.IntegrationTimes = sr.read4f()
	sr.skip(76)

	if h.NumberElements < 1 || h.NumberElements > maxElements {
		sr.stop(newInvalidHeaderErrorf("number of image elements %d out of range [1,%d]", h.NumberElements, maxElements))
	}

	return h
}

func isFloatUnset(f float32) bool {
	return math.IsNaN(float64(f))
}
