// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package dpx

import (
	"fmt"
	"math"
)

// PixelType is the resolved scalar type of a decoded sample.
type PixelType int

const (
	PixelTypeUnknown PixelType = iota
	PixelTypeUint8
	PixelTypeInt8
	PixelTypeUint16
	PixelTypeInt16
	PixelTypeUint32
	PixelTypeInt32
	PixelTypeFloat32
	PixelTypeFloat64
)

// Size returns the size of one sample in bytes.
func (p PixelType) Size() int {
	switch p {
	case PixelTypeUint8, PixelTypeInt8:
		return 1
	case PixelTypeUint16, PixelTypeInt16:
		return 2
	case PixelTypeUint32, PixelTypeInt32, PixelTypeFloat32:
		return 4
	case PixelTypeFloat64:
		return 8
	default:
		return 0
	}
}

func (p PixelType) String() string {
	switch p {
	case PixelTypeUint8:
		return "uint8"
	case PixelTypeInt8:
		return "int8"
	case PixelTypeUint16:
		return "uint16"
	case PixelTypeInt16:
		return "int16"
	case PixelTypeUint32:
		return "uint32"
	case PixelTypeInt32:
		return "int32"
	case PixelTypeFloat32:
		return "float32"
	case PixelTypeFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// Attr is one typed attribute. Value is one of int, float64, string, []byte,
// []int or [2]uint32.
type Attr struct {
	Name  string
	Value any
}

// Spec describes the resolved pixel layout and metadata of one subimage.
type Spec struct {
	// Pixel data window.
	Width  int
	Height int
	X      int
	Y      int

	// Full (original) image size.
	FullWidth  int
	FullHeight int

	NChannels    int
	ChannelNames []string
	// AlphaChannel is the alpha channel index, -1 if none.
	AlphaChannel int
	// ZChannel is the depth channel index, -1 if none.
	ZChannel int

	PixelType  PixelType
	ColorSpace string

	// RawColor reports whether scanline reads return native (possibly
	// packed, non-RGB) component data without conversion.
	RawColor bool

	// Attrs holds the attributes in emission order.
	Attrs []Attr
}

// Attr returns the named attribute, or nil if it was not emitted.
func (s Spec) Attr(name string) any {
	for _, a := range s.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return nil
}

// ScanlineBytes returns the destination buffer size in bytes for a read of
// the given number of rows.
func (s Spec) ScanlineBytes(rows int) int {
	return rows * s.Width * s.NChannels * s.PixelType.Size()
}

func defaultChannelNames(n int) []string {
	switch n {
	case 3:
		return []string{"R", "G", "B"}
	case 4:
		return []string{"R", "G", "B", "A"}
	default:
		return syntheticChannelNames(n)
	}
}

// syntheticChannelNames names channels of a layout with no known semantics.
func syntheticChannelNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("channel%d", i)
	}
	return names
}

// resolveSpec derives the pixel layout of one subimage from the header.
// rawColor requests native component data; it is forced on for
// single-channel layouts, which carry no colorimetry to convert.
func resolveSpec(h *Header, subimage int, rawColor bool) (Spec, error) {
	if subimage < 0 || subimage >= h.ElementCount() {
		return Spec{}, ErrBadSubimage
	}
	el := &h.Elements[subimage]

	size, ok := el.ComponentDataSize()
	if !ok {
		return Spec{}, fmt.Errorf("%w: bit depth %d", ErrUnsupportedComponentSize, el.BitDepth)
	}
	signed := el.DataSign != 0
	var pixelType PixelType
	switch size {
	case DataSizeByte:
		pixelType = PixelTypeUint8
		if signed {
			pixelType = PixelTypeInt8
		}
	case DataSizeWord:
		pixelType = PixelTypeUint16
		if signed {
			pixelType = PixelTypeInt16
		}
	case DataSizeInt:
		pixelType = PixelTypeUint32
		if signed {
			pixelType = PixelTypeInt32
		}
	case DataSizeFloat:
		pixelType = PixelTypeFloat32
	case DataSizeDouble:
		pixelType = PixelTypeFloat64
	default:
		return Spec{}, ErrUnsupportedComponentSize
	}

	spec := Spec{
		Width:        h.Width(),
		Height:       h.Height(),
		FullWidth:    h.Width(),
		FullHeight:   h.Height(),
		PixelType:    pixelType,
		AlphaChannel: -1,
		ZChannel:     -1,
		RawColor:     rawColor,
	}

	// The x/y offsets are unsigned 32-bit fields, but the data window origin
	// is signed; ignore values that would not fit rather than wrapping.
	if h.XOffset <= math.MaxInt32 {
		spec.X = int(h.XOffset)
	}
	if h.YOffset <= math.MaxInt32 {
		spec.Y = int(h.YOffset)
	}
	if int32(h.XOriginalSize) > 0 {
		spec.FullWidth = int(h.XOriginalSize)
	}
	if int32(h.YOriginalSize) > 0 {
		spec.FullHeight = int(h.YOriginalSize)
	}

	switch el.Descriptor {
	case DescRed:
		spec.ChannelNames = []string{"R"}
	case DescGreen:
		spec.ChannelNames = []string{"G"}
	case DescBlue:
		spec.ChannelNames = []string{"B"}
	case DescAlpha:
		spec.ChannelNames = []string{"A"}
		spec.AlphaChannel = 0
	case DescLuma:
		spec.ChannelNames = []string{"Y"}
	case DescDepth:
		spec.ChannelNames = []string{"Z"}
		spec.ZChannel = 0
	case DescRGB:
		spec.ChannelNames = defaultChannelNames(3)
	case DescRGBA, DescABGR:
		// The color converter swaps the ABGR byte order.
		spec.ChannelNames = defaultChannelNames(4)
		spec.AlphaChannel = 3
	case DescCbYCrY:
		if rawColor {
			spec.ChannelNames = []string{"CbCr", "Y"}
		} else {
			spec.ChannelNames = defaultChannelNames(3)
		}
	case DescCbYACrYA:
		if rawColor {
			spec.ChannelNames = []string{"CbCr", "Y", "A"}
			spec.AlphaChannel = 2
		} else {
			spec.ChannelNames = defaultChannelNames(4)
			spec.AlphaChannel = 3
		}
	case DescCbYCr:
		if rawColor {
			spec.ChannelNames = []string{"Cb", "Y", "Cr"}
		} else {
			spec.ChannelNames = defaultChannelNames(3)
		}
	case DescCbYCrA:
		if rawColor {
			spec.ChannelNames = []string{"Cb", "Y", "Cr", "A"}
			spec.AlphaChannel = 3
		} else {
			spec.ChannelNames = defaultChannelNames(4)
			spec.AlphaChannel = 3
		}
	default:
		// Unrecognized descriptors get sequential synthetic names even when
		// the component count happens to match an RGB(A) layout.
		spec.ChannelNames = syntheticChannelNames(el.Descriptor.ComponentCount())
	}
	spec.NChannels = len(spec.ChannelNames)

	// Single-channel data carries no colorimetry to convert.
	if spec.NChannels == 1 {
		spec.RawColor = true
	}

	switch el.Transfer {
	case CharLinear:
		spec.ColorSpace = "Linear"
	case CharLogarithmic:
		spec.ColorSpace = "KodakLog"
	case CharITUR709:
		spec.ColorSpace = "Rec709"
	case CharUserDefined:
		g := float64(h.Gamma)
		if !math.IsNaN(g) && !math.IsInf(g, 0) && g != 0 {
			// Format the float32 directly to keep the shortest representation.
			spec.ColorSpace = fmt.Sprintf("g%g_rec709", h.Gamma)
		}
	}

	return spec, nil
}
