// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package dpx

import (
	"fmt"
	"math"
)

func floatFromBits(v uint64, size int) float64 {
	if size == 4 {
		return float64(math.Float32frombits(uint32(v)))
	}
	return math.Float64frombits(v)
}

func floatToBits(v float64, size int) uint64 {
	if size == 4 {
		return uint64(math.Float32bits(float32(v)))
	}
	return math.Float64bits(v)
}

// queryRGBBufferSize returns the size in bytes of the intermediate buffer
// needed to convert the block to RGB, or 0 when the native data can be read
// directly into the destination (descriptors already in RGB component order,
// or reorderable in place).
func queryRGBBufferSize(h *Header, subimage int, b block) int {
	el := &h.Elements[subimage]
	switch el.Descriptor {
	case DescCbYCrY, DescCbYACrYA, DescCbYCr, DescCbYCrA:
		size, ok := el.ComponentDataSize()
		if !ok {
			return 0
		}
		return b.rows() * b.cols() * el.Descriptor.ComponentCount() * nativeSampleSize(size)
	default:
		return 0
	}
}

// Luma coefficients for the YCbCr matrices.
const (
	kr709 = 0.2126
	kb709 = 0.0722
	kr601 = 0.299
	kb601 = 0.114
)

// colorConverter converts unpacked native samples of one element to the
// RGB(+A) layout. Samples pass through normalized [0,1] floats; integer
// results are clamped back to full scale.
type colorConverter struct {
	el         *ImageElement
	sampleSize int
	isFloat    bool
	maxValue   float64

	kr, kb float64
}

func newColorConverter(h *Header, subimage int) (*colorConverter, error) {
	el := &h.Elements[subimage]
	size, ok := el.ComponentDataSize()
	if !ok {
		return nil, fmt.Errorf("%w: bit depth %d", ErrUnsupportedComponentSize, el.BitDepth)
	}

	c := &colorConverter{
		el:         el,
		sampleSize: nativeSampleSize(size),
		isFloat:    size == DataSizeFloat || size == DataSizeDouble,
		maxValue:   float64(uint64(1)<<el.BitDepth - 1),
		kr:         kr709,
		kb:         kb709,
	}
	switch el.Colorimetric {
	case CharITUR601, CharITUR602, CharNTSCCompositeVideo, CharPALCompositeVideo:
		c.kr = kr601
		c.kb = kb601
	}
	return c, nil
}

func (c *colorConverter) load(buf []byte, i int) float64 {
	v := readSample(buf[i*c.sampleSize:], c.sampleSize)
	if c.isFloat {
		return floatFromBits(v, c.sampleSize)
	}
	return float64(v) / c.maxValue
}

func (c *colorConverter) store(buf []byte, i int, v float64) {
	if c.isFloat {
		writeSample(buf[i*c.sampleSize:], floatToBits(v, c.sampleSize), c.sampleSize)
		return
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	writeSample(buf[i*c.sampleSize:], uint64(v*c.maxValue+0.5), c.sampleSize)
}

// copySample moves a sample (e.g. alpha) through untouched.
func (c *colorConverter) copySample(src []byte, si int, dst []byte, di int) {
	writeSample(dst[di*c.sampleSize:], readSample(src[si*c.sampleSize:], c.sampleSize), c.sampleSize)
}

// rgb converts one YCbCr triple. Chroma is centered at half scale.
func (c *colorConverter) rgb(y, cb, cr float64) (r, g, b float64) {
	cb -= 0.5
	cr -= 0.5
	kg := 1 - c.kr - c.kb
	r = y + 2*(1-c.kr)*cr
	g = y - 2*c.kb*(1-c.kb)/kg*cb - 2*c.kr*(1-c.kr)/kg*cr
	b = y + 2*(1-c.kb)*cb
	return
}

// convertToRGB converts the unpacked native samples in src to the resolved
// RGB(+A) layout in dst. For the in-place descriptors (ABGR) src and dst may
// alias.
func convertToRGB(h *Header, subimage int, src, dst []byte, b block) error {
	c, err := newColorConverter(h, subimage)
	if err != nil {
		return err
	}
	el := c.el
	pixels := b.rows() * b.cols()

	switch el.Descriptor {
	case DescRGB, DescRGBA:
		// Already in the output layout.
		if len(src) > 0 && len(dst) > 0 && &src[0] != &dst[0] {
			copy(dst, src[:pixels*el.Descriptor.ComponentCount()*c.sampleSize])
		}

	case DescABGR:
		// Reverse the component order per pixel; safe in place.
		for p := 0; p < pixels; p++ {
			i := p * 4
			a := readSample(src[i*c.sampleSize:], c.sampleSize)
			bb := readSample(src[(i+1)*c.sampleSize:], c.sampleSize)
			g := readSample(src[(i+2)*c.sampleSize:], c.sampleSize)
			r := readSample(src[(i+3)*c.sampleSize:], c.sampleSize)
			writeSample(dst[i*c.sampleSize:], r, c.sampleSize)
			writeSample(dst[(i+1)*c.sampleSize:], g, c.sampleSize)
			writeSample(dst[(i+2)*c.sampleSize:], bb, c.sampleSize)
			writeSample(dst[(i+3)*c.sampleSize:], a, c.sampleSize)
		}

	case DescCbYCr:
		for p := 0; p < pixels; p++ {
			cb := c.load(src, p*3)
			y := c.load(src, p*3+1)
			cr := c.load(src, p*3+2)
			r, g, bb := c.rgb(y, cb, cr)
			c.store(dst, p*3, r)
			c.store(dst, p*3+1, g)
			c.store(dst, p*3+2, bb)
		}

	case DescCbYCrA:
		for p := 0; p < pixels; p++ {
			cb := c.load(src, p*4)
			y := c.load(src, p*4+1)
			cr := c.load(src, p*4+2)
			r, g, bb := c.rgb(y, cb, cr)
			c.store(dst, p*4, r)
			c.store(dst, p*4+1, g)
			c.store(dst, p*4+2, bb)
			c.copySample(src, p*4+3, dst, p*4+3)
		}

	case DescCbYCrY:
		// 4:2:2, two pixels share one chroma pair: Cb Y0 Cr Y1.
		if pixels%2 != 0 {
			return fmt.Errorf("dpx: odd pixel count %d in 4:2:2 block", pixels)
		}
		for p := 0; p < pixels; p += 2 {
			i := p * 2
			cb := c.load(src, i)
			y0 := c.load(src, i+1)
			cr := c.load(src, i+2)
			y1 := c.load(src, i+3)
			r0, g0, b0 := c.rgb(y0, cb, cr)
			r1, g1, b1 := c.rgb(y1, cb, cr)
			c.store(dst, p*3, r0)
			c.store(dst, p*3+1, g0)
			c.store(dst, p*3+2, b0)
			c.store(dst, (p+1)*3, r1)
			c.store(dst, (p+1)*3+1, g1)
			c.store(dst, (p+1)*3+2, b1)
		}

	case DescCbYACrYA:
		// 4:2:2 with alpha: Cb Y0 A0 Cr Y1 A1.
		if pixels%2 != 0 {
			return fmt.Errorf("dpx: odd pixel count %d in 4:2:2 block", pixels)
		}
		for p := 0; p < pixels; p += 2 {
			i := p * 3
			cb := c.load(src, i)
			y0 := c.load(src, i+1)
			a0 := i + 2
			cr := c.load(src, i+3)
			y1 := c.load(src, i+4)
			a1 := i + 5
			r0, g0, b0 := c.rgb(y0, cb, cr)
			r1, g1, b1 := c.rgb(y1, cb, cr)
			c.store(dst, p*4, r0)
			c.store(dst, p*4+1, g0)
			c.store(dst, p*4+2, b0)
			c.copySample(src, a0, dst, p*4+3)
			c.store(dst, (p+1)*4, r1)
			c.store(dst, (p+1)*4+1, g1)
			c.store(dst, (p+1)*4+2, b1)
			c.copySample(src, a1, dst, (p+1)*4+3)
		}

	default:
		return fmt.Errorf("dpx: cannot convert descriptor %s to RGB", el.Descriptor)
	}

	return nil
}
