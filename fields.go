package dpx

// The enumerated codes below follow SMPTE 268M; the numeric values are the
// on-disk values.

// Descriptor identifies the channel semantics and grouping of an image
// element.
type Descriptor uint8

const (
	DescUserDefined     Descriptor = 0
	DescRed             Descriptor = 1
	DescGreen           Descriptor = 2
	DescBlue            Descriptor = 3
	DescAlpha           Descriptor = 4
	DescLuma            Descriptor = 6
	DescColorDifference Descriptor = 7
	DescDepth           Descriptor = 8
	DescCompositeVideo  Descriptor = 9
	DescRGB             Descriptor = 50
	DescRGBA            Descriptor = 51
	DescABGR            Descriptor = 52
	DescCbYCrY          Descriptor = 100
	DescCbYACrYA        Descriptor = 101
	DescCbYCr           Descriptor = 102
	DescCbYCrA          Descriptor = 103
	DescUserDefined2    Descriptor = 150
	DescUserDefined3    Descriptor = 151
	DescUserDefined4    Descriptor = 152
	DescUserDefined5    Descriptor = 153
	DescUserDefined6    Descriptor = 154
	DescUserDefined7    Descriptor = 155
	DescUserDefined8    Descriptor = 156
)

// Characteristic identifies a transfer function or colorimetric standard.
type Characteristic uint8

const (
	CharUserDefined        Characteristic = 0
	CharPrintingDensity    Characteristic = 1
	CharLinear             Characteristic = 2
	CharLogarithmic        Characteristic = 3
	CharUnspecifiedVideo   Characteristic = 4
	CharSMPTE274M          Characteristic = 5
	CharITUR709            Characteristic = 6
	CharITUR601            Characteristic = 7
	CharITUR602            Characteristic = 8
	CharNTSCCompositeVideo Characteristic = 9
	CharPALCompositeVideo  Characteristic = 10
	CharZLinear            Characteristic = 11
	CharZHomogeneous       Characteristic = 12
	CharADX                Characteristic = 13
	CharUndefined          Characteristic = 254
)

// Orientation is the pixel traversal order of the image data.
type Orientation uint16

const (
	OrientLeftToRightTopToBottom Orientation = 0
	OrientRightToLeftTopToBottom Orientation = 1
	OrientLeftToRightBottomToTop Orientation = 2
	OrientRightToLeftBottomToTop Orientation = 3
	OrientTopToBottomLeftToRight Orientation = 4
	OrientTopToBottomRightToLeft Orientation = 5
	OrientBottomToTopLeftToRight Orientation = 6
	OrientBottomToTopRightToLeft Orientation = 7
	OrientUndefined              Orientation = 0xFFFF
)

// Packing is the bit layout of samples within 32-bit words.
type Packing uint16

const (
	PackingPacked        Packing = 0
	PackingFilledMethodA Packing = 1
	PackingFilledMethodB Packing = 2
)

// Encoding is the per-element data encoding.
type Encoding uint16

const (
	EncodingNone Encoding = 0
	EncodingRLE  Encoding = 1
)

// VideoSignal identifies the video signal standard of the source material.
type VideoSignal uint8

// DataSize is the native storage kind of a component, derived from the
// element's bit depth.
type DataSize int

const (
	DataSizeByte DataSize = iota
	DataSizeWord
	DataSizeInt
	DataSizeFloat
	DataSizeDouble
)

type keyValue[K comparable, V any] struct {
	key   K
	value V
}

// lookup finds key in an ordered list of (key, value) pairs, returning
// defaultValue if no pair matches.
func lookup[K comparable, V any](key K, table []keyValue[K, V], defaultValue V) V {
	for _, kv := range table {
		if kv.key == key {
			return kv.value
		}
	}
	return defaultValue
}

var characteristicStrings = []keyValue[Characteristic, string]{
	{CharUserDefined, "User defined"},
	{CharPrintingDensity, "Printing density"},
	{CharLinear, "Linear"},
	{CharLogarithmic, "Logarithmic"},
	{CharUnspecifiedVideo, "Unspecified video"},
	{CharSMPTE274M, "SMPTE 274M"},
	{CharITUR709, "ITU-R 709-4"},
	{CharITUR601, "ITU-R 601-5 system B or G"},
	{CharITUR602, "ITU-R 601-5 system M"},
	{CharNTSCCompositeVideo, "NTSC composite video"},
	{CharPALCompositeVideo, "PAL composite video"},
	{CharZLinear, "Z depth linear"},
	{CharZHomogeneous, "Z depth homogeneous"},
	{CharADX, "ADX"},
	{CharUndefined, "Undefined"},
}

// String returns a descriptive label for the characteristic.
func (c Characteristic) String() string {
	return lookup(c, characteristicStrings, "Undefined")
}

var descriptorStrings = []keyValue[Descriptor, string]{
	{DescUserDefined, "User defined"},
	{DescUserDefined2, "User defined"},
	{DescUserDefined3, "User defined"},
	{DescUserDefined4, "User defined"},
	{DescUserDefined5, "User defined"},
	{DescUserDefined6, "User defined"},
	{DescUserDefined7, "User defined"},
	{DescUserDefined8, "User defined"},
	{DescRed, "Red"},
	{DescGreen, "Green"},
	{DescBlue, "Blue"},
	{DescAlpha, "Alpha"},
	{DescLuma, "Luma"},
	{DescColorDifference, "Color difference"},
	{DescDepth, "Depth"},
	{DescCompositeVideo, "Composite video"},
	{DescRGB, "RGB"},
	{DescRGBA, "RGBA"},
	{DescABGR, "ABGR"},
	{DescCbYCrY, "CbYCrY"},
	{DescCbYACrYA, "CbYACrYA"},
	{DescCbYCr, "CbYCr"},
	{DescCbYCrA, "CbYCrA"},
}

// String returns a descriptive label for the descriptor.
func (d Descriptor) String() string {
	return lookup(d, descriptorStrings, "Undefined")
}

var descriptorComponentCounts = []keyValue[Descriptor, int]{
	{DescRed, 1},
	{DescGreen, 1},
	{DescBlue, 1},
	{DescAlpha, 1},
	{DescLuma, 1},
	{DescColorDifference, 1},
	{DescDepth, 1},
	{DescCompositeVideo, 1},
	{DescRGB, 3},
	{DescRGBA, 4},
	{DescABGR, 4},
	{DescCbYCrY, 2},
	{DescCbYACrYA, 3},
	{DescCbYCr, 3},
	{DescCbYCrA, 4},
	{DescUserDefined2, 2},
	{DescUserDefined3, 3},
	{DescUserDefined4, 4},
	{DescUserDefined5, 5},
	{DescUserDefined6, 6},
	{DescUserDefined7, 7},
	{DescUserDefined8, 8},
}

// ComponentCount returns the number of native components per pixel for the
// descriptor. Note that for the 4:2:2 descriptors this is the per-pixel
// average component count used for storage math, not a channel count.
func (d Descriptor) ComponentCount() int {
	return lookup(d, descriptorComponentCounts, 1)
}

// Row-major transform tags, appendix B.2 of the OpenImageIO documentation.
var orientationTags = []keyValue[Orientation, int]{
	{OrientLeftToRightTopToBottom, 1},
	{OrientRightToLeftTopToBottom, 2},
	{OrientLeftToRightBottomToTop, 4},
	{OrientRightToLeftBottomToTop, 3},
	{OrientTopToBottomLeftToRight, 5},
	{OrientTopToBottomRightToLeft, 6},
	{OrientBottomToTopLeftToRight, 8},
	{OrientBottomToTopRightToLeft, 7},
}

// Tag returns the row-major orientation transform tag, 1 (no transform) for
// unknown codes.
func (o Orientation) Tag() int {
	return lookup(o, orientationTags, 1)
}

// videoSignalOmitted marks the one signal code whose attribute is suppressed
// rather than reported as "Undefined".
const videoSignalOmitted VideoSignal = 255

var videoSignalStrings = []keyValue[VideoSignal, string]{
	{0, "Undefined"},
	{1, "NTSC"},
	{2, "PAL"},
	{3, "PAL-M"},
	{4, "SECAM"},
	{50, "YCbCr ITU-R 601-5 525i, 4:3"},
	{51, "YCbCr ITU-R 601-5 625i, 4:3"},
	{100, "YCbCr ITU-R 601-5 525i, 16:9"},
	{101, "YCbCr ITU-R 601-5 625i, 16:9"},
	{150, "YCbCr 1050i, 16:9"},
	{151, "YCbCr 1125i, 16:9 (SMPTE 274M)"},
	{152, "YCbCr 1250i, 16:9"},
	{153, "YCbCr 1125i, 16:9 (SMPTE 240M)"},
	{200, "YCbCr 525p, 16:9"},
	{201, "YCbCr 625p, 16:9"},
	{202, "YCbCr 750p, 16:9 (SMPTE 296M)"},
	{203, "YCbCr 1125p, 16:9 (SMPTE 274M)"},
	{videoSignalOmitted, ""},
}

// String returns a descriptive label for the video signal code, or the empty
// string for the one code that suppresses the attribute.
func (v VideoSignal) String() string {
	return lookup(v, videoSignalStrings, "Undefined")
}
