// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package dpx

// attrWriter appends typed attributes, suppressing fields that hold their
// "unset" sentinel (0xFF for bytes, 0xFFFFFFFF for 32-bit fields, NaN for
// floats, empty strings). Suppressed fields are omitted entirely, never
// emitted as 0 or NaN.
type attrWriter struct {
	attrs []Attr
}

func (w *attrWriter) set(name string, v any) {
	w.attrs = append(w.attrs, Attr{Name: name, Value: v})
}

func (w *attrWriter) setInt(name string, v int) {
	w.set(name, v)
}

func (w *attrWriter) setIntU32(name string, v uint32) {
	if v == undefinedU32 {
		return
	}
	w.set(name, int(v))
}

func (w *attrWriter) setByte(name string, v uint8) {
	if v == undefinedU8 {
		return
	}
	w.set(name, int(v))
}

func (w *attrWriter) setFloat(name string, v float32) {
	if isFloatUnset(v) {
		return
	}
	w.set(name, float64(v))
}

func (w *attrWriter) setString(name, s string) {
	if s == "" {
		return
	}
	w.set(name, s)
}

// extractAttrs derives the attribute set for one subimage. It is a pure
// function of the header except for one deferred read of the user-data
// blob, which is cached on the decoder since user data is per-file, not
// per-element.
func (d *Decoder) extractAttrs(subimage int, spec *Spec) {
	h := d.header
	el := &h.Elements[subimage]
	w := &attrWriter{}

	w.setInt("oiio:BitsPerSample", int(el.BitDepth))
	w.setInt("Orientation", h.Orientation.Tag())
	w.setInt("oiio:subimages", h.ElementCount())

	w.setString("dpx:Transfer", el.Transfer.String())
	w.setString("dpx:Colorimetric", el.Colorimetric.String())

	w.setString("Copyright", h.Copyright)
	w.setString("Software", h.Creator)
	w.setString("DocumentName", h.Project)
	if h.CreationTimeDate != "" {
		w.set("DateTime", formatDateTime(h.CreationTimeDate))
	}
	if el.Encoding == EncodingRLE {
		w.set("compression", "rle")
	}
	w.setString("ImageDescription", el.Description)
	w.set("PixelAspectRatio", h.PixelAspectRatio())

	w.setString("dpx:ImageDescriptor", el.Descriptor.String())

	w.setIntU32("dpx:EncryptKey", h.EncryptKey)
	w.setIntU32("dpx:DittoKey", h.DittoKey)
	w.setIntU32("dpx:LowData", el.LowData)
	w.setFloat("dpx:LowQuantity", el.LowQuantity)
	w.setIntU32("dpx:HighData", el.HighData)
	w.setFloat("dpx:HighQuantity", el.HighQuantity)
	w.setIntU32("dpx:EndOfLinePadding", el.EndOfLinePadding)
	w.setIntU32("dpx:EndOfImagePadding", el.EndOfImagePadding)
	w.setFloat("dpx:XScannedSize", h.XScannedSize)
	w.setFloat("dpx:YScannedSize", h.YScannedSize)
	w.setIntU32("dpx:FramePosition", h.FramePosition)
	w.setIntU32("dpx:SequenceLength", h.SequenceLength)
	w.setIntU32("dpx:HeldCount", h.HeldCount)
	w.setFloat("dpx:FrameRate", h.FrameRate)
	w.setFloat("dpx:ShutterAngle", h.ShutterAngle)
	w.setString("dpx:Version", h.Version)
	w.setString("dpx:Format", h.Format)
	w.setString("dpx:FrameId", h.FrameID)
	w.setString("dpx:SlateInfo", h.SlateInfo)
	w.setString("dpx:SourceImageFileName", h.SourceImageFileName)
	w.setString("dpx:InputDevice", h.InputDevice)
	w.setString("dpx:InputDeviceSerialNumber", h.InputDeviceSerialNumber)
	w.setByte("dpx:Interlace", h.Interlace)
	w.setByte("dpx:FieldNumber", h.FieldNumber)
	w.setFloat("dpx:HorizontalSampleRate", h.HorizontalSampleRate)
	w.setFloat("dpx:VerticalSampleRate", h.VerticalSampleRate)
	w.setFloat("dpx:TemporalFrameRate", h.TemporalFrameRate)
	w.setFloat("dpx:TimeOffset", h.TimeOffset)
	w.setFloat("dpx:BlackLevel", h.BlackLevel)
	w.setFloat("dpx:BlackGain", h.BlackGain)
	w.setFloat("dpx:BreakPoint", h.BreakPoint)
	w.setFloat("dpx:WhiteLevel", h.WhiteLevel)
	w.setFloat("dpx:IntegrationTimes", h.IntegrationTimes)

	switch el.Packing {
	case PackingPacked:
		w.set("dpx:Packing", "Packed")
	case PackingFilledMethodA:
		w.set("dpx:Packing", "Filled, method A")
	case PackingFilledMethodB:
		w.set("dpx:Packing", "Filled, method B")
	}

	if h.FilmManufacturingIDCode != "" {
		w.set("smpte:KeyCode", keyCodeValues(h))
	}

	if h.TimeCode != undefinedU32 {
		w.set("smpte:TimeCode", [2]uint32{h.TimeCode, h.UserBits})
		// dpx:TimeCode is kept for backwards compatibility; prefer the
		// smpte:TimeCode attribute.
		w.set("dpx:TimeCode", TimeCode(h.TimeCode).String())
	}
	if h.UserBits != undefinedU32 {
		w.set("dpx:UserBits", int(h.UserBits))
	}

	if h.SourceTimeDate != "" {
		w.set("dpx:SourceDateTime", formatDateTime(h.SourceTimeDate))
	}
	w.setString("dpx:FilmEdgeCode", filmEdgeCode(h))

	w.setString("dpx:Signal", h.VideoSignal.String())

	if ud := d.userData(); len(ud) > 0 {
		w.set("dpx:UserData", ud)
	}

	spec.Attrs = w.attrs
}

// userData reads the per-file user data blob once and caches it for the
// lifetime of the open file.
func (d *Decoder) userData() []byte {
	if d.userBuf != nil {
		return d.userBuf
	}
	size := d.header.UserSize
	if size == 0 || size == undefinedU32 {
		return nil
	}
	if size > maxUserDataSize {
		d.opts.Warnf("dpx: user data size %d exceeds the %d byte limit, ignoring", size, maxUserDataSize)
		return nil
	}
	buf := make([]byte, size)
	d.sr.readBytesAt(buf, headerSize)
	d.userBuf = buf
	return d.userBuf
}
