package profile

import (
	"bytes"
	"encoding/json"
	"sort"
)

// MarshalJSON writes the document with its keys in the canonical order
// followed by any preserved extra keys sorted by name.
func (d Document) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.raw(keyDeviceInfo, d.DeviceInfo)
	w.value(keyPageCount, d.PageCount)
	pages := d.Pages
	if pages == nil {
		pages = []Page{}
	}
	w.value(keyPages, pages)
	w.extra(d.Extra)
	return w.finish()
}

// MarshalJSON writes a page.
func (p Page) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.value(keyValid, p.Valid)
	w.value(keyPageIndex, p.PageIndex)
	w.value(keyLightness, p.Lightness)
	w.value(keySpeedMs, p.SpeedMs)
	w.raw(keyColor, p.Color)
	w.raw(keyWordPage, p.WordPage)
	w.value(keyFrames, p.Frames)
	w.raw(keyKeyframes, p.Keyframes)
	if p.Comment != nil {
		w.value(keyComment, *p.Comment)
	}
	w.extra(p.Extra)
	return w.finish()
}

// MarshalJSON writes a frames group. Optional metadata is omitted when unset.
func (f Frames) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	if f.Valid != nil {
		w.value(keyValid, *f.Valid)
	}
	if f.FrameCount != nil {
		w.value(keyFrameCount, *f.FrameCount)
	}
	list := f.FrameList
	if list == nil {
		list = []Frame{}
	}
	w.value(keyFrameList, list)
	return w.finish()
}

// MarshalJSON writes a frame.
func (f Frame) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.value(keyFrameIndex, f.FrameIndex)
	colors := f.Colors
	if colors == nil {
		colors = []string{}
	}
	w.value(keyColors, colors)
	return w.finish()
}

// objectWriter assembles a JSON object in a fixed key order. The first error
// sticks and is reported by finish.
type objectWriter struct {
	buf   bytes.Buffer
	count int
	err   error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) key(name string) {
	if w.count > 0 {
		w.buf.WriteByte(',')
	}
	w.count++
	encoded, err := marshalNoEscape(name)
	if err != nil {
		w.err = err
		return
	}
	w.buf.Write(encoded)
	w.buf.WriteByte(':')
}

func (w *objectWriter) value(name string, v any) {
	if w.err != nil {
		return
	}
	encoded, err := marshalNoEscape(v)
	if err != nil {
		w.err = err
		return
	}
	w.key(name)
	w.buf.Write(encoded)
}

func (w *objectWriter) raw(name string, raw json.RawMessage) {
	if w.err != nil {
		return
	}
	w.key(name)
	if len(bytes.TrimSpace(raw)) == 0 {
		w.buf.WriteString("null")
		return
	}
	w.buf.Write(raw)
}

func (w *objectWriter) extra(extra map[string]json.RawMessage) {
	if len(extra) == 0 {
		return
	}
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		w.raw(key, extra[key])
	}
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

// marshalNoEscape encodes v without HTML escaping so comments and color
// tokens keep their original spelling.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
