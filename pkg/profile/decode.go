package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// UnmarshalJSON decodes a document, applying the tolerant numeric rule to
// every valid/frame_index field.
func (d *Document) UnmarshalJSON(data []byte) error {
	doc, err := decodeDocument(data)
	if err != nil {
		return err
	}
	*d = doc
	return nil
}

// UnmarshalJSON decodes a single page.
func (p *Page) UnmarshalJSON(data []byte) error {
	page, err := decodePage("", data)
	if err != nil {
		return err
	}
	*p = page
	return nil
}

// UnmarshalJSON decodes a frames group.
func (f *Frames) UnmarshalJSON(data []byte) error {
	frames, err := decodeFrames("", data)
	if err != nil {
		return err
	}
	*f = frames
	return nil
}

// UnmarshalJSON decodes a single frame.
func (f *Frame) UnmarshalJSON(data []byte) error {
	frame, err := decodeFrame("", data)
	if err != nil {
		return err
	}
	*f = frame
	return nil
}

func decodeDocument(data []byte) (Document, error) {
	obj, err := newObject("", data)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	if doc.PageCount, err = obj.strictUint(keyPageCount); err != nil {
		return Document{}, err
	}

	items, err := obj.array(keyPages)
	if err != nil {
		return Document{}, err
	}
	doc.Pages = make([]Page, 0, len(items))
	for i, item := range items {
		page, err := decodePage(indexPath(obj.path(keyPages), i), item)
		if err != nil {
			return Document{}, err
		}
		doc.Pages = append(doc.Pages, page)
	}
	if doc.DeviceInfo, err = obj.blob(keyDeviceInfo); err != nil {
		return Document{}, err
	}

	doc.Extra = obj.extra()
	return doc, nil
}

func decodePage(path string, data []byte) (Page, error) {
	obj, err := newObject(path, data)
	if err != nil {
		return Page{}, err
	}

	var page Page
	if page.Valid, err = obj.tolerantUint(keyValid); err != nil {
		return Page{}, err
	}
	if page.PageIndex, err = obj.strictUint(keyPageIndex); err != nil {
		return Page{}, err
	}
	if page.Lightness, err = obj.strictUint(keyLightness); err != nil {
		return Page{}, err
	}
	if page.SpeedMs, err = obj.strictUint(keySpeedMs); err != nil {
		return Page{}, err
	}

	framesRaw, err := obj.required(keyFrames)
	if err != nil {
		return Page{}, err
	}
	if page.Frames, err = decodeFrames(obj.path(keyFrames), framesRaw); err != nil {
		return Page{}, err
	}
	if page.Color, err = obj.blob(keyColor); err != nil {
		return Page{}, err
	}
	if page.WordPage, err = obj.blob(keyWordPage); err != nil {
		return Page{}, err
	}
	if page.Keyframes, err = obj.blob(keyKeyframes); err != nil {
		return Page{}, err
	}

	if raw, ok := obj.optional(keyComment); ok && !isNull(raw) {
		var comment string
		if err := json.Unmarshal(raw, &comment); err != nil {
			return Page{}, decodeErr(obj.path(keyComment), err)
		}
		page.Comment = &comment
	}

	page.Extra = obj.extra()
	return page, nil
}

func decodeFrames(path string, data []byte) (Frames, error) {
	obj, err := newObject(path, data)
	if err != nil {
		return Frames{}, err
	}

	var frames Frames
	if frames.Valid, err = obj.optionalTolerantUint(keyValid); err != nil {
		return Frames{}, err
	}
	if frames.FrameCount, err = obj.optionalTolerantUint(keyFrameCount); err != nil {
		return Frames{}, err
	}

	items, err := obj.array(keyFrameList)
	if err != nil {
		return Frames{}, err
	}
	frames.FrameList = make([]Frame, 0, len(items))
	for i, item := range items {
		frame, err := decodeFrame(indexPath(obj.path(keyFrameList), i), item)
		if err != nil {
			return Frames{}, err
		}
		frames.FrameList = append(frames.FrameList, frame)
	}
	return frames, nil
}

func decodeFrame(path string, data []byte) (Frame, error) {
	obj, err := newObject(path, data)
	if err != nil {
		return Frame{}, err
	}

	var frame Frame
	if frame.FrameIndex, err = obj.tolerantUint(keyFrameIndex); err != nil {
		return Frame{}, err
	}

	raw, err := obj.required(keyColors)
	if err != nil {
		return Frame{}, err
	}
	if isNull(raw) {
		return Frame{}, decodeErr(obj.path(keyColors), errors.New("expected array, got null"))
	}
	if err := json.Unmarshal(raw, &frame.Colors); err != nil {
		return Frame{}, decodeErr(obj.path(keyColors), err)
	}
	return frame, nil
}

// object is a decoded JSON object that remembers which keys were consumed so
// the rest can be carried through as Extra.
type object struct {
	at     string
	fields map[string]json.RawMessage
	used   map[string]struct{}
}

func newObject(path string, data []byte) (*object, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, decodeErr(path, errors.New("expected object"))
	}
	if !utf8.Valid(trimmed) {
		return nil, decodeErr(path, errors.New("invalid UTF-8"))
	}
	fields, err := readFields(trimmed)
	if err != nil {
		return nil, decodeErr(path, err)
	}
	return &object{at: path, fields: fields, used: make(map[string]struct{}, len(fields))}, nil
}

// readFields splits an object into its members, rejecting repeated keys that
// a plain map decode would silently collapse.
func readFields(data []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateKey, key)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		fields[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errors.New("unexpected data after object")
		}
		return nil, err
	}
	return fields, nil
}

func (o *object) path(key string) string {
	if o.at == "" {
		return key
	}
	return o.at + "." + key
}

func (o *object) optional(key string) (json.RawMessage, bool) {
	raw, ok := o.fields[key]
	if !ok {
		return nil, false
	}
	o.used[key] = struct{}{}
	return raw, true
}

// blob returns a required opaque value. The key must be present; an explicit
// null decodes as nil and encodes back to null.
func (o *object) blob(key string) (json.RawMessage, error) {
	raw, err := o.required(key)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, nil
	}
	return compactRaw(raw), nil
}

func (o *object) required(key string) (json.RawMessage, error) {
	raw, ok := o.optional(key)
	if !ok {
		return nil, &DecodeError{Path: o.path(key), Err: ErrMissingField}
	}
	return raw, nil
}

func (o *object) strictUint(key string) (uint32, error) {
	raw, err := o.required(key)
	if err != nil {
		return 0, err
	}
	n, err := decodeStrictUint(raw)
	if err != nil {
		return 0, decodeErr(o.path(key), err)
	}
	return n, nil
}

func (o *object) tolerantUint(key string) (uint32, error) {
	raw, err := o.required(key)
	if err != nil {
		return 0, err
	}
	n, err := decodeTolerantUint(raw)
	if err != nil {
		return 0, decodeErr(o.path(key), err)
	}
	return n, nil
}

func (o *object) optionalTolerantUint(key string) (*uint32, error) {
	raw, ok := o.optional(key)
	if !ok || isNull(raw) {
		return nil, nil
	}
	n, err := decodeTolerantUint(raw)
	if err != nil {
		return nil, decodeErr(o.path(key), err)
	}
	return &n, nil
}

func (o *object) array(key string) ([]json.RawMessage, error) {
	raw, err := o.required(key)
	if err != nil {
		return nil, err
	}
	if isNull(raw) {
		return nil, decodeErr(o.path(key), errors.New("expected array, got null"))
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, decodeErr(o.path(key), err)
	}
	return items, nil
}

func (o *object) extra() map[string]json.RawMessage {
	var out map[string]json.RawMessage
	for key, raw := range o.fields {
		if _, ok := o.used[key]; ok {
			continue
		}
		if out == nil {
			out = make(map[string]json.RawMessage)
		}
		out[key] = compactRaw(raw)
	}
	return out
}

// compactRaw strips insignificant whitespace so a blob compares equal to its
// re-encoded form.
func compactRaw(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return cloneRaw(bytes.TrimSpace(raw))
	}
	return json.RawMessage(buf.Bytes())
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
