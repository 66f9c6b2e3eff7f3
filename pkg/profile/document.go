package profile

import "encoding/json"

// Wire keys. The spelling is fixed by existing device profiles.
const (
	keyDeviceInfo = "product_info"
	keyPageCount  = "page_num"
	keyPages      = "page_data"

	keyValid     = "valid"
	keyPageIndex = "page_index"
	keyLightness = "lightness"
	keySpeedMs   = "speed_ms"
	keyColor     = "color"
	keyWordPage  = "word_page"
	keyFrames    = "frames"
	keyKeyframes = "keyframes"
	keyComment   = "//"

	keyFrameCount = "frame_num"
	keyFrameList  = "frame_data"

	keyFrameIndex = "frame_index"
	keyColors     = "frame_RGB"
)

// Document is a full device profile.
type Document struct {
	// DeviceInfo is passed through untouched.
	DeviceInfo json.RawMessage
	// PageCount is the declared page count. It is not authoritative, the real
	// count is len(Pages).
	PageCount uint32
	Pages     []Page
	// Extra holds top-level keys the model does not describe.
	Extra map[string]json.RawMessage
}

// Page is one addressable animation slot.
type Page struct {
	Valid     uint32
	PageIndex uint32
	Lightness uint32
	SpeedMs   uint32
	Color     json.RawMessage
	WordPage  json.RawMessage
	Frames    Frames
	Keyframes json.RawMessage
	// Comment maps to the "//" key and is preserved verbatim.
	Comment *string
	Extra   map[string]json.RawMessage
}

// Frames groups the frame list with its optional metadata.
type Frames struct {
	Valid *uint32
	// FrameCount, when set, must equal len(FrameList).
	FrameCount *uint32
	FrameList  []Frame
}

// Frame is one animation step.
type Frame struct {
	FrameIndex uint32
	// Colors are opaque tokens, one per LED.
	Colors []string
}

// FindPage returns the first page whose PageIndex equals slot.
func (d Document) FindPage(slot uint32) (Page, bool) {
	pos := d.PagePosition(slot)
	if pos < 0 {
		return Page{}, false
	}
	return d.Pages[pos], true
}

// PagePosition returns the array position of the first page whose PageIndex
// equals slot, or -1.
func (d Document) PagePosition(slot uint32) int {
	for i := range d.Pages {
		if d.Pages[i].PageIndex == slot {
			return i
		}
	}
	return -1
}

// FirstPage returns the first page in array order.
func (d Document) FirstPage() (Page, bool) {
	if len(d.Pages) == 0 {
		return Page{}, false
	}
	return d.Pages[0], true
}

// Slots lists the page indexes in array order, duplicates included.
func (d Document) Slots() []uint32 {
	out := make([]uint32, 0, len(d.Pages))
	for _, page := range d.Pages {
		out = append(out, page.PageIndex)
	}
	return out
}

// Len reports the number of frames in the list.
func (f Frames) Len() int {
	return len(f.FrameList)
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{
		DeviceInfo: cloneRaw(d.DeviceInfo),
		PageCount:  d.PageCount,
		Extra:      cloneExtra(d.Extra),
	}
	if d.Pages != nil {
		out.Pages = make([]Page, len(d.Pages))
		for i, page := range d.Pages {
			out.Pages[i] = page.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the page.
func (p Page) Clone() Page {
	out := p
	out.Color = cloneRaw(p.Color)
	out.WordPage = cloneRaw(p.WordPage)
	out.Keyframes = cloneRaw(p.Keyframes)
	out.Frames = p.Frames.Clone()
	out.Extra = cloneExtra(p.Extra)
	if p.Comment != nil {
		comment := *p.Comment
		out.Comment = &comment
	}
	return out
}

// Clone returns a deep copy of the frames group.
func (f Frames) Clone() Frames {
	out := Frames{
		Valid:      cloneUint(f.Valid),
		FrameCount: cloneUint(f.FrameCount),
	}
	if f.FrameList != nil {
		out.FrameList = make([]Frame, len(f.FrameList))
		for i, frame := range f.FrameList {
			out.FrameList[i] = frame.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := Frame{FrameIndex: f.FrameIndex}
	if f.Colors != nil {
		out.Colors = append([]string(nil), f.Colors...)
		if out.Colors == nil {
			out.Colors = []string{}
		}
	}
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage{}, raw...)
}

func cloneUint(v *uint32) *uint32 {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for key, value := range extra {
		out[key] = cloneRaw(value)
	}
	return out
}

// Uint32 returns a pointer to v. Handy for building Frames metadata.
func Uint32(v uint32) *uint32 {
	return &v
}
