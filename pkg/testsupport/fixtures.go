package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ledmerge/pkg/profile"
)

// LoadDocument reads a profile fixture. Testing helpers fail the test on
// error to keep table tests concise.
func LoadDocument(t *testing.T, path string) profile.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(path)
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T, so
// fixtures can be wired in setup functions.
func LoadDocumentFromPath(path string) (profile.Document, error) {
	if path == "" {
		return profile.Document{}, errors.New("testsupport: document path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.Document{}, fmt.Errorf("testsupport: read document: %w", err)
	}
	doc, err := profile.DecodeFormat(data, profile.FormatFromLocation(path))
	if err != nil {
		return profile.Document{}, fmt.Errorf("testsupport: decode document: %w", err)
	}
	return doc, nil
}

// Frames builds n frames whose single color token is "<prefix>-<i>" and whose
// frame_index counts from zero.
func Frames(prefix string, n int) []profile.Frame {
	out := make([]profile.Frame, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, profile.Frame{
			FrameIndex: uint32(i),
			Colors:     []string{fmt.Sprintf("%s-%d", prefix, i)},
		})
	}
	return out
}

// Page builds a page at slot holding frames, with a frame count matching the
// list and a few opaque fields populated.
func Page(slot uint32, frames []profile.Frame) profile.Page {
	return profile.Page{
		Valid:     1,
		PageIndex: slot,
		Lightness: 100,
		SpeedMs:   50,
		Color:     json.RawMessage(`{"mode":1}`),
		Frames: profile.Frames{
			Valid:      profile.Uint32(1),
			FrameCount: profile.Uint32(uint32(len(frames))),
			FrameList:  frames,
		},
		Keyframes: json.RawMessage(`[]`),
	}
}

// Document wraps pages in a document with device info and a matching
// page count.
func Document(pages ...profile.Page) profile.Document {
	return profile.Document{
		DeviceInfo: json.RawMessage(`{"name":"fixture"}`),
		PageCount:  uint32(len(pages)),
		Pages:      pages,
	}
}

// Colors flattens the first color token of every frame, handy for asserting
// frame order.
func Colors(frames []profile.Frame) []string {
	out := make([]string, 0, len(frames))
	for _, frame := range frames {
		if len(frame.Colors) == 0 {
			out = append(out, "")
			continue
		}
		out = append(out, frame.Colors[0])
	}
	return out
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
