// Package review summarises a merged profile per slot and renders the result
// as text or HTML before it is saved.
package review

import (
	"fmt"
	"slices"

	"github.com/goliatone/go-ledmerge/pkg/merge"
	"github.com/goliatone/go-ledmerge/pkg/profile"
)

const (
	// DefaultMaxFrames is the frame limit of the reference keyboard firmware.
	DefaultMaxFrames = 300
)

// DefaultSlots are the slots users edit on the reference keyboard.
var DefaultSlots = []uint32{5, 6, 7}

// SlotSummary describes one slot of the merged document.
type SlotSummary struct {
	Slot  uint32
	Label string
	// Present is false when the merged document has no page for the slot.
	Present        bool
	Frames         int
	DeclaredFrames *uint32
	BaseFrames     int
	Changed        bool
	Comment        string
	Skipped        []string
	Warnings       []string
}

// Valid reports whether the slot can be written to the device.
func (s SlotSummary) Valid() bool {
	return len(s.Warnings) == 0
}

// Summary is the review of a whole merge.
type Summary struct {
	RunID     string
	MaxFrames int
	Slots     []SlotSummary
}

// Valid reports whether every slot is valid.
func (s Summary) Valid() bool {
	for _, slot := range s.Slots {
		if !slot.Valid() {
			return false
		}
	}
	return true
}

// Warnings flattens slot warnings, prefixed with the slot label.
func (s Summary) Warnings() []string {
	var out []string
	for _, slot := range s.Slots {
		for _, warning := range slot.Warnings {
			out = append(out, fmt.Sprintf("%s: %s", slot.Label, warning))
		}
	}
	return out
}

// Option customises Summarize.
type Option func(*options)

type options struct {
	slots     []uint32
	maxFrames int
	report    *merge.Report
}

// WithSlots limits the summary to slots, in that order.
func WithSlots(slots ...uint32) Option {
	return func(o *options) {
		if len(slots) > 0 {
			o.slots = append([]uint32(nil), slots...)
		}
	}
}

// WithMaxFrames overrides DefaultMaxFrames.
func WithMaxFrames(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFrames = n
		}
	}
}

// WithReport attaches the merge report so skipped instructions show up per
// slot.
func WithReport(report merge.Report) Option {
	return func(o *options) {
		o.report = &report
	}
}

// Summarize compares merged against base for each reviewed slot.
func Summarize(base, merged profile.Document, opts ...Option) Summary {
	cfg := options{
		slots:     DefaultSlots,
		maxFrames: DefaultMaxFrames,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	summary := Summary{MaxFrames: cfg.maxFrames}
	if cfg.report != nil {
		summary.RunID = cfg.report.RunID
	}

	for i, slot := range cfg.slots {
		entry := SlotSummary{
			Slot:  slot,
			Label: fmt.Sprintf("LED %d", i+1),
		}

		basePage, inBase := base.FindPage(slot)
		if inBase {
			entry.BaseFrames = basePage.Frames.Len()
		}

		page, ok := merged.FindPage(slot)
		if !ok {
			entry.Warnings = append(entry.Warnings, "slot not found in configuration")
			summary.Slots = append(summary.Slots, entry)
			continue
		}
		entry.Present = true
		entry.Frames = page.Frames.Len()
		entry.DeclaredFrames = page.Frames.FrameCount
		entry.Changed = !inBase || !framesEqual(basePage.Frames.FrameList, page.Frames.FrameList)
		if page.Comment != nil {
			entry.Comment = *page.Comment
		}

		switch {
		case entry.Frames == 0:
			entry.Warnings = append(entry.Warnings, "No frames found in configuration")
		case entry.Frames > cfg.maxFrames:
			entry.Warnings = append(entry.Warnings,
				fmt.Sprintf("Frame count (%d) exceeds maximum limit of %d", entry.Frames, cfg.maxFrames))
		}
		if entry.DeclaredFrames != nil && int(*entry.DeclaredFrames) != entry.Frames {
			entry.Warnings = append(entry.Warnings,
				fmt.Sprintf("frame_num (%d) does not match %d listed frames", *entry.DeclaredFrames, entry.Frames))
		}

		if cfg.report != nil {
			for _, step := range cfg.report.Skipped() {
				if step.Slot == slot {
					entry.Skipped = append(entry.Skipped, fmt.Sprintf("%s from %s: %s", step.Action, step.Source, step.Skipped))
				}
			}
		}
		summary.Slots = append(summary.Slots, entry)
	}
	return summary
}

func framesEqual(a, b []profile.Frame) bool {
	return slices.EqualFunc(a, b, func(x, y profile.Frame) bool {
		return x.FrameIndex == y.FrameIndex && slices.Equal(x.Colors, y.Colors)
	})
}
