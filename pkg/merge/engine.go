// Package merge applies ordered merge instructions to a base profile, pulling
// pages from source documents through a ConfigurationStore.
//
// Instructions run strictly in order; a later instruction for the same slot
// sees the effect of earlier ones. The engine works on a private copy of the
// base document, so a failed merge leaves the caller's document untouched and
// returns no partial result. The engine holds no locks: callers that share an
// Engine across goroutines must not share documents between concurrent calls.
//
// Lookups are asymmetric on purpose. A base document without the addressed
// slot fails the merge; a source document without the requested page (or with
// no pages at all) is a silent no-op unless strict sources are enabled.
package merge

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/store"
)

// Engine applies merge instructions.
type Engine struct {
	store   store.ConfigurationStore
	logger  logrus.FieldLogger
	reindex bool
	strict  bool
	runID   func() string
}

// New constructs an Engine that resolves source documents through st.
func New(st store.ConfigurationStore, options ...Option) *Engine {
	e := &Engine{
		store:  st,
		logger: discardLogger(),
		runID:  newRunID,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Merge applies instructions to a copy of base and returns the result.
func (e *Engine) Merge(ctx context.Context, base profile.Document, instructions []instruction.Instruction) (profile.Document, error) {
	doc, _, err := e.MergeWithReport(ctx, base, instructions)
	return doc, err
}

// MergeWithReport is Merge plus a per-instruction account of what changed.
// Store errors are returned unchanged.
func (e *Engine) MergeWithReport(ctx context.Context, base profile.Document, instructions []instruction.Instruction) (profile.Document, Report, error) {
	report := Report{RunID: e.runID()}
	log := e.logger.WithField("run_id", report.RunID)
	log.WithField("instructions", len(instructions)).Debug("merge started")

	working := base.Clone()
	for i, inst := range instructions {
		step, err := e.apply(ctx, &working, i, inst)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"index":  i,
				"slot":   inst.Slot,
				"action": inst.Action,
			}).Warn("merge aborted")
			return profile.Document{}, report, err
		}
		report.Steps = append(report.Steps, step)

		entry := log.WithFields(logrus.Fields{
			"index":         i,
			"slot":          step.Slot,
			"action":        step.Action,
			"frames_before": step.FramesBefore,
			"frames_after":  step.FramesAfter,
		})
		if step.Source != "" {
			entry = entry.WithField("source", step.Source)
		}
		switch {
		case step.Applied:
			entry.Debug("instruction applied")
		case step.Skipped != SkipKeep:
			entry.WithField("reason", step.Skipped).Info("instruction skipped")
		}
	}

	log.WithFields(logrus.Fields{
		"applied": report.Applied(),
		"skipped": len(report.Skipped()),
	}).Info("merge complete")
	return working, report, nil
}

func (e *Engine) apply(ctx context.Context, doc *profile.Document, index int, inst instruction.Instruction) (Step, error) {
	if !inst.Valid() {
		return Step{}, &InvalidInstructionError{Slot: inst.Slot, Action: inst.Action}
	}

	pos := doc.PagePosition(inst.Slot)
	if pos < 0 {
		return Step{}, &TargetSlotNotFoundError{Slot: inst.Slot}
	}
	target := &doc.Pages[pos]

	step := Step{
		Index:        index,
		Slot:         inst.Slot,
		Action:       inst.Action,
		Source:       inst.Source(),
		SourceSlot:   inst.TargetSlot,
		FramesBefore: target.Frames.Len(),
	}

	switch inst.Action {
	case instruction.ActionKeep:
		step.Source = ""
		step.SourceSlot = nil
		step.Skipped = SkipKeep
	case instruction.ActionReplace, instruction.ActionCombine:
		source, reason, err := e.resolveSource(ctx, inst)
		if err != nil {
			return Step{}, err
		}
		if reason != "" {
			step.Skipped = reason
			break
		}
		if inst.Action == instruction.ActionReplace {
			replaceFrames(target, source)
		} else {
			combineFrames(target, source, e.reindex)
		}
		step.Applied = true
	default:
		return Step{}, &UnknownActionError{Action: inst.Action}
	}

	step.FramesAfter = target.Frames.Len()
	return step, nil
}

// resolveSource loads the instruction's source document and picks the page to
// copy from. A non-empty reason means there is nothing to copy.
func (e *Engine) resolveSource(ctx context.Context, inst instruction.Instruction) (profile.Page, string, error) {
	if e.store == nil {
		return profile.Page{}, "", ErrNoStore
	}
	sourceDoc, err := e.store.Load(ctx, inst.Source())
	if err != nil {
		return profile.Page{}, "", err
	}

	var (
		page   profile.Page
		ok     bool
		reason string
	)
	if inst.TargetSlot != nil {
		page, ok = sourceDoc.FindPage(*inst.TargetSlot)
		reason = SkipNoSourceSlot
	} else {
		page, ok = sourceDoc.FirstPage()
		reason = SkipNoSourcePages
	}
	if ok {
		return page, "", nil
	}
	if e.strict {
		return profile.Page{}, "", &SourcePageNotFoundError{
			Slot:       inst.Slot,
			Source:     inst.Source(),
			SourceSlot: inst.TargetSlot,
		}
	}
	return profile.Page{}, reason, nil
}

func replaceFrames(target *profile.Page, source profile.Page) {
	target.Frames = source.Frames.Clone()
}

// combineFrames appends the source frames after the target's. Only the frame
// list and its count change; the target's valid flag and page fields stay.
func combineFrames(target *profile.Page, source profile.Page, reindex bool) {
	existing := target.Frames.FrameList
	combined := make([]profile.Frame, 0, len(existing)+len(source.Frames.FrameList))
	combined = append(combined, existing...)
	for i, frame := range source.Frames.FrameList {
		copied := frame.Clone()
		if reindex {
			copied.FrameIndex = uint32(len(existing) + i)
		}
		combined = append(combined, copied)
	}
	target.Frames.FrameList = combined
	target.Frames.FrameCount = profile.Uint32(uint32(len(combined)))
}
