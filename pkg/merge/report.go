package merge

import (
	"github.com/goliatone/go-ledmerge/pkg/instruction"
)

// Skip reasons recorded on steps that did not change the document.
const (
	SkipKeep          = "keep"
	SkipNoSourcePages = "source document has no pages"
	SkipNoSourceSlot  = "source document has no matching page"
)

// Step records what happened to one instruction.
type Step struct {
	Index        int
	Slot         uint32
	Action       instruction.Action
	Source       string
	SourceSlot   *uint32
	Applied      bool
	Skipped      string
	FramesBefore int
	FramesAfter  int
}

// Report describes a merge run. On failure it holds the steps that completed
// before the error.
type Report struct {
	RunID string
	Steps []Step
}

// Applied counts steps that changed the document.
func (r Report) Applied() int {
	n := 0
	for _, step := range r.Steps {
		if step.Applied {
			n++
		}
	}
	return n
}

// Skipped returns the steps that were silent no-ops because the source page
// was absent.
func (r Report) Skipped() []Step {
	var out []Step
	for _, step := range r.Steps {
		if step.Skipped != "" && step.Skipped != SkipKeep {
			out = append(out, step)
		}
	}
	return out
}

// Touched lists the slots changed by the run, in first-change order.
func (r Report) Touched() []uint32 {
	seen := make(map[uint32]struct{})
	var out []uint32
	for _, step := range r.Steps {
		if !step.Applied {
			continue
		}
		if _, ok := seen[step.Slot]; ok {
			continue
		}
		seen[step.Slot] = struct{}{}
		out = append(out, step.Slot)
	}
	return out
}
