// Package instruction models the per-slot merge directives applied to a base
// profile, and the plan files that carry them between runs.
package instruction

import (
	"fmt"
	"strings"
)

// Action is the closed set of things a merge can do to a slot.
type Action string

const (
	ActionKeep    Action = "keep"
	ActionReplace Action = "replace"
	ActionCombine Action = "combine"
)

// Actions lists every known action in display order.
func Actions() []Action {
	return []Action{ActionKeep, ActionReplace, ActionCombine}
}

// Known reports whether a is one of the defined actions.
func (a Action) Known() bool {
	switch a {
	case ActionKeep, ActionReplace, ActionCombine:
		return true
	default:
		return false
	}
}

// NeedsSource reports whether the action pulls a page from another document.
func (a Action) NeedsSource() bool {
	return a == ActionReplace || a == ActionCombine
}

// ParseAction converts user input into an Action.
func ParseAction(raw string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(raw)))
	if !action.Known() {
		return "", fmt.Errorf("instruction: unknown action %q", raw)
	}
	return action, nil
}

// Instruction describes how to populate one base slot.
type Instruction struct {
	Slot   uint32 `json:"slot" yaml:"slot"`
	Action Action `json:"action" yaml:"action"`
	// SourceFile is the location of the document to pull a page from. Required
	// for replace and combine, ignored for keep.
	SourceFile *string `json:"sourceFile,omitempty" yaml:"sourceFile,omitempty"`
	// TargetSlot selects the page in the source document. When nil the source
	// document's first page is used.
	TargetSlot *uint32 `json:"targetSlot,omitempty" yaml:"targetSlot,omitempty"`
}

// New starts an instruction for slot. Chain WithSourceFile/WithTargetSlot and
// check Valid on the finished value.
func New(slot uint32, action Action) Instruction {
	return Instruction{Slot: slot, Action: action}
}

// Keep is shorthand for a keep instruction.
func Keep(slot uint32) Instruction {
	return New(slot, ActionKeep)
}

// WithSourceFile returns a copy with the source location set.
func (i Instruction) WithSourceFile(location string) Instruction {
	i.SourceFile = &location
	return i
}

// WithTargetSlot returns a copy with the source slot set.
func (i Instruction) WithTargetSlot(slot uint32) Instruction {
	i.TargetSlot = &slot
	return i
}

// Valid reports whether the instruction can be applied: keep is always valid,
// replace and combine need a source file, anything else is invalid.
func (i Instruction) Valid() bool {
	switch i.Action {
	case ActionKeep:
		return true
	case ActionReplace, ActionCombine:
		return i.SourceFile != nil
	default:
		return false
	}
}

// Source returns the source location or "".
func (i Instruction) Source() string {
	if i.SourceFile == nil {
		return ""
	}
	return *i.SourceFile
}

func (i Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "slot %d: %s", i.Slot, i.Action)
	if i.SourceFile != nil {
		fmt.Fprintf(&b, " from %s", *i.SourceFile)
		if i.TargetSlot != nil {
			fmt.Fprintf(&b, " slot %d", *i.TargetSlot)
		} else {
			b.WriteString(" (first page)")
		}
	}
	return b.String()
}
