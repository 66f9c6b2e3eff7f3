package merge

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
)

var (
	ErrInvalidInstruction = errors.New("merge: invalid instruction")
	ErrTargetSlotNotFound = errors.New("merge: target slot not found")
	ErrUnknownAction      = errors.New("merge: unknown action")
	// ErrSourcePageNotFound is only produced when strict sources are enabled.
	ErrSourcePageNotFound = errors.New("merge: source page not found")
	ErrNoStore            = errors.New("merge: no configuration store configured")
)

// InvalidInstructionError reports an instruction that failed Valid.
type InvalidInstructionError struct {
	Slot   uint32
	Action instruction.Action
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("merge: invalid instruction for slot %d (action %q)", e.Slot, e.Action)
}

func (e *InvalidInstructionError) Is(target error) bool {
	return target == ErrInvalidInstruction
}

// TargetSlotNotFoundError reports a base document without the addressed slot.
type TargetSlotNotFoundError struct {
	Slot uint32
}

func (e *TargetSlotNotFoundError) Error() string {
	return fmt.Sprintf("merge: target slot %d not found in base document", e.Slot)
}

func (e *TargetSlotNotFoundError) Is(target error) bool {
	return target == ErrTargetSlotNotFound
}

// UnknownActionError reports an action outside the closed set.
type UnknownActionError struct {
	Action instruction.Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("merge: unknown action %q", e.Action)
}

func (e *UnknownActionError) Is(target error) bool {
	return target == ErrUnknownAction
}

// SourcePageNotFoundError reports a source document without the requested
// page. Returned only by engines built WithStrictSources(true).
type SourcePageNotFoundError struct {
	Slot       uint32
	Source     string
	SourceSlot *uint32
}

func (e *SourcePageNotFoundError) Error() string {
	if e.SourceSlot == nil {
		return fmt.Sprintf("merge: slot %d: source %s has no pages", e.Slot, e.Source)
	}
	return fmt.Sprintf("merge: slot %d: source %s has no page %d", e.Slot, e.Source, *e.SourceSlot)
}

func (e *SourcePageNotFoundError) Is(target error) bool {
	return target == ErrSourcePageNotFound
}
