// Package wizard builds a merge plan interactively: for each editable slot the
// user picks keep, replace or combine and names the source documents.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/service"
	"github.com/goliatone/go-ledmerge/pkg/store"
)

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("wizard: aborted")
	// ErrNoSlots is returned when the base document has none of the editable
	// slots.
	ErrNoSlots = errors.New("wizard: base document has no editable slots")
)

// DefaultSlots are the editable slots of the reference keyboard.
var DefaultSlots = []uint32{5, 6, 7}

// Option configures a Wizard.
type Option func(*Wizard)

// WithStore lets the wizard check the base and source documents as they are
// entered. Without a store locations are accepted as typed.
func WithStore(st store.ConfigurationStore) Option {
	return func(w *Wizard) {
		w.store = st
	}
}

// WithSlots overrides DefaultSlots.
func WithSlots(slots ...uint32) Option {
	return func(w *Wizard) {
		if len(slots) > 0 {
			w.slots = append([]uint32(nil), slots...)
		}
	}
}

// WithLogger routes wizard logs to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithLoadLimit caps concurrent source loads during preload.
func WithLoadLimit(n int) Option {
	return func(w *Wizard) {
		w.loadLimit = n
	}
}

// Wizard drives the prompts.
type Wizard struct {
	driver    PromptDriver
	store     store.ConfigurationStore
	slots     []uint32
	logger    logrus.FieldLogger
	loadLimit int
}

// New constructs a Wizard that prompts through driver.
func New(driver PromptDriver, options ...Option) *Wizard {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	w := &Wizard{
		driver: driver,
		slots:  DefaultSlots,
		logger: discard,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w
}

var actionLabels = []string{
	"keep (leave the slot as it is)",
	"replace (overwrite frames from another file)",
	"combine (append frames from other files)",
}

var actionByIndex = []instruction.Action{
	instruction.ActionKeep,
	instruction.ActionReplace,
	instruction.ActionCombine,
}

// Run asks for the base document when base is empty, then for an action per
// slot. The returned plan is validated.
func (w *Wizard) Run(ctx context.Context, base string) (instruction.Plan, error) {
	if w.driver == nil {
		return instruction.Plan{}, errors.New("wizard: prompt driver is nil")
	}

	var err error
	if strings.TrimSpace(base) == "" {
		base, err = w.driver.Input(ctx, InputConfig{
			Message:   "Base configuration",
			Help:      "Path or URL of the profile the merge starts from.",
			Validator: required,
		})
		if err != nil {
			return instruction.Plan{}, err
		}
	}
	plan := instruction.Plan{Base: strings.TrimSpace(base)}

	slots, err := w.editableSlots(ctx, plan.Base)
	if err != nil {
		return instruction.Plan{}, err
	}

	options := make([]string, 0, len(slots))
	for i, slot := range slots {
		options = append(options, fmt.Sprintf("LED %d (slot %d)", i+1, slot))
	}
	picked, err := w.driver.MultiSelect(ctx, Choice{Message: "Slots to edit", Options: options})
	if err != nil {
		return instruction.Plan{}, err
	}

	for _, idx := range picked {
		if idx < 0 || idx >= len(slots) {
			continue
		}
		insts, err := w.askSlot(ctx, options[idx], slots[idx])
		if err != nil {
			return instruction.Plan{}, err
		}
		plan.Instructions = append(plan.Instructions, insts...)
	}

	plan.Output, err = w.driver.Input(ctx, InputConfig{
		Message: "Output location",
		Help:    "Leave empty to write next to the base with a timestamp.",
	})
	if err != nil {
		return instruction.Plan{}, err
	}
	plan.Output = strings.TrimSpace(plan.Output)

	if err := w.preload(ctx, plan); err != nil {
		return instruction.Plan{}, err
	}
	if err := plan.Validate(); err != nil {
		return instruction.Plan{}, err
	}
	w.logger.WithFields(logrus.Fields{
		"base":         plan.Base,
		"instructions": len(plan.Instructions),
	}).Debug("plan built")
	return plan, nil
}

// editableSlots narrows the configured slots to those present in the base.
func (w *Wizard) editableSlots(ctx context.Context, base string) ([]uint32, error) {
	if w.store == nil {
		return w.slots, nil
	}
	doc, err := service.Load(ctx, w.store, base)
	if err != nil {
		return nil, err
	}

	var slots []uint32
	for _, slot := range w.slots {
		page, ok := doc.FindPage(slot)
		if !ok {
			if err := w.driver.Info(ctx, fmt.Sprintf("slot %d is not in %s, skipping", slot, base)); err != nil {
				return nil, err
			}
			continue
		}
		if err := w.driver.Info(ctx, fmt.Sprintf("slot %d: %d frames", slot, page.Frames.Len())); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if len(slots) == 0 {
		return nil, ErrNoSlots
	}
	return slots, nil
}

func (w *Wizard) askSlot(ctx context.Context, label string, slot uint32) ([]instruction.Instruction, error) {
	idx, err := w.driver.Select(ctx, Choice{Message: label, Options: actionLabels})
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(actionByIndex) {
		return nil, fmt.Errorf("wizard: unknown action choice %d", idx)
	}
	action := actionByIndex[idx]
	if !action.NeedsSource() {
		return []instruction.Instruction{instruction.Keep(slot)}, nil
	}

	var out []instruction.Instruction
	for {
		inst, err := w.askSource(ctx, slot, action)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
		if action != instruction.ActionCombine {
			return out, nil
		}
		more, err := w.driver.Confirm(ctx, "Append frames from another file?")
		if err != nil {
			return nil, err
		}
		if !more {
			return out, nil
		}
	}
}

func (w *Wizard) askSource(ctx context.Context, slot uint32, action instruction.Action) (instruction.Instruction, error) {
	source, err := w.driver.Input(ctx, InputConfig{
		Message:   fmt.Sprintf("Source file for slot %d", slot),
		Validator: required,
	})
	if err != nil {
		return instruction.Instruction{}, err
	}
	inst := instruction.New(slot, action).WithSourceFile(strings.TrimSpace(source))

	target, err := w.driver.Input(ctx, InputConfig{
		Message:   "Source slot",
		Help:      "Slot to copy from in the source file. Leave empty to use its first page.",
		Validator: optionalSlot,
	})
	if err != nil {
		return instruction.Instruction{}, err
	}
	if target = strings.TrimSpace(target); target != "" {
		n, err := parseSlot(target)
		if err != nil {
			return instruction.Instruction{}, err
		}
		inst = inst.WithTargetSlot(n)
	}
	return inst, nil
}

// preload loads every source concurrently and reports pages that would make
// an instruction a silent no-op.
func (w *Wizard) preload(ctx context.Context, plan instruction.Plan) error {
	if w.store == nil {
		return nil
	}
	var locations []string
	for _, inst := range plan.Instructions {
		if inst.SourceFile != nil {
			locations = append(locations, *inst.SourceFile)
		}
	}
	if len(locations) == 0 {
		return nil
	}

	docs, err := service.LoadAll(ctx, w.store, locations, w.loadLimit)
	if err != nil {
		return err
	}
	for _, inst := range plan.Instructions {
		if inst.SourceFile == nil {
			continue
		}
		if msg := missingPage(docs[*inst.SourceFile], inst); msg != "" {
			if err := w.driver.Info(ctx, msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func missingPage(doc profile.Document, inst instruction.Instruction) string {
	if inst.TargetSlot != nil {
		if _, ok := doc.FindPage(*inst.TargetSlot); !ok {
			return fmt.Sprintf("warning: %s has no slot %d; %s will be skipped", inst.Source(), *inst.TargetSlot, inst)
		}
		return ""
	}
	if _, ok := doc.FirstPage(); !ok {
		return fmt.Sprintf("warning: %s has no pages; %s will be skipped", inst.Source(), inst)
	}
	return ""
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func optionalSlot(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := parseSlot(s)
	return err
}

func parseSlot(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("wizard: %q is not a slot number", s)
	}
	return uint32(n), nil
}
