package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
)

// parseMapping reads a flag value into an instruction. keep takes a bare slot;
// replace and combine take SLOT=LOCATION or SLOT:SOURCE_SLOT=LOCATION.
func parseMapping(action instruction.Action, raw string) (instruction.Instruction, error) {
	raw = strings.TrimSpace(raw)
	if !action.NeedsSource() {
		slot, err := parseSlot(raw)
		if err != nil {
			return instruction.Instruction{}, fmt.Errorf("--%s %q: %w", action, raw, err)
		}
		return instruction.Keep(slot), nil
	}

	key, location, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(location) == "" {
		return instruction.Instruction{}, fmt.Errorf("--%s %q: expected SLOT=LOCATION", action, raw)
	}
	slotRaw, sourceRaw, hasSource := strings.Cut(key, ":")
	slot, err := parseSlot(slotRaw)
	if err != nil {
		return instruction.Instruction{}, fmt.Errorf("--%s %q: %w", action, raw, err)
	}

	inst := instruction.New(slot, action).WithSourceFile(strings.TrimSpace(location))
	if hasSource {
		source, err := parseSlot(sourceRaw)
		if err != nil {
			return instruction.Instruction{}, fmt.Errorf("--%s %q: source %w", action, raw, err)
		}
		inst = inst.WithTargetSlot(source)
	}
	return inst, nil
}

func parseSlot(raw string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("slot %q is not a number", strings.TrimSpace(raw))
	}
	return uint32(n), nil
}

// mappingsFromFlags collects keep, replace and combine flags, in that order.
func mappingsFromFlags(keep, replace, combine []string) ([]instruction.Instruction, error) {
	var out []instruction.Instruction
	groups := []struct {
		action instruction.Action
		values []string
	}{
		{instruction.ActionKeep, keep},
		{instruction.ActionReplace, replace},
		{instruction.ActionCombine, combine},
	}
	for _, group := range groups {
		for _, raw := range group.values {
			inst, err := parseMapping(group.action, raw)
			if err != nil {
				return nil, err
			}
			out = append(out, inst)
		}
	}
	return out, nil
}
