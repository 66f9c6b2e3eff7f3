package instruction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ledmerge/pkg/profile"
)

// Plan is a saved merge: the base profile, where to write the result, and the
// ordered instructions.
type Plan struct {
	Base         string        `json:"base,omitempty" yaml:"base,omitempty"`
	Output       string        `json:"output,omitempty" yaml:"output,omitempty"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
}

// ParsePlan decodes a plan in the given format.
func ParsePlan(data []byte, format profile.Format) (Plan, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Plan{}, errors.New("instruction: plan is empty")
	}

	var plan Plan
	switch format {
	case profile.FormatYAML:
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return Plan{}, fmt.Errorf("instruction: parse plan yaml: %w", err)
		}
	case profile.FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&plan); err != nil {
			return Plan{}, fmt.Errorf("instruction: parse plan json: %w", err)
		}
	default:
		return Plan{}, fmt.Errorf("instruction: unsupported plan format %q", format)
	}

	for i := range plan.Instructions {
		plan.Instructions[i].Action = Action(strings.ToLower(strings.TrimSpace(string(plan.Instructions[i].Action))))
	}
	return plan, nil
}

// LoadPlan reads a plan file, choosing the format from its extension.
func LoadPlan(path string) (Plan, error) {
	if strings.TrimSpace(path) == "" {
		return Plan{}, errors.New("instruction: plan path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("instruction: read plan %s: %w", path, err)
	}
	return ParsePlan(data, profile.FormatFromLocation(path))
}

// Encode writes the plan in the given format.
func (p Plan) Encode(format profile.Format) ([]byte, error) {
	switch format {
	case profile.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return nil, fmt.Errorf("instruction: encode plan yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("instruction: encode plan yaml: %w", err)
		}
		return buf.Bytes(), nil
	case profile.FormatJSON, "":
		out, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("instruction: encode plan json: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, fmt.Errorf("instruction: unsupported plan format %q", format)
	}
}

// Validate reports every invalid instruction in the plan. The merge engine
// performs the same check one instruction at a time; this is for surfacing all
// problems before a run.
func (p Plan) Validate() error {
	var errs []error
	for i, inst := range p.Instructions {
		if inst.Valid() {
			continue
		}
		switch {
		case !inst.Action.Known():
			errs = append(errs, fmt.Errorf("instruction %d (slot %d): unknown action %q", i, inst.Slot, inst.Action))
		default:
			errs = append(errs, fmt.Errorf("instruction %d (slot %d): %s requires sourceFile", i, inst.Slot, inst.Action))
		}
	}
	return errors.Join(errs...)
}
