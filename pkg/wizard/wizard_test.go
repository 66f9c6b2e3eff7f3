package wizard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/store"
	"github.com/goliatone/go-ledmerge/pkg/testsupport"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	prompts      []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompts = append(s.prompts, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	if cfg.Validator != nil {
		if err := cfg.Validator(val); err != nil {
			return "", err
		}
	}
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, message string) (bool, error) {
	s.prompts = append(s.prompts, message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, choice Choice) (int, error) {
	s.prompts = append(s.prompts, choice.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, choice Choice) ([]int, error) {
	s.prompts = append(s.prompts, choice.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func TestRun_BuildsPlan(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{
			"base.json",
			// slot 5 replace from the first page
			"a.json", "",
			// slot 7 combine from slot 6, then again from the first page
			"b.json", "6",
			"a.json", "",
			"out.json",
		},
		multiIdx:  [][]int{{0, 2}},
		selectIdx: []int{1, 2},
		confirm:   []bool{true, false},
	}

	plan, err := New(driver).Run(context.Background(), "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := instruction.Plan{
		Base:   "base.json",
		Output: "out.json",
		Instructions: []instruction.Instruction{
			instruction.New(5, instruction.ActionReplace).WithSourceFile("a.json"),
			instruction.New(7, instruction.ActionCombine).WithSourceFile("b.json").WithTargetSlot(6),
			instruction.New(7, instruction.ActionCombine).WithSourceFile("a.json"),
		},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_KeepNeedsNoSource(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{""},
		multiIdx:  [][]int{{1}},
		selectIdx: []int{0},
	}

	plan, err := New(driver, WithSlots(1, 2)).Run(context.Background(), "base.json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]instruction.Instruction{instruction.Keep(2)}, plan.Instructions); diff != "" {
		t.Fatalf("instructions mismatch (-want +got):\n%s", diff)
	}
	if plan.Output != "" {
		t.Fatalf("expected empty output, got %q", plan.Output)
	}
}

func TestRun_RejectsBadSourceSlot(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"a.json", "six"},
		multiIdx:  [][]int{{0}},
		selectIdx: []int{1},
	}

	_, err := New(driver).Run(context.Background(), "base.json")
	if err == nil || !strings.Contains(err.Error(), "not a slot number") {
		t.Fatalf("expected slot validation error, got %v", err)
	}
}

func TestRun_WithStore(t *testing.T) {
	st := store.NewMemory(map[string]profile.Document{
		"base.json": testsupport.Document(
			testsupport.Page(5, testsupport.Frames("b", 2)),
			testsupport.Page(7, testsupport.Frames("b", 1)),
		),
		"a.json": testsupport.Document(testsupport.Page(1, testsupport.Frames("a", 1))),
	})
	driver := &stubDriver{
		inputs:    []string{"a.json", "9", ""},
		multiIdx:  [][]int{{0}},
		selectIdx: []int{1},
	}

	plan, err := New(driver, WithStore(st)).Run(context.Background(), "base.json")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(plan.Instructions) != 1 {
		t.Fatalf("expected one instruction, got %d", len(plan.Instructions))
	}

	want := []string{
		"slot 5: 2 frames",
		"slot 6 is not in base.json, skipping",
		"slot 7: 1 frames",
		"warning: a.json has no slot 9; slot 5: replace from a.json slot 9 will be skipped",
	}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_StoreErrors(t *testing.T) {
	st := store.NewMemory(map[string]profile.Document{
		"base.json": testsupport.Document(testsupport.Page(1, nil)),
	})

	_, err := New(&stubDriver{}, WithStore(st)).Run(context.Background(), "missing.json")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = New(&stubDriver{}, WithStore(st)).Run(context.Background(), "base.json")
	if !errors.Is(err, ErrNoSlots) {
		t.Fatalf("expected ErrNoSlots, got %v", err)
	}
}

func TestRun_MissingSourceFailsPreload(t *testing.T) {
	st := store.NewMemory(map[string]profile.Document{
		"base.json": testsupport.Document(testsupport.Page(5, nil)),
	})
	driver := &stubDriver{
		inputs:    []string{"nope.json", "", ""},
		multiIdx:  [][]int{{0}},
		selectIdx: []int{2},
		confirm:   []bool{false},
	}

	_, err := New(driver, WithStore(st), WithSlots(5)).Run(context.Background(), "base.json")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected preload failure, got %v", err)
	}
}

func TestPositions(t *testing.T) {
	options := []string{"a", "b", "c"}
	if diff := cmp.Diff([]int{0, 2}, positions(options, []string{"c", "a", "z"})); diff != "" {
		t.Fatalf("positions mismatch (-want +got):\n%s", diff)
	}
	if got := positions(options, nil); got != nil {
		t.Fatalf("expected no positions, got %v", got)
	}
}
