package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/merge"
	"github.com/goliatone/go-ledmerge/pkg/orchestrator"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/review"
	"github.com/goliatone/go-ledmerge/pkg/store"
	"github.com/goliatone/go-ledmerge/pkg/testsupport"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newStore() *store.Memory {
	return store.NewMemory(map[string]profile.Document{
		"base.json": testsupport.Document(
			testsupport.Page(5, testsupport.Frames("base", 2)),
			testsupport.Page(6, testsupport.Frames("base", 1)),
		),
		"a.json": testsupport.Document(testsupport.Page(1, testsupport.Frames("a", 3))),
	})
}

func newOrchestrator(st store.ConfigurationStore, options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(append([]orchestrator.Option{
		orchestrator.WithStore(st),
		orchestrator.WithLogger(quietLogger()),
		orchestrator.WithEngineOptions(merge.WithRunID(func() string { return "run-1" })),
		orchestrator.WithReviewOptions(review.WithSlots(5, 6)),
	}, options...)...)
}

func TestRun_MergesAndSaves(t *testing.T) {
	ctx := testsupport.Context()
	st := newStore()
	orch := newOrchestrator(st, orchestrator.WithOutputNamer(func(base string) string {
		return "merged-" + base
	}))

	result, err := orch.Run(ctx, orchestrator.Request{Plan: instruction.Plan{
		Base: "base.json",
		Instructions: []instruction.Instruction{
			instruction.New(5, instruction.ActionCombine).WithSourceFile("a.json"),
			instruction.Keep(6),
		},
	}})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Saved || result.Output != "merged-base.json" {
		t.Fatalf("unexpected output %q saved=%v", result.Output, result.Saved)
	}

	saved, err := st.Load(ctx, "merged-base.json")
	if err != nil {
		t.Fatalf("load saved: %v", err)
	}
	if diff := cmp.Diff(result.Document, saved); diff != "" {
		t.Fatalf("saved mismatch (-want +got):\n%s", diff)
	}
	page, _ := saved.FindPage(5)
	want := []string{"base-0", "base-1", "a-0", "a-1", "a-2"}
	if diff := cmp.Diff(want, testsupport.Colors(page.Frames.FrameList)); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}

	if result.Summary.RunID != "run-1" || len(result.Summary.Slots) != 2 {
		t.Fatalf("unexpected summary %+v", result.Summary)
	}
	if !result.Summary.Slots[0].Changed || result.Summary.Slots[1].Changed {
		t.Fatalf("expected only slot 5 changed: %+v", result.Summary.Slots)
	}
}

func TestRun_DryRunDoesNotSave(t *testing.T) {
	st := newStore()
	orch := newOrchestrator(st)

	result, err := orch.Run(testsupport.Context(), orchestrator.Request{
		Plan: instruction.Plan{
			Base:         "base.json",
			Output:       "out.json",
			Instructions: []instruction.Instruction{instruction.Keep(5)},
		},
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Saved || result.Output != "out.json" {
		t.Fatalf("unexpected result output=%q saved=%v", result.Output, result.Saved)
	}
	if diff := cmp.Diff([]string{"a.json", "base.json"}, st.Locations()); diff != "" {
		t.Fatalf("dry run wrote to store (-want +got):\n%s", diff)
	}
}

func TestRun_BaseDocumentBypassesLoad(t *testing.T) {
	st := newStore()
	base := testsupport.Document(testsupport.Page(5, nil))

	result, err := newOrchestrator(st).Run(testsupport.Context(), orchestrator.Request{
		Plan: instruction.Plan{
			Output: "out.json",
			Instructions: []instruction.Instruction{
				instruction.New(5, instruction.ActionReplace).WithSourceFile("a.json"),
			},
		},
		Base: &base,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Loads("base.json") != 0 {
		t.Fatalf("base should not be loaded from the store")
	}
	page, _ := result.Document.FindPage(5)
	if page.Frames.Len() != 3 {
		t.Fatalf("expected 3 frames, got %d", page.Frames.Len())
	}
}

func TestRun_Errors(t *testing.T) {
	st := newStore()

	cases := []struct {
		name    string
		orch    *orchestrator.Orchestrator
		req     orchestrator.Request
		wantIs  error
		wantMsg string
	}{
		{
			name:    "no store",
			orch:    orchestrator.New(orchestrator.WithLogger(quietLogger())),
			req:     orchestrator.Request{Plan: instruction.Plan{Base: "base.json"}},
			wantMsg: "configuration store is required",
		},
		{
			name:    "no base",
			orch:    newOrchestrator(st),
			wantMsg: "base location or document is required",
		},
		{
			name:   "missing base",
			orch:   newOrchestrator(st),
			req:    orchestrator.Request{Plan: instruction.Plan{Base: "nope.json"}},
			wantIs: store.ErrNotFound,
		},
		{
			name: "missing target slot",
			orch: newOrchestrator(st),
			req: orchestrator.Request{Plan: instruction.Plan{
				Base:         "base.json",
				Output:       "out.json",
				Instructions: []instruction.Instruction{instruction.Keep(9)},
			}},
			wantIs: merge.ErrTargetSlotNotFound,
		},
		{
			name: "no output",
			orch: newOrchestrator(st),
			req: orchestrator.Request{Plan: instruction.Plan{
				Base:         "base.json",
				Instructions: []instruction.Instruction{instruction.Keep(5)},
			}},
			wantMsg: "output location is required",
		},
		{
			name: "frame limit",
			orch: newOrchestrator(st, orchestrator.WithTransformers(orchestrator.FrameLimit(4, 5))),
			req: orchestrator.Request{Plan: instruction.Plan{
				Base:   "base.json",
				Output: "out.json",
				Instructions: []instruction.Instruction{
					instruction.New(5, instruction.ActionCombine).WithSourceFile("a.json"),
				},
			}},
			wantIs: orchestrator.ErrFrameLimit,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.orch.Run(context.Background(), tc.req)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.wantIs != nil && !errors.Is(err, tc.wantIs) {
				t.Fatalf("expected %v, got %v", tc.wantIs, err)
			}
			if tc.wantMsg != "" && !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected %q in %q", tc.wantMsg, err.Error())
			}
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newOrchestrator(newStore()).Run(ctx, orchestrator.Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTransformers(t *testing.T) {
	doc := testsupport.Document(
		testsupport.Page(1, testsupport.Frames("x", 5)),
		testsupport.Page(5, testsupport.Frames("y", 2)),
	)
	doc.PageCount = 7

	if err := orchestrator.FrameLimit(3, 5).Transform(context.Background(), &doc); err != nil {
		t.Fatalf("slot 1 is not watched: %v", err)
	}
	err := orchestrator.FrameLimit(3).Transform(context.Background(), &doc)
	if !errors.Is(err, orchestrator.ErrFrameLimit) || !strings.Contains(err.Error(), "slot 1 has 5 frames") {
		t.Fatalf("unexpected error %v", err)
	}

	if err := orchestrator.SyncPageCount().Transform(context.Background(), &doc); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if doc.PageCount != 2 {
		t.Fatalf("expected page count 2, got %d", doc.PageCount)
	}

	var nilFn orchestrator.TransformerFunc
	if err := nilFn.Transform(context.Background(), &doc); err != nil {
		t.Fatalf("nil func should be a no-op: %v", err)
	}
}
