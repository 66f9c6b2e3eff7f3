// Package ledmerge merges LED device profiles: it loads a base profile and
// source profiles from a store and applies per-slot keep, replace and combine
// instructions.
package ledmerge

import (
	"context"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/merge"
	"github.com/goliatone/go-ledmerge/pkg/orchestrator"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/service"
	"github.com/goliatone/go-ledmerge/pkg/store"
)

// Document aliases profile.Document for callers that only import the root
// package.
type Document = profile.Document

// Instruction aliases instruction.Instruction.
type Instruction = instruction.Instruction

// Plan aliases instruction.Plan.
type Plan = instruction.Plan

// NewEngine constructs a merge engine reading sources from st.
func NewEngine(st store.ConfigurationStore, options ...merge.Option) *merge.Engine {
	return merge.New(st, options...)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Load fetches the document at location from st.
func Load(ctx context.Context, st store.ConfigurationStore, location string) (Document, error) {
	return service.Load(ctx, st, location)
}

// Merge applies instructions to base, loading sources from st. It is the
// simplest entry point for callers that already hold the base document.
func Merge(ctx context.Context, st store.ConfigurationStore, base Document, instructions []Instruction, options ...merge.Option) (Document, error) {
	return merge.New(st, options...).Merge(ctx, base, instructions)
}

// Run executes plan against st and saves the merged document to plan.Output,
// or to the location an orchestrator.WithOutputNamer option derives.
func Run(ctx context.Context, st store.ConfigurationStore, plan Plan, options ...orchestrator.Option) (orchestrator.Result, error) {
	orch := orchestrator.New(append([]orchestrator.Option{orchestrator.WithStore(st)}, options...)...)
	return orch.Run(ctx, orchestrator.Request{Plan: plan})
}
