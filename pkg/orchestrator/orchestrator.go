package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/merge"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/review"
	"github.com/goliatone/go-ledmerge/pkg/store"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore injects the store used to load the base and source documents and
// to save the result.
func WithStore(st store.ConfigurationStore) Option {
	return func(o *Orchestrator) {
		o.store = st
	}
}

// WithEngineOptions forwards options to every merge engine the orchestrator
// builds.
func WithEngineOptions(options ...merge.Option) Option {
	return func(o *Orchestrator) {
		o.engineOptions = append(o.engineOptions, options...)
	}
}

// WithTransformers registers transformers that run, in order, on the merged
// document before review.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// WithReviewOptions configures the summary attached to every result.
func WithReviewOptions(options ...review.Option) Option {
	return func(o *Orchestrator) {
		o.reviewOptions = append(o.reviewOptions, options...)
	}
}

// WithOutputNamer derives the output location when a plan has none.
func WithOutputNamer(fn func(base string) string) Option {
	return func(o *Orchestrator) {
		o.outputNamer = fn
	}
}

// WithLogger routes pipeline logs to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator runs a plan end to end.
type Orchestrator struct {
	store         store.ConfigurationStore
	engineOptions []merge.Option
	transformers  []Transformer
	reviewOptions []review.Option
	outputNamer   func(string) string
	logger        logrus.FieldLogger
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.logger == nil {
		o.logger = logrus.StandardLogger()
	}
	return o
}

// Request describes one merge run.
type Request struct {
	// Plan names the base, the output and the instructions.
	Plan instruction.Plan

	// Base allows callers to bypass loading Plan.Base when they already hold
	// the document.
	Base *profile.Document

	// DryRun skips the save step.
	DryRun bool
}

// Result is the outcome of a successful run.
type Result struct {
	Document profile.Document
	Report   merge.Report
	Summary  review.Summary
	// Output is where the document was, or in a dry run would have been,
	// written.
	Output string
	Saved  bool
}

// Run executes the load → merge → transform → review → save sequence.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if o.store == nil {
		return Result{}, errors.New("orchestrator: configuration store is required")
	}

	base, err := o.resolveBase(ctx, req)
	if err != nil {
		return Result{}, err
	}

	engine := merge.New(o.store, append([]merge.Option{merge.WithLogger(o.logger)}, o.engineOptions...)...)
	merged, report, err := engine.MergeWithReport(ctx, base, req.Plan.Instructions)
	if err != nil {
		return Result{Report: report}, fmt.Errorf("orchestrator: merge: %w", err)
	}

	if err := o.applyTransformers(ctx, &merged); err != nil {
		return Result{Report: report}, err
	}

	result := Result{
		Document: merged,
		Report:   report,
		Summary:  review.Summarize(base, merged, append(slices.Clip(o.reviewOptions), review.WithReport(report))...),
		Output:   o.outputFor(req.Plan),
	}

	log := o.logger.WithFields(logrus.Fields{
		"run_id":  report.RunID,
		"applied": report.Applied(),
		"skipped": len(report.Skipped()),
	})
	if req.DryRun {
		log.Info("dry run, not saving")
		return result, nil
	}
	if result.Output == "" {
		return result, errors.New("orchestrator: output location is required")
	}
	if err := o.store.Save(ctx, merged, result.Output); err != nil {
		return result, fmt.Errorf("orchestrator: save document: %w", err)
	}
	result.Saved = true
	log.WithField("output", result.Output).Info("merged document saved")
	return result, nil
}

func (o *Orchestrator) resolveBase(ctx context.Context, req Request) (profile.Document, error) {
	if req.Base != nil {
		return *req.Base, nil
	}
	if strings.TrimSpace(req.Plan.Base) == "" {
		return profile.Document{}, errors.New("orchestrator: base location or document is required")
	}
	doc, err := o.store.Load(ctx, req.Plan.Base)
	if err != nil {
		return profile.Document{}, fmt.Errorf("orchestrator: load base: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) applyTransformers(ctx context.Context, doc *profile.Document) error {
	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, doc); err != nil {
			return fmt.Errorf("orchestrator: transform document: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) outputFor(plan instruction.Plan) string {
	if out := strings.TrimSpace(plan.Output); out != "" {
		return out
	}
	if o.outputNamer == nil || plan.Base == "" {
		return ""
	}
	return o.outputNamer(plan.Base)
}
