// Package service exposes the load and merge operations to a host command
// layer. It adds no behaviour of its own beyond wiring a store to an engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-ledmerge/pkg/instruction"
	"github.com/goliatone/go-ledmerge/pkg/merge"
	"github.com/goliatone/go-ledmerge/pkg/profile"
	"github.com/goliatone/go-ledmerge/pkg/store"
)

// ErrNoStore is returned when Load is called without a store.
var ErrNoStore = errors.New("service: configuration store is nil")

// Load fetches the document at location and returns the store's result
// unchanged. No retries, no caching.
func Load(ctx context.Context, st store.ConfigurationStore, location string) (profile.Document, error) {
	if st == nil {
		return profile.Document{}, ErrNoStore
	}
	return st.Load(ctx, location)
}

// DefaultLoadLimit caps concurrent loads in LoadAll.
const DefaultLoadLimit = 4

// LoadAll loads every distinct location concurrently, at most limit at a time.
// The first failure cancels the rest.
func LoadAll(ctx context.Context, st store.ConfigurationStore, locations []string, limit int) (map[string]profile.Document, error) {
	if st == nil {
		return nil, ErrNoStore
	}
	if limit <= 0 {
		limit = DefaultLoadLimit
	}

	var (
		mu   sync.Mutex
		docs = make(map[string]profile.Document, len(locations))
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	seen := make(map[string]struct{}, len(locations))
	for _, location := range locations {
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}

		eg.Go(func() error {
			doc, err := st.Load(gctx, location)
			if err != nil {
				return fmt.Errorf("service: load %s: %w", location, err)
			}
			mu.Lock()
			docs[location] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Commands bundles the operations a host exposes to its UI.
type Commands struct {
	Store         store.ConfigurationStore
	EngineOptions []merge.Option
	Logger        logrus.FieldLogger
}

// LoadConfig loads the document at path.
func (c Commands) LoadConfig(ctx context.Context, path string) (profile.Document, error) {
	doc, err := Load(ctx, c.Store, path)
	if err != nil {
		c.logger().WithError(err).WithField("location", path).Warn("load failed")
		return profile.Document{}, err
	}
	return doc, nil
}

// SaveConfig writes doc to location.
func (c Commands) SaveConfig(ctx context.Context, doc profile.Document, location string) error {
	if c.Store == nil {
		return ErrNoStore
	}
	return c.Store.Save(ctx, doc, location)
}

// MergeConfigs applies instructions to base with a fresh engine.
func (c Commands) MergeConfigs(ctx context.Context, base profile.Document, instructions []instruction.Instruction) (profile.Document, error) {
	return c.engine().Merge(ctx, base, instructions)
}

// MergeRequest is the wire shape of a merge call.
type MergeRequest struct {
	Base     profile.Document          `json:"baseConfig"`
	Mappings []instruction.Instruction `json:"mappings"`
}

// MergeResponse carries either the merged document or the error text.
type MergeResponse struct {
	Document *profile.Document `json:"document,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Merge runs a MergeRequest and reports failures as a string, the form UI
// bindings expect.
func (c Commands) Merge(ctx context.Context, req MergeRequest) MergeResponse {
	doc, err := c.MergeConfigs(ctx, req.Base, req.Mappings)
	if err != nil {
		return MergeResponse{Error: err.Error()}
	}
	return MergeResponse{Document: &doc}
}

func (c Commands) engine() *merge.Engine {
	options := make([]merge.Option, 0, len(c.EngineOptions)+1)
	if c.Logger != nil {
		options = append(options, merge.WithLogger(c.Logger))
	}
	options = append(options, c.EngineOptions...)
	return merge.New(c.Store, options...)
}

func (c Commands) logger() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}
