package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-ledmerge/pkg/profile"
)

// Transformer mutates or checks a merged document before it is reviewed and
// saved.
type Transformer interface {
	Transform(ctx context.Context, doc *profile.Document) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, doc *profile.Document) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, doc *profile.Document) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, doc)
}

// ErrFrameLimit is returned by FrameLimit when a page holds too many frames.
var ErrFrameLimit = errors.New("orchestrator: frame limit exceeded")

// FrameLimit rejects documents where any of slots holds more than max frames.
// With no slots every page is checked.
func FrameLimit(max int, slots ...uint32) Transformer {
	watch := make(map[uint32]struct{}, len(slots))
	for _, slot := range slots {
		watch[slot] = struct{}{}
	}
	return TransformerFunc(func(_ context.Context, doc *profile.Document) error {
		if doc == nil || max <= 0 {
			return nil
		}
		for _, page := range doc.Pages {
			if len(watch) > 0 {
				if _, ok := watch[page.PageIndex]; !ok {
					continue
				}
			}
			if n := page.Frames.Len(); n > max {
				return fmt.Errorf("%w: slot %d has %d frames, limit is %d", ErrFrameLimit, page.PageIndex, n, max)
			}
		}
		return nil
	})
}

// SyncPageCount sets PageCount to the number of pages.
func SyncPageCount() Transformer {
	return TransformerFunc(func(_ context.Context, doc *profile.Document) error {
		if doc != nil {
			doc.PageCount = uint32(len(doc.Pages))
		}
		return nil
	})
}
