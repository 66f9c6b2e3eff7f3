// Package store defines the persistence boundary the merge engine depends on.
// Locations are opaque strings; implementations decide what they mean. The
// built-in implementations live under internal/store and are constructed via
// the top-level ledmerge package.
package store

import (
	"context"
	"strings"

	"github.com/goliatone/go-ledmerge/pkg/profile"
)

// ConfigurationStore loads and saves profile documents by location.
type ConfigurationStore interface {
	Load(ctx context.Context, location string) (profile.Document, error)
	Save(ctx context.Context, doc profile.Document, location string) error
}

// Kind enumerates the location schemes understood by the built-in router.
type Kind string

const (
	KindFile Kind = "file"
	KindFS   Kind = "fs"
	KindURL  Kind = "url"
	KindGCS  Kind = "gcs"
	KindBolt Kind = "bolt"
)

// Location is a parsed location string.
type Location struct {
	Kind Kind
	// Path is the scheme-specific remainder: a filesystem path, an fs.FS name,
	// the full URL, bucket/object, or a bolt key.
	Path string
	Raw  string
}

// ParseLocation classifies a location string by scheme. Strings without a
// recognised scheme are treated as local file paths.
func ParseLocation(raw string) Location {
	trimmed := strings.TrimSpace(raw)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Location{Kind: KindURL, Path: trimmed, Raw: raw}
	case strings.HasPrefix(lower, "gs://"):
		return Location{Kind: KindGCS, Path: trimmed[len("gs://"):], Raw: raw}
	case strings.HasPrefix(lower, "bolt://"):
		return Location{Kind: KindBolt, Path: trimmed[len("bolt://"):], Raw: raw}
	case strings.HasPrefix(lower, "fs:"):
		return Location{Kind: KindFS, Path: strings.TrimPrefix(trimmed[len("fs:"):], "/"), Raw: raw}
	case strings.HasPrefix(lower, "file://"):
		return Location{Kind: KindFile, Path: trimmed[len("file://"):], Raw: raw}
	default:
		return Location{Kind: KindFile, Path: trimmed, Raw: raw}
	}
}

func (l Location) String() string {
	if l.Raw != "" {
		return l.Raw
	}
	return l.Path
}
