package store

import (
	"io/fs"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
)

// DefaultBoltBucket is the bbolt bucket documents are kept in.
const DefaultBoltBucket = "profiles"

// Options configures the built-in store router.
type Options struct {
	// FileSystem backs fs: locations. Nil disables them.
	FileSystem fs.FS

	// HTTPClient is used for http(s) locations. Nil means HTTP is disabled
	// unless AllowHTTPFallback is true.
	HTTPClient *http.Client

	// AllowHTTPFallback enables HTTP loading with a default client.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetch durations.
	RequestTimeout time.Duration

	// GCSClient serves gs:// locations. When nil a client is created lazily
	// with application default credentials.
	GCSClient *storage.Client

	// BoltPath is the bbolt database file for bolt:// locations. Empty
	// disables them.
	BoltPath string

	// BoltBucket overrides DefaultBoltBucket.
	BoltBucket string

	Logger logrus.FieldLogger
}

// Option mutates Options prior to construction.
type Option func(*Options)

// WithFileSystem injects an fs.FS for fs: locations.
func WithFileSystem(files fs.FS) Option {
	return func(opts *Options) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables HTTP loading with a default client and an optional
// timeout.
func WithHTTPFallback(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// WithGCSClient injects the Cloud Storage client used for gs:// locations.
func WithGCSClient(client *storage.Client) Option {
	return func(opts *Options) {
		opts.GCSClient = client
	}
}

// WithBolt enables bolt:// locations backed by the database at path.
func WithBolt(path string) Option {
	return func(opts *Options) {
		opts.BoltPath = path
	}
}

// WithBoltBucket overrides the bucket name used inside the bolt database.
func WithBoltBucket(name string) Option {
	return func(opts *Options) {
		opts.BoltBucket = name
	}
}

// WithLogger routes store logs to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// NewOptions applies options and returns the resulting configuration.
func NewOptions(options ...Option) Options {
	cfg := Options{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.BoltBucket == "" {
		cfg.BoltBucket = DefaultBoltBucket
	}
	return cfg
}
