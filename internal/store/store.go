// Package store implements pkg/store.ConfigurationStore by delegating to file,
// fs.FS, HTTP, Cloud Storage or bbolt strategies chosen by location scheme.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-ledmerge/pkg/profile"
	pkgstore "github.com/goliatone/go-ledmerge/pkg/store"
)

// Store routes Load and Save calls to the strategy matching the location.
type Store struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	logger    logrus.FieldLogger

	gcsMu   sync.Mutex
	gcs     *storage.Client
	ownsGCS bool
	newGCS  func(context.Context) (*storage.Client, error)

	boltMu     sync.Mutex
	boltPath   string
	boltBucket string
	bolt       *bolt.DB
}

// Ensure the implementation satisfies the public interface.
var _ pkgstore.ConfigurationStore = (*Store)(nil)

// New constructs a Store from pre-resolved options.
func New(options pkgstore.Options) *Store {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := options.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	bucket := options.BoltBucket
	if bucket == "" {
		bucket = pkgstore.DefaultBoltBucket
	}

	return &Store{
		fs:         options.FileSystem,
		http:       httpClient,
		allowHTTP:  httpClient != nil,
		timeout:    timeout,
		logger:     logger,
		gcs:        options.GCSClient,
		newGCS:     func(ctx context.Context) (*storage.Client, error) { return storage.NewClient(ctx) },
		boltPath:   options.BoltPath,
		boltBucket: bucket,
	}
}

// Load fetches and decodes the document at location.
func (s *Store) Load(ctx context.Context, location string) (profile.Document, error) {
	const op = "load"
	loc := pkgstore.ParseLocation(location)

	var (
		data []byte
		err  error
	)

	switch loc.Kind {
	case pkgstore.KindFile:
		data, err = loadFile(ctx, loc.Path)
	case pkgstore.KindFS:
		if s.fs == nil {
			return profile.Document{}, pkgstore.Unsupported(op, location, "fs support disabled")
		}
		data, err = loadFromFS(ctx, s.fs, loc.Path)
	case pkgstore.KindURL:
		if !s.allowHTTP {
			return profile.Document{}, pkgstore.Unsupported(op, location, "http support disabled")
		}
		data, err = loadHTTP(ctx, s.http, loc.Path, s.timeout)
	case pkgstore.KindGCS:
		var client *storage.Client
		if client, err = s.gcsClient(ctx); err == nil {
			data, err = loadGCS(ctx, client, loc.Path)
		}
	case pkgstore.KindBolt:
		var db *bolt.DB
		if db, err = s.boltDB(); err == nil {
			data, err = loadBolt(ctx, db, s.boltBucket, loc.Path)
		}
	default:
		return profile.Document{}, pkgstore.Unsupported(op, location, "unsupported location kind")
	}
	if err != nil {
		return profile.Document{}, classify(op, location, err)
	}

	doc, err := profile.DecodeFormat(data, profile.FormatFromLocation(loc.Path))
	if err != nil {
		return profile.Document{}, pkgstore.Invalid(op, location, err)
	}

	s.logger.WithFields(logrus.Fields{
		"location": location,
		"kind":     loc.Kind,
		"pages":    len(doc.Pages),
	}).Debug("document loaded")
	return doc, nil
}

// Save encodes doc in the format implied by location and writes it.
func (s *Store) Save(ctx context.Context, doc profile.Document, location string) error {
	const op = "save"
	loc := pkgstore.ParseLocation(location)

	data, err := profile.EncodeFormat(doc, profile.FormatFromLocation(loc.Path))
	if err != nil {
		return pkgstore.Invalid(op, location, err)
	}

	switch loc.Kind {
	case pkgstore.KindFile:
		err = saveFile(ctx, loc.Path, data)
	case pkgstore.KindFS:
		return pkgstore.Unsupported(op, location, "fs locations are read-only")
	case pkgstore.KindURL:
		return pkgstore.Unsupported(op, location, "http locations are read-only")
	case pkgstore.KindGCS:
		var client *storage.Client
		if client, err = s.gcsClient(ctx); err == nil {
			err = saveGCS(ctx, client, loc.Path, data)
		}
	case pkgstore.KindBolt:
		var db *bolt.DB
		if db, err = s.boltDB(); err == nil {
			err = saveBolt(ctx, db, s.boltBucket, loc.Path, data)
		}
	default:
		return pkgstore.Unsupported(op, location, "unsupported location kind")
	}
	if err != nil {
		var storeErr *pkgstore.Error
		if errors.As(err, &storeErr) {
			return storeErr
		}
		return pkgstore.NewError(op, location, pkgstore.KindWrite, err)
	}

	s.logger.WithFields(logrus.Fields{
		"location": location,
		"kind":     loc.Kind,
		"bytes":    len(data),
	}).Debug("document saved")
	return nil
}

// Library lists the bolt:// locations currently stored.
func (s *Store) Library(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := s.boltDB()
	if err != nil {
		return nil, err
	}
	keys, err := listBolt(db, s.boltBucket)
	if err != nil {
		return nil, pkgstore.NewError("list", "bolt://", pkgstore.KindRead, err)
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, "bolt://"+key)
	}
	return out, nil
}

// Close releases the bolt database and any Cloud Storage client the store
// created itself.
func (s *Store) Close() error {
	var errs []error

	s.boltMu.Lock()
	if s.bolt != nil {
		errs = append(errs, s.bolt.Close())
		s.bolt = nil
	}
	s.boltMu.Unlock()

	s.gcsMu.Lock()
	if s.gcs != nil && s.ownsGCS {
		errs = append(errs, s.gcs.Close())
		s.gcs = nil
		s.ownsGCS = false
	}
	s.gcsMu.Unlock()

	return errors.Join(errs...)
}

func (s *Store) gcsClient(ctx context.Context) (*storage.Client, error) {
	s.gcsMu.Lock()
	defer s.gcsMu.Unlock()
	if s.gcs != nil {
		return s.gcs, nil
	}
	client, err := s.newGCS(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	s.gcs = client
	s.ownsGCS = true
	return client, nil
}

func (s *Store) boltDB() (*bolt.DB, error) {
	s.boltMu.Lock()
	defer s.boltMu.Unlock()
	if s.bolt != nil {
		return s.bolt, nil
	}
	if s.boltPath == "" {
		return nil, pkgstore.Unsupported("open", "bolt://", "bolt support disabled")
	}
	db, err := bolt.Open(s.boltPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", s.boltPath, err)
	}
	s.bolt = db
	return db, nil
}

// classify maps strategy errors onto store error kinds.
func classify(op, location string, err error) error {
	var storeErr *pkgstore.Error
	if errors.As(err, &storeErr) {
		return storeErr
	}

	var status *statusError
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, errBoltKeyMissing),
		isGCSNotFound(err):
		return pkgstore.NotFound(op, location, err)
	case errors.As(err, &status) && status.Code == http.StatusNotFound:
		return pkgstore.NotFound(op, location, err)
	default:
		return pkgstore.NewError(op, location, pkgstore.KindRead, err)
	}
}

func contentType(path string) string {
	if profile.FormatFromLocation(path) == profile.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
