package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/goliatone/go-ledmerge/pkg/profile"
	pkgstore "github.com/goliatone/go-ledmerge/pkg/store"
	"github.com/goliatone/go-ledmerge/pkg/testsupport"
)

func fixture() profile.Document {
	return testsupport.Document(
		testsupport.Page(5, testsupport.Frames("a", 2)),
		testsupport.Page(6, testsupport.Frames("b", 1)),
	)
}

func encoded(t *testing.T, doc profile.Document) []byte {
	t.Helper()
	data, err := profile.Encode(doc)
	require.NoError(t, err)
	return data
}

func TestStore_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(pkgstore.NewOptions())

	for _, name := range []string{"profile.json", "profile.yaml", "nested/dir/profile.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, s.Save(ctx, fixture(), path))

			got, err := s.Load(ctx, path)
			require.NoError(t, err)
			if diff := cmp.Diff(fixture(), got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		require.NotContains(t, entry.Name(), ".tmp", "temporary file left behind")
	}
}

func TestStore_FileURLScheme(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, encoded(t, fixture()), 0o644))

	s := New(pkgstore.NewOptions())
	got, err := s.Load(ctx, "file://"+path)
	require.NoError(t, err)
	require.Len(t, got.Pages, 2)
}

func TestStore_FileErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := New(pkgstore.NewOptions())

	_, err := s.Load(ctx, filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, pkgstore.ErrNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"page_num": 1}`), 0o644))
	_, err = s.Load(ctx, bad)
	require.ErrorIs(t, err, pkgstore.ErrInvalid)

	var decodeErr *profile.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "page_data", decodeErr.Path)
}

func TestStore_FileSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile.json")
	s := New(pkgstore.NewOptions())

	require.NoError(t, s.Save(ctx, fixture(), path))
	smaller := testsupport.Document(testsupport.Page(7, nil))
	require.NoError(t, s.Save(ctx, smaller, path))

	got, err := s.Load(ctx, path)
	require.NoError(t, err)
	require.Equal(t, []uint32{7}, got.Slots())
}

func TestStore_FileSystem(t *testing.T) {
	ctx := context.Background()
	files := fstest.MapFS{
		"profiles/kb.json": &fstest.MapFile{Data: encoded(t, fixture())},
	}

	s := New(pkgstore.NewOptions(pkgstore.WithFileSystem(files)))
	got, err := s.Load(ctx, "fs:profiles/kb.json")
	require.NoError(t, err)
	require.Equal(t, []uint32{5, 6}, got.Slots())

	_, err = s.Load(ctx, "fs:/profiles/missing.json")
	require.ErrorIs(t, err, pkgstore.ErrNotFound)

	err = s.Save(ctx, fixture(), "fs:profiles/kb.json")
	require.ErrorIs(t, err, pkgstore.ErrUnsupported)

	disabled := New(pkgstore.NewOptions())
	_, err = disabled.Load(ctx, "fs:profiles/kb.json")
	require.ErrorIs(t, err, pkgstore.ErrUnsupported)
}

func TestStore_HTTP(t *testing.T) {
	ctx := context.Background()
	body := encoded(t, fixture())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/kb.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		case "/boom.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s := New(pkgstore.NewOptions(pkgstore.WithHTTPClient(server.Client())))

	got, err := s.Load(ctx, server.URL+"/kb.json")
	require.NoError(t, err)
	require.Len(t, got.Pages, 2)

	_, err = s.Load(ctx, server.URL+"/missing.json")
	require.ErrorIs(t, err, pkgstore.ErrNotFound)

	_, err = s.Load(ctx, server.URL+"/boom.json")
	var storeErr *pkgstore.Error
	require.ErrorAs(t, err, &storeErr)
	require.Equal(t, pkgstore.KindRead, storeErr.Kind)

	err = s.Save(ctx, fixture(), server.URL+"/kb.json")
	require.ErrorIs(t, err, pkgstore.ErrUnsupported)
}

func TestStore_HTTPDisabledByDefault(t *testing.T) {
	s := New(pkgstore.NewOptions())
	_, err := s.Load(context.Background(), "https://example.com/kb.json")
	require.ErrorIs(t, err, pkgstore.ErrUnsupported)
}

func TestStore_Bolt(t *testing.T) {
	ctx := context.Background()
	s := New(pkgstore.NewOptions(pkgstore.WithBolt(filepath.Join(t.TempDir(), "library.db"))))
	defer func() {
		require.NoError(t, s.Close())
	}()

	_, err := s.Load(ctx, "bolt://keyboard.json")
	require.ErrorIs(t, err, pkgstore.ErrNotFound)

	require.NoError(t, s.Save(ctx, fixture(), "bolt://keyboard.json"))
	require.NoError(t, s.Save(ctx, fixture(), "bolt://alt.yaml"))

	got, err := s.Load(ctx, "bolt://keyboard.json")
	require.NoError(t, err)
	if diff := cmp.Diff(fixture(), got); diff != "" {
		t.Fatalf("bolt round trip mismatch (-want +got):\n%s", diff)
	}

	library, err := s.Library(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"bolt://alt.yaml", "bolt://keyboard.json"}, library)
}

func TestStore_BoltDisabled(t *testing.T) {
	s := New(pkgstore.NewOptions())
	_, err := s.Load(context.Background(), "bolt://keyboard.json")
	require.ErrorIs(t, err, pkgstore.ErrUnsupported)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(pkgstore.NewOptions())
	_, err := s.Load(ctx, filepath.Join(t.TempDir(), "profile.json"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestSplitObject(t *testing.T) {
	bucket, object, err := splitObject("profiles/team/kb.json")
	require.NoError(t, err)
	require.Equal(t, "profiles", bucket)
	require.Equal(t, "team/kb.json", object)

	for _, bad := range []string{"", "bucket", "bucket/", "/object"} {
		_, _, err := splitObject(bad)
		require.Error(t, err, bad)
	}
}

func TestClassify_GCSNotFound(t *testing.T) {
	err := classify("load", "gs://b/o", &googleapi.Error{Code: http.StatusNotFound})
	require.ErrorIs(t, err, pkgstore.ErrNotFound)

	err = classify("load", "gs://b/o", &googleapi.Error{Code: http.StatusForbidden})
	require.False(t, errors.Is(err, pkgstore.ErrNotFound))
}

func TestGCS_RequiresClient(t *testing.T) {
	_, err := loadGCS(context.Background(), nil, "bucket/kb.json")
	require.Error(t, err)

	err = saveGCS(context.Background(), nil, "bucket/kb.json", []byte("{}"))
	require.Error(t, err)
}
