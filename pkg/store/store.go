package store

import (
	"context"
	stderrors "errors"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/vango-dev/vdiff/internal/errors"
)

// ErrNotFound is returned when no snapshot is stored under a name.
var ErrNotFound = stderrors.New("store: snapshot not found")

// ErrInvalidName is returned for names that are empty, absolute or escape
// the store.
var ErrInvalidName = stderrors.New("store: invalid snapshot name")

// Store reads and writes snapshot documents by name.
type Store interface {
	// Get returns the document stored under name.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put stores data under name, replacing any existing document.
	Put(ctx context.Context, name string, data []byte) error

	// List returns the sorted names that start with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// S3Options configures the S3 client built by Open.
type S3Options struct {
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// Open returns the Store for location.
func Open(location string, opts S3Options) (Store, error) {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return NewFileStore(location)
	}

	switch scheme {
	case "file":
		u, err := url.Parse(location)
		if err != nil {
			return nil, invalidLocation(location).Wrap(err)
		}
		return NewFileStore(filepath.FromSlash(u.Host + u.Path))
	case "s3":
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, invalidLocation(location).WithSuggestion("Name the bucket: s3://bucket/prefix")
		}
		return NewS3Store(NewS3Client(opts), bucket, prefix), nil
	default:
		return nil, invalidLocation(location)
	}
}

// Split separates a snapshot location into the store location and the
// snapshot name inside it.
func Split(location string) (storeLocation, name string) {
	if strings.HasPrefix(location, "s3://") || strings.HasPrefix(location, "file://") {
		i := strings.LastIndex(location, "/")
		if i < len("file://") {
			return location, ""
		}
		return location[:i], location[i+1:]
	}
	return filepath.Dir(location), filepath.Base(location)
}

// Fetch opens the store holding location and reads the snapshot it names.
func Fetch(ctx context.Context, location string, opts S3Options) ([]byte, error) {
	root, name := Split(location)
	st, err := Open(root, opts)
	if err != nil {
		return nil, err
	}
	return st.Get(ctx, name)
}

func invalidLocation(location string) *errors.Error {
	return errors.New("E304").WithDetailf("%q is not a directory, file:// or s3:// location.", location)
}

// cleanName validates a snapshot name and returns it in canonical slash
// form.
func cleanName(name string) (string, error) {
	if name == "" || strings.Contains(name, `\`) || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", errors.New("E304").
			WithDetailf("%q is not a valid snapshot name.", name).
			Wrap(ErrInvalidName)
	}
	return path.Clean(name), nil
}

func notFound(name string) error {
	return errors.New("E301").WithDetailf("No snapshot is stored under %q.", name).Wrap(ErrNotFound)
}
