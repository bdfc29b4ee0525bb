package schema

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Source identifies where a definition or schema document originated so
// loaders can read files, fs.FS entries or URLs interchangeably.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Loader fetches documents for a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures the default loader strategies.
type LoaderOptions struct {
	FileSystem     fs.FS
	HTTPClient     *http.Client
	AllowHTTP      bool
	RequestTimeout time.Duration
}

type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(p string) Source {
	return fileSource{path: filepath.Clean(p)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: path.Clean(name)}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string {
	return s.raw
}

func (s urlSource) Kind() SourceKind {
	return SourceKindURL
}

// SourceFromURL validates raw and returns a URL Source.
func SourceFromURL(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// ParseSource picks a URL source for http(s) locations and a file source
// otherwise.
func ParseSource(raw string) (Source, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("schema: empty source")
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return SourceFromURL(trimmed)
	}
	return SourceFromFile(trimmed), nil
}

// Resolve returns the Source for ref relative to base. Absolute refs (URLs or
// absolute paths) are returned as-is.
func Resolve(base Source, ref string) (Source, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("schema: empty reference")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return SourceFromURL(ref)
	}
	if base == nil {
		return SourceFromFile(ref), nil
	}
	switch base.Kind() {
	case SourceKindFS:
		if path.IsAbs(ref) {
			return SourceFromFS(strings.TrimPrefix(ref, "/")), nil
		}
		return SourceFromFS(path.Join(path.Dir(base.Location()), ref)), nil
	case SourceKindURL:
		baseURL, err := url.Parse(base.Location())
		if err != nil {
			return nil, fmt.Errorf("schema: invalid base URL %q: %w", base.Location(), err)
		}
		refURL, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("schema: invalid reference %q: %w", ref, err)
		}
		return urlSource{raw: baseURL.ResolveReference(refURL).String()}, nil
	default:
		if filepath.IsAbs(ref) {
			return SourceFromFile(ref), nil
		}
		return SourceFromFile(filepath.Join(filepath.Dir(base.Location()), ref)), nil
	}
}
