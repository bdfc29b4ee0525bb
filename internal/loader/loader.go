// Package loader reads definition and schema documents from files, an fs.FS
// or HTTP.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-formstate/pkg/schema"
)

// Sentinel errors returned by Load.
var (
	ErrHTTPDisabled  = errors.New("loader: http sources are disabled")
	ErrUnknownSource = errors.New("loader: unknown source kind")
	ErrTooLarge      = errors.New("loader: document too large")
)

// Loader reads documents from the local filesystem, an optional fs.FS and,
// when enabled, HTTP(S).
type Loader struct {
	fsys    fs.FS
	client  *http.Client
	timeout time.Duration
}

var _ schema.Loader = (*Loader)(nil)

// New builds a Loader. HTTP is enabled by AllowHTTP or by passing a client;
// a passed client is copied and inherits RequestTimeout when it has none.
func New(options schema.LoaderOptions) *Loader {
	l := &Loader{fsys: options.FileSystem, timeout: options.RequestTimeout}
	switch {
	case options.HTTPClient != nil:
		client := *options.HTTPClient
		if client.Timeout == 0 {
			client.Timeout = l.timeout
		}
		l.client = &client
	case options.AllowHTTP:
		l.client = &http.Client{Timeout: l.timeout}
	}
	return l
}

// Load reads src and wraps the payload in a Document. Read failures are
// wrapped with the source location.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}
	data, err := l.read(ctx, src)
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}
	return schema.NewDocument(src, data)
}

func (l *Loader) read(ctx context.Context, src schema.Source) ([]byte, error) {
	switch src.Kind() {
	case schema.SourceKindFile:
		return loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		return loadFromFS(ctx, l.fsys, src.Location())
	case schema.SourceKindURL:
		if l.client == nil {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.client, src.Location(), l.timeout)
	default:
		return nil, ErrUnknownSource
	}
}
