package schema

import (
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Document is a fetched definition or schema payload together with the
// source it came from. Relative refs inside it resolve against that source.
type Document struct {
	source Source
	raw    []byte
}

// NewDocument copies raw. An empty payload or a nil source is an error.
func NewDocument(src Source, raw []byte) (Document, error) {
	switch {
	case src == nil:
		return Document{}, errors.New("schema: document has no source")
	case len(raw) == 0:
		return Document{}, fmt.Errorf("schema: %s: document is empty", src.Location())
	}
	return Document{source: src, raw: bytes.Clone(raw)}, nil
}

// Source returns where the document was read from.
func (d Document) Source() Source {
	return d.source
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte {
	return bytes.Clone(d.raw)
}

// Location returns the source location, or "" for a zero Document.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// IsYAML reports whether the location carries a .yaml or .yml extension.
func (d Document) IsYAML() bool {
	ext := strings.ToLower(path.Ext(d.Location()))
	return ext == ".yaml" || ext == ".yml"
}
