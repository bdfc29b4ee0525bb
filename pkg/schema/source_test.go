package schema_test

import (
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formstate/pkg/schema"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		base     schema.Source
		ref      string
		wantKind schema.SourceKind
		wantLoc  string
	}{
		{
			name:     "fs sibling",
			base:     schema.SourceFromFS("forms/signup.yaml"),
			ref:      "schemas/signup.json",
			wantKind: schema.SourceKindFS,
			wantLoc:  "forms/schemas/signup.json",
		},
		{
			name:     "file sibling",
			base:     schema.SourceFromFile(filepath.Join("defs", "signup.yaml")),
			ref:      "signup.schema.json",
			wantKind: schema.SourceKindFile,
			wantLoc:  filepath.Join("defs", "signup.schema.json"),
		},
		{
			name:     "url relative",
			base:     mustURL(t, "https://example.com/forms/signup.yaml"),
			ref:      "../schemas/signup.json",
			wantKind: schema.SourceKindURL,
			wantLoc:  "https://example.com/schemas/signup.json",
		},
		{
			name:     "absolute url wins",
			base:     schema.SourceFromFS("forms/signup.yaml"),
			ref:      "https://example.com/s.json",
			wantKind: schema.SourceKindURL,
			wantLoc:  "https://example.com/s.json",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := schema.Resolve(tc.base, tc.ref)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got.Kind() != tc.wantKind || got.Location() != tc.wantLoc {
				t.Fatalf("Resolve = (%s, %q), want (%s, %q)", got.Kind(), got.Location(), tc.wantKind, tc.wantLoc)
			}
		})
	}
}

func TestParseSource(t *testing.T) {
	src, err := schema.ParseSource("https://example.com/form.yaml")
	if err != nil || src.Kind() != schema.SourceKindURL {
		t.Fatalf("expected url source, got %v (%v)", src, err)
	}
	src, err = schema.ParseSource("form.yaml")
	if err != nil || src.Kind() != schema.SourceKindFile {
		t.Fatalf("expected file source, got %v (%v)", src, err)
	}
	if _, err := schema.ParseSource(" "); err == nil {
		t.Fatalf("expected error for empty source")
	}
}

func mustURL(t *testing.T, raw string) schema.Source {
	t.Helper()
	src, err := schema.SourceFromURL(raw)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	return src
}
