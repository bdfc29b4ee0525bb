package httpform_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	backend "github.com/redis/go-redis/v9"

	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/drafts"
	"github.com/goliatone/go-formstate/pkg/hosts/httpform"
	"github.com/goliatone/go-formstate/pkg/validate"
)

const signup = `
id: signup
fields:
  - name: email
    type: email
    rules:
      required: true
  - name: age
    type: number
    rules:
      min: 18
  - name: owner.name
    type: text
  - name: plan
    type: radio
    options: [free, pro]
`

type submitBody struct {
	Values map[string]any  `json:"values"`
	Errors validate.Errors `json:"errors"`
}

func newHandler(t *testing.T, opts ...httpform.Option) http.Handler {
	t.Helper()
	def, err := definition.Parse([]byte(signup), "signup.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	h, err := httpform.NewHandler(context.Background(), def, opts...)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return h
}

func do(t *testing.T, h http.Handler, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPostFormRejectsInvalidValues(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/form", "application/x-www-form-urlencoded", "email=&age=12")

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	var body submitBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := map[string]string{}
	for name, err := range body.Errors {
		got[name] = err.Type
	}
	want := map[string]string{"email": validate.KindRequired, "age": validate.KindMin}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestPostFormAcceptsNestedJSON(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/form", "application/json",
		`{"email":"ada@example.com","age":"36","owner":{"name":"Ada"},"plan":"pro"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body submitBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"email": "ada@example.com",
		"age":   "36",
		"owner": map[string]any{"name": "Ada"},
		"plan":  "pro",
	}
	if diff := cmp.Diff(want, body.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestPostFormRejectsMalformedJSON(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodPost, "/form", "application/json", `{"email":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetFormDescribesDefinition(t *testing.T) {
	h := newHandler(t)
	rec := do(t, h, http.MethodGet, "/form", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Definition struct {
			ID string `json:"id"`
		} `json:"definition"`
		State struct {
			SubmitCount int `json:"submitCount"`
		} `json:"state"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Definition.ID != "signup" || body.State.SubmitCount != 0 {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestDraftRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	h := newHandler(t, httpform.WithDrafts(drafts.NewFromClient(client)))

	rec := do(t, h, http.MethodPut, "/form/drafts/d1", "application/json", `{"email":"ada@example.com","plan":"pro"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/form/drafts/d1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Values map[string]any `json:"values"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Values["email"] != "ada@example.com" || body.Values["plan"] != "pro" {
		t.Fatalf("unexpected restored values %v", body.Values)
	}

	rec = do(t, h, http.MethodGet, "/form/drafts/missing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
