// Package httpform serves a form definition over HTTP. Each request gets a
// fresh controller: posted values are written into its elements and the
// submit outcome is returned as JSON.
package httpform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formstate/internal/logging"
	"github.com/goliatone/go-formstate/pkg/definition"
	"github.com/goliatone/go-formstate/pkg/drafts"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
	"github.com/goliatone/go-formstate/pkg/validate"
)

const maxBodySize = 1 << 20

// DraftStore persists in-progress values. *drafts.Store implements it.
type DraftStore interface {
	Save(ctx context.Context, formID, draftID string, values map[string]any) error
	Load(ctx context.Context, formID, draftID string) (drafts.Draft, error)
}

// Handler serves one form definition.
type Handler struct {
	def      *definition.Form
	adapter  validate.SchemaAdapter
	loader   schema.Loader
	logger   *slog.Logger
	observer form.Observer
	drafts   DraftStore
	router   chi.Router
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithObserver attaches an observer to every per-request controller.
func WithObserver(obs form.Observer) Option {
	return func(h *Handler) {
		h.observer = obs
	}
}

// WithDrafts enables the draft routes.
func WithDrafts(store DraftStore) Option {
	return func(h *Handler) {
		h.drafts = store
	}
}

// WithLoader sets the loader used to resolve the definition's schema ref.
func WithLoader(l schema.Loader) Option {
	return func(h *Handler) {
		h.loader = l
	}
}

// NewHandler builds the router. The schema adapter is built once and shared
// by every request.
func NewHandler(ctx context.Context, def *definition.Form, opts ...Option) (*Handler, error) {
	if def == nil {
		return nil, errors.New("httpform: definition is nil")
	}
	h := &Handler{def: def, logger: logging.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	adapter, err := def.Adapter(ctx, h.loader)
	if err != nil {
		return nil, fmt.Errorf("httpform: schema: %w", err)
	}
	h.adapter = adapter

	r := chi.NewRouter()
	r.Get("/form", h.getForm)
	r.Post("/form", h.postForm)
	if h.drafts != nil {
		r.Put("/form/drafts/{draftID}", h.putDraft)
		r.Get("/form/drafts/{draftID}", h.getDraft)
	}
	h.router = r
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

type formResponse struct {
	Definition *definition.Form `json:"definition"`
	Values     map[string]any   `json:"values"`
	State      form.State       `json:"state"`
}

type submitResponse struct {
	Values map[string]any  `json:"values,omitempty"`
	Errors validate.Errors `json:"errors,omitempty"`
	State  form.State      `json:"state"`
}

func (h *Handler) controller() *form.Controller {
	opts := h.def.Options()
	if h.adapter != nil {
		opts = append(opts, form.WithSchema(h.adapter, validate.SchemaOptions{AbortEarly: h.def.Schema.AbortEarly}))
	}
	opts = append(opts, form.WithLogger(h.logger))
	if h.observer != nil {
		opts = append(opts, form.WithObserver(h.observer))
	}
	c := form.New(opts...)
	h.def.Bind(c, h.def.Elements())
	return c
}

func (h *Handler) getForm(w http.ResponseWriter, r *http.Request) {
	c := h.controller()
	defer c.Close()
	writeJSON(w, h.logger, http.StatusOK, formResponse{
		Definition: h.def,
		Values:     c.GetValues(true),
		State:      c.FormState(),
	})
}

func (h *Handler) postForm(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		h.logger.Warn("httpform: invalid request body", "form", h.def.ID, "err", err)
		return
	}

	c := h.controller()
	defer c.Close()
	if err := c.SetValues(values); err != nil {
		http.Error(w, "could not apply values", http.StatusInternalServerError)
		h.logger.Error("httpform: apply values failed", "form", h.def.ID, "err", err)
		return
	}

	var submitted map[string]any
	err = c.Submit(r.Context(), func(_ context.Context, v map[string]any) error {
		submitted = v
		return nil
	})
	if err != nil {
		http.Error(w, "submit failed", http.StatusInternalServerError)
		h.logger.Error("httpform: submit failed", "form", h.def.ID, "err", err)
		return
	}

	state := c.FormState()
	if submitted == nil {
		writeJSON(w, h.logger, http.StatusUnprocessableEntity, submitResponse{Errors: state.Errors, State: state})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, submitResponse{Values: submitted, State: state})
}

func (h *Handler) putDraft(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		h.logger.Warn("httpform: invalid draft body", "form", h.def.ID, "err", err)
		return
	}

	c := h.controller()
	defer c.Close()
	if err := c.SetValues(values); err != nil {
		http.Error(w, "could not apply values", http.StatusInternalServerError)
		h.logger.Error("httpform: apply draft failed", "form", h.def.ID, "err", err)
		return
	}

	if err := h.drafts.Save(r.Context(), h.def.ID, chi.URLParam(r, "draftID"), c.GetValues(true)); err != nil {
		http.Error(w, "could not save draft", http.StatusInternalServerError)
		h.logger.Error("httpform: save draft failed", "form", h.def.ID, "err", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Load(r.Context(), h.def.ID, chi.URLParam(r, "draftID"))
	if errors.Is(err, drafts.ErrNotFound) {
		http.Error(w, "draft not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "could not load draft", http.StatusInternalServerError)
		h.logger.Error("httpform: load draft failed", "form", h.def.ID, "err", err)
		return
	}

	c := h.controller()
	defer c.Close()
	c.Reset(d.Values)
	writeJSON(w, h.logger, http.StatusOK, formResponse{
		Definition: h.def,
		Values:     c.GetValues(true),
		State:      c.FormState(),
	})
}

func readValues(r *http.Request) (map[string]any, error) {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var out map[string]any
		if err := json.NewDecoder(body).Decode(&out); err != nil {
			return nil, err
		}
		if out == nil {
			out = map[string]any{}
		}
		return out, nil
	default:
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		parsed, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(parsed))
		for key, vals := range parsed {
			if len(vals) == 1 {
				out[key] = vals[0]
				continue
			}
			out[key] = vals
		}
		return out, nil
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("httpform: encode response failed", "err", err)
	}
}
