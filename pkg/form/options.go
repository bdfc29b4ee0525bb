package form

import (
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/trigger"
	"github.com/goliatone/go-formstate/pkg/validate"
	"github.com/goliatone/go-formstate/pkg/watcher"
)

// Config holds the recognised controller options.
type Config struct {
	// Mode selects when validation runs. Defaults to trigger.OnSubmit.
	Mode trigger.Mode
	// DefaultValues maps field names (dot/bracket paths or nested maps) to
	// initial values applied on registration.
	DefaultValues map[string]any
	// Schema switches the controller to whole-form schema validation.
	Schema validate.SchemaAdapter
	// SchemaOptions is passed through to the schema adapter.
	SchemaOptions validate.SchemaOptions
	// ValidationFields restricts which names are validated and submitted.
	// Nil means every registered field.
	ValidationFields []string
	// NativeValidation delegates per-field checks to the element's own
	// constraint validation.
	NativeValidation bool
	// SubmitFocusError focuses the first invalid field on submit.
	SubmitFocusError bool
	// SanitizeMessages strips markup from error messages before they are
	// stored.
	SanitizeMessages bool
	// Static marks a non-live host (a static render pass); registration is
	// a no-op there.
	Static bool
}

// DefaultConfig returns the configuration New starts from.
func DefaultConfig() Config {
	return Config{
		Mode:             trigger.OnSubmit,
		SubmitFocusError: true,
	}
}

// Option customises a Controller.
type Option func(*Controller)

// WithConfig replaces the whole configuration. Options applied after it
// still take effect.
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		c.cfg = cfg
	}
}

// WithMode sets the validation mode.
func WithMode(mode trigger.Mode) Option {
	return func(c *Controller) {
		c.cfg.Mode = mode
	}
}

// WithDefaultValues sets the form-level default values.
func WithDefaultValues(values map[string]any) Option {
	return func(c *Controller) {
		c.cfg.DefaultValues = values
	}
}

// WithSchema enables schema mode with the given adapter and options.
func WithSchema(adapter validate.SchemaAdapter, opts ...validate.SchemaOptions) Option {
	return func(c *Controller) {
		c.cfg.Schema = adapter
		if len(opts) > 0 {
			c.cfg.SchemaOptions = opts[0]
		}
	}
}

// WithValidationFields restricts validation and submission to names.
func WithValidationFields(names ...string) Option {
	return func(c *Controller) {
		c.cfg.ValidationFields = append([]string(nil), names...)
	}
}

// WithNativeValidation toggles host-native constraint validation.
func WithNativeValidation(enabled bool) Option {
	return func(c *Controller) {
		c.cfg.NativeValidation = enabled
	}
}

// WithSubmitFocusError toggles focusing the first invalid field on submit.
func WithSubmitFocusError(enabled bool) Option {
	return func(c *Controller) {
		c.cfg.SubmitFocusError = enabled
	}
}

// WithNotifier installs the re-render callback invoked by Flush.
func WithNotifier(fn func()) Option {
	return func(c *Controller) {
		c.notify = fn
	}
}

// WithObserver installs an activity observer.
func WithObserver(obs Observer) Option {
	return func(c *Controller) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDocument supplies the attachment observer used to detect removed
// elements. Without one, registered elements are never auto-removed.
func WithDocument(obs watcher.Observer) Option {
	return func(c *Controller) {
		c.doc = obs
	}
}

// WithMessageSanitizer installs a custom error message sanitizer and turns
// sanitizing on.
func WithMessageSanitizer(fn func(string) string) Option {
	return func(c *Controller) {
		c.sanitize = fn
		c.cfg.SanitizeMessages = fn != nil
	}
}
