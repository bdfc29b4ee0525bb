package form

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/validate"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// StripMarkup removes every HTML element from a message. Error messages
// often come from remote validators or schema documents and end up rendered
// next to the field.
func StripMarkup(message string) string {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(strictPolicy.Sanitize(message))
}

func (c *Controller) cleanMessage(message string) string {
	if !c.cfg.SanitizeMessages || message == "" {
		return message
	}
	if c.sanitize != nil {
		return c.sanitize(message)
	}
	return StripMarkup(message)
}

func (c *Controller) cleanErrors(errs validate.Errors) validate.Errors {
	if !c.cfg.SanitizeMessages || len(errs) == 0 {
		return errs
	}
	out := make(validate.Errors, len(errs))
	for name, err := range errs {
		err.Message = c.cleanMessage(err.Message)
		out[name] = err
	}
	return out
}
