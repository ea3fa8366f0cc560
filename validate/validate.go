// Package validate holds the input-validation helpers shared by the server
// handlers and the client drafts. Validators collect per-field messages into
// an Errors value instead of failing on the first problem.
package validate

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by every dated record.
const DateLayout = "2006-01-02"

var ErrValidation = errors.New("validation failed")

// Errors maps a field name to a human readable message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) true for any Errors value.
func (e Errors) Is(target error) bool {
	return target == ErrValidation
}

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns nil when nothing was recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Fields extracts the per-field messages from err, if it carries any.
func Fields(err error) map[string]string {
	var ve Errors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func Required(e Errors, field, v string) {
	if strings.TrimSpace(v) == "" {
		e.Add(field, "is required")
	}
}

// Date checks v against DateLayout. Empty values only fail when required.
func Date(e Errors, field, v string, required bool) {
	if strings.TrimSpace(v) == "" {
		if required {
			e.Add(field, "is required")
		}
		return
	}
	if _, err := time.Parse(DateLayout, v); err != nil {
		e.Add(field, "must be a date like 2006-01-02")
	}
}

func OneOf[S ~string](e Errors, field string, v S, allowed ...S) {
	if !slices.Contains(allowed, v) {
		names := make([]string, len(allowed))
		for i, a := range allowed {
			names[i] = string(a)
		}
		e.Add(field, "must be one of "+strings.Join(names, ", "))
	}
}

// URL accepts an empty value or an absolute http(s) URL.
func URL(e Errors, field, v string) {
	if v == "" {
		return
	}
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		e.Add(field, "must be an http(s) URL")
	}
}

func Range(e Errors, field string, v, lo, hi int) {
	if v < lo || v > hi {
		e.Add(field, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
}
