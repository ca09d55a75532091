package schema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lvillar/formfill/payload"
)

// Violation is one failed validation rule.
type Violation struct {
	FieldID string `json:"fieldId"`
	Key     string `json:"key"`
	Rule    string `json:"rule"` // required, regex, maxLen
	Message string `json:"message"`
}

// ValidationErrors collects every violation found in a payload.
type ValidationErrors struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "schema: validation failed: " + strings.Join(msgs, "; ")
}

// Validate checks data against the validation rules of fields. It returns
// nil when every rule holds, and *ValidationErrors otherwise.
//
// required fails for absent values and the empty string. regex must match
// at the start of the stringified value and maxLen bounds its length in
// characters; both are only checked for non-empty, non-zero, non-false
// values.
func Validate(fields []Field, data any) error {
	var errs ValidationErrors
	add := func(f Field, rule, format string, args ...any) {
		errs.Violations = append(errs.Violations, Violation{
			FieldID: f.ID,
			Key:     f.Key,
			Rule:    rule,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for _, f := range fields {
		v, ok := payload.Resolve(data, f.Key)
		if f.Validation.Required && (!ok || v == "") {
			add(f, "required", "Field '%s' is required but missing", f.Key)
		}
		if !ok || !filled(v) {
			continue
		}
		s := payload.String(v)
		if f.Validation.Regex != nil && *f.Validation.Regex != "" {
			re, err := regexp.Compile("^(?:" + *f.Validation.Regex + ")")
			if err != nil {
				add(f, "regex", "Field '%s' has an invalid pattern: %v", f.Key, err)
			} else if !re.MatchString(s) {
				add(f, "regex", "Field '%s' does not match the required format", f.Key)
			}
		}
		if f.Validation.MaxLen != nil && *f.Validation.MaxLen > 0 {
			if utf8.RuneCountInString(s) > *f.Validation.MaxLen {
				add(f, "maxLen", "Field '%s' exceeds maximum length of %d", f.Key, *f.Validation.MaxLen)
			}
		}
	}

	if len(errs.Violations) == 0 {
		return nil
	}
	return &errs
}

// filled reports whether v counts as a supplied value for the regex and
// maxLen rules.
func filled(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	}
	return payload.String(v) != "0"
}
