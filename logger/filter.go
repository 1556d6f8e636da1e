package logger

import (
	"net/http"
	"strings"
)

// redactedValue replaces sensitive values in log output.
const redactedValue = "[REDACTED]"

// defaultSensitiveHeaders are the header names whose values are never logged
// in clear text. Matching is case-insensitive.
var defaultSensitiveHeaders = []string{
	"authorization",
	"proxy-authorization",
	"cookie",
	"set-cookie",
	"x-api-key",
}

// HeaderFilter redacts sensitive HTTP header values from log fields.
type HeaderFilter struct {
	sensitive map[string]struct{}
}

// NewHeaderFilter creates a filter for the given header names. A nil or empty
// list selects the default sensitive headers.
func NewHeaderFilter(headers []string) *HeaderFilter {
	if len(headers) == 0 {
		headers = defaultSensitiveHeaders
	}
	sensitive := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		sensitive[strings.ToLower(h)] = struct{}{}
	}
	return &HeaderFilter{sensitive: sensitive}
}

// IsSensitive reports whether the given field or header name is sensitive.
func (f *HeaderFilter) IsSensitive(name string) bool {
	_, ok := f.sensitive[strings.ToLower(name)]
	return ok
}

// RedactString masks the value when the field name is sensitive.
func (f *HeaderFilter) RedactString(key, value string) string {
	if f.IsSensitive(key) {
		return redactedValue
	}
	return value
}

// RedactValue masks sensitive content inside header maps and plain values.
func (f *HeaderFilter) RedactValue(key string, value any) any {
	switch v := value.(type) {
	case http.Header:
		return f.redactHeader(v)
	case map[string][]string:
		return f.redactHeader(v)
	case map[string]string:
		out := make(map[string]string, len(v))
		for name, val := range v {
			if f.IsSensitive(name) {
				out[name] = redactedValue
			} else {
				out[name] = val
			}
		}
		return out
	case string:
		return f.RedactString(key, v)
	default:
		if f.IsSensitive(key) {
			return redactedValue
		}
		return value
	}
}

// RedactFields returns a copy of fields with sensitive values masked.
func (f *HeaderFilter) RedactFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = f.RedactValue(key, value)
	}
	return out
}

func (f *HeaderFilter) redactHeader(h map[string][]string) map[string][]string {
	out := make(map[string][]string, len(h))
	for name, values := range h {
		if f.IsSensitive(name) {
			out[name] = []string{redactedValue}
			continue
		}
		out[name] = append([]string(nil), values...)
	}
	return out
}
