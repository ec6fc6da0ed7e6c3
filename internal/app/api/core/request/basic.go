// Package request provides functions to extract parameters from the request.
package request

import (
	"encoding/json"
	"net/http"
	"strings"
)

// PathRaw returns the value of the named path parameter.
func PathRaw(r *http.Request, name string) string {
	return r.PathValue(name)
}

// Path returns the value of the named path parameter.
// The return value is trimmed of leading and trailing whitespace.
func Path(r *http.Request, name string) string {
	return strings.TrimSpace(PathRaw(r, name))
}

// QueryRaw returns the value of the named query parameter.
func QueryRaw(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}

// Query returns the value of the named query parameter.
// The return value is trimmed of leading and trailing whitespace.
func Query(r *http.Request, name string) string {
	return strings.TrimSpace(QueryRaw(r, name))
}

// QueryDefault returns the value of the named query parameter.
// If the parameter is not set, it returns the default value.
// The return value is trimmed of leading and trailing whitespace.
func QueryDefault(r *http.Request, name, defaultValue string) string {
	if !r.URL.Query().Has(name) {
		return defaultValue
	}

	return Query(r, name)
}

// Header returns the value of the named header.
// The return value is trimmed of leading and trailing whitespace.
func Header(r *http.Request, name string) string {
	return strings.TrimSpace(r.Header.Get(name))
}

// Cookie returns the value of the named cookie.
// The return value is trimmed of leading and trailing whitespace.
func Cookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(cookie.Value)
}

// BodyJson decodes the JSON value from the request body into the target.
// The target must be a pointer to a struct or slice.
// The body reader is closed after reading.
func BodyJson(r *http.Request, target any) error {
	defer func() {
		_ = r.Body.Close()
	}()
	return json.NewDecoder(r.Body).Decode(target)
}
