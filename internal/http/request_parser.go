// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// period selection, transaction forms and bodies sent either as forms or JSON.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"financeiro/internal/core"
	"financeiro/internal/services"
)

// maxBodyBytes bounds every request body the handlers read.
const maxBodyBytes = 64 << 10

// ParsePeriod extracts year and month from query or form values. It returns
// fallback, and false, when either value is missing or the pair is not a
// valid period.
func ParsePeriod(values url.Values, fallback core.Period) (core.Period, bool) {
	ys := strings.TrimSpace(values.Get("year"))
	ms := strings.TrimSpace(values.Get("month"))
	if ys == "" || ms == "" {
		return fallback, false
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return fallback, false
	}
	m, err := strconv.Atoi(ms)
	if err != nil {
		return fallback, false
	}
	p, err := core.NewPeriod(y, m)
	if err != nil {
		return fallback, false
	}
	return p, true
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Values returns the parsed data as url.Values, whatever the encoding.
func (p *RequestBodyParser) Values() url.Values {
	if p.jsonData == nil {
		if p.formData == nil {
			return url.Values{}
		}
		return p.formData
	}
	v := url.Values{}
	for k, val := range p.jsonData {
		v.Set(k, stringValue(val))
	}
	return v
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TransactionInput maps the parsed body to a transaction input.
func (p *RequestBodyParser) TransactionInput() services.TransactionInput {
	return services.TransactionInput{
		Date:          p.Get("date"),
		Kind:          p.Get("kind"),
		Description:   p.Get("description"),
		Amount:        p.Get("amount"),
		PaymentMethod: p.Get("payment_method"),
		Category:      p.Get("category"),
	}
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireDeleteOrPOST is a convenience function for DELETE/POST handlers.
func RequireDeleteOrPOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodDelete, http.MethodPost)
}

// ParseBodyOrFail reads and parses the request body and returns an error
// response on failure.
func ParseBodyOrFail(r *http.Request) (*RequestBodyParser, *HTMXResponseBuilder) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return nil, BadRequestError("Formato de requisição inválido")
	}
	return p, nil
}
