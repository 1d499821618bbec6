// Package event decodes the Sensu event document a handler receives on stdin.
package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/template"
)

// Paths of the event fields the handler derives its defaults from.
var (
	EntityNamespacePath = template.Path{"entity", "metadata", "namespace"}
	EntityNamePath      = template.Path{"entity", "metadata", "name"}
	CheckNamePath       = template.Path{"check", "metadata", "name"}
	CheckOutputPath     = template.Path{"check", "output"}
	CheckStatusPath     = template.Path{"check", "status"}
)

// ErrInteractiveInput is returned when stdin is a terminal instead of a pipe.
var ErrInteractiveInput = errors.New("stdin is a terminal; pipe a Sensu event into the handler")

// Document is a decoded event. Values are map[string]any, []any, json.Number,
// string, bool or nil. A Document is never modified after decoding.
type Document map[string]any

// ParseError is returned when the input is not a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse event: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Decode reads a single JSON object from r. Numbers are kept as json.Number
// so integers survive unchanged into alert details.
func Decode(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read event: %w", err)
	}
	return Parse(data)
}

// Parse decodes a single JSON object from data.
func Parse(data []byte) (Document, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("expected a JSON object, got %s", TypeName(v))}
	}
	return Document(m), nil
}

// DecodeJSON decodes exactly one JSON value from data, rejecting trailing content.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

// ReadStdin decodes the event from stdin, refusing to block on a terminal.
func ReadStdin(stdin *os.File) (Document, error) {
	if term.IsTerminal(int(stdin.Fd())) {
		return nil, ErrInteractiveInput
	}
	return Decode(stdin)
}

// Root returns the document as a plain value for path lookups.
func (d Document) Root() any {
	return map[string]any(d)
}

// Lookup returns the value at path.
func (d Document) Lookup(path template.Path) (any, error) {
	return path.Lookup(d.Root())
}

// LookupString returns the value at path formatted as text.
func (d Document) LookupString(path template.Path) (string, error) {
	v, err := d.Lookup(path)
	if err != nil {
		return "", err
	}
	return FormatValue(v), nil
}

// FormatValue renders a decoded value as text. Strings and numbers are
// written as-is; structured values are written as compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// TypeName names the JSON type of a decoded value.
func TypeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
