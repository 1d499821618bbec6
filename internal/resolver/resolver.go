// Package resolver derives the PagerDuty alert fields from command-line
// values, environment overrides and the Sensu event.
//
// Every field is resolved independently with the same precedence: an
// explicit value wins, then the environment, then a default computed from
// the event or the local host.
package resolver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/event"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/metrics"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/template"
)

// Origin records which tier produced a resolved value.
type Origin string

const (
	OriginFlag    Origin = "flag"
	OriginEnv     Origin = "env"
	OriginDefault Origin = "default"
)

// Requested holds the values given explicitly on the command line.
// A nil field was not supplied.
type Requested struct {
	DedupKey *string
	Summary  *string
	Status   *Status
	Source   *string
	Details  *string
}

// Fields are the resolved alert fields handed to the dispatcher.
// Status is always valid.
type Fields struct {
	DedupKey string
	Summary  string
	Status   Status
	Source   string
	// Details is a scalar, map[string]any or []any.
	Details any
}

// Resolver fills in Fields from a Requested and an event.
type Resolver struct {
	env    Env
	fqdn   func(ctx context.Context) (string, error)
	logger *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEnv sets the environment tier. Defaults to the process environment.
func WithEnv(env Env) Option {
	return func(r *Resolver) {
		r.env = env
	}
}

// WithFQDN overrides the local FQDN lookup used for the default source.
func WithFQDN(fn func(ctx context.Context) (string, error)) Option {
	return func(r *Resolver) {
		r.fqdn = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		env:    ProcessEnv,
		fqdn:   FQDN,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve resolves every alert field for doc. A missing event field needed
// by a default, a failed details template or an invalid status aborts
// resolution.
func (r *Resolver) Resolve(ctx context.Context, req Requested, doc event.Document) (*Fields, error) {
	var (
		fields Fields
		origin Origin
		err    error
	)

	fields.DedupKey, origin, err = resolve(req.DedupKey, r.env, EnvDedupKey, parseString, func() (string, error) {
		return defaultDedupKey(doc)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve dedup key: %w", err)
	}
	r.record("dedup_key", origin, zap.String("dedup_key", fields.DedupKey))

	fields.Summary, origin, err = resolve(req.Summary, r.env, EnvSummary, parseString, func() (string, error) {
		return defaultSummary(doc)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve summary: %w", err)
	}
	r.record("summary", origin)

	fields.Status, origin, err = resolve(req.Status, r.env, EnvStatus, ParseStatus, func() (Status, error) {
		v, err := doc.Lookup(event.CheckStatusPath)
		if err != nil {
			return 0, err
		}
		return StatusFromValue(v)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve status: %w", err)
	}
	if !fields.Status.Valid() {
		return nil, fmt.Errorf("resolve status: %w", &InputValidationError{
			Field:  "status",
			Value:  fmt.Sprint(int(fields.Status)),
			Reason: "must be one of 0 (OK), 1 (Warning), 2 (Critical)",
		})
	}
	r.record("status", origin, zap.Stringer("status", fields.Status))

	fields.Source, origin, err = resolve(req.Source, r.env, EnvSource, parseString, func() (string, error) {
		return r.fqdn(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("resolve source: %w", err)
	}
	r.record("source", origin, zap.String("source", fields.Source))

	fields.Details, origin, err = r.resolveDetails(req.Details, doc)
	if err != nil {
		return nil, fmt.Errorf("resolve details: %w", err)
	}
	r.record("details", origin, zap.String("type", event.TypeName(fields.Details)))

	return &fields, nil
}

func (r *Resolver) record(field string, origin Origin, extra ...zap.Field) {
	metrics.FieldOriginTotal.WithLabelValues(field, string(origin)).Inc()
	r.logger.Debug("resolved alert field",
		append([]zap.Field{zap.String("field", field), zap.String("origin", string(origin))}, extra...)...)
}

// resolveDetails picks the raw details value, expands a template reference
// and decodes JSON text. Text that is not JSON is kept as a string; only a
// failed template lookup is an error.
func (r *Resolver) resolveDetails(explicit *string, doc event.Document) (any, Origin, error) {
	var (
		details any
		origin  Origin
	)
	if explicit != nil {
		details, origin = *explicit, OriginFlag
	} else if v, ok := r.env.Lookup(EnvDetails); ok {
		details, origin = v, OriginEnv
	} else {
		details, origin = doc.Root(), OriginDefault
	}

	if s, ok := details.(string); ok {
		if path, isRef := template.ParseReference(s); isRef {
			v, err := doc.Lookup(path)
			if err != nil {
				return nil, origin, err
			}
			details = v
		}
	}

	if s, ok := details.(string); ok {
		if v, err := event.DecodeJSON([]byte(s)); err == nil {
			details = v
		}
	}

	return details, origin, nil
}

// resolve applies the explicit > environment > default precedence for one field.
func resolve[T any](explicit *T, env Env, key string, parse func(string) (T, error), def func() (T, error)) (T, Origin, error) {
	if explicit != nil {
		return *explicit, OriginFlag, nil
	}
	if raw, ok := env.Lookup(key); ok {
		v, err := parse(raw)
		if err != nil {
			var zero T
			return zero, OriginEnv, fmt.Errorf("%s: %w", key, err)
		}
		return v, OriginEnv, nil
	}
	v, err := def()
	return v, OriginDefault, err
}

func parseString(s string) (string, error) {
	return s, nil
}

// defaultDedupKey returns "{namespace}_{entity}_{check}".
func defaultDedupKey(doc event.Document) (string, error) {
	parts, err := lookupStrings(doc, event.EntityNamespacePath, event.EntityNamePath, event.CheckNamePath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s_%s", parts[0], parts[1], parts[2]), nil
}

// defaultSummary returns "{namespace}/{entity}/{check} : {output}".
func defaultSummary(doc event.Document) (string, error) {
	parts, err := lookupStrings(doc, event.EntityNamespacePath, event.EntityNamePath, event.CheckNamePath, event.CheckOutputPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s : %s", parts[0], parts[1], parts[2], parts[3]), nil
}

func lookupStrings(doc event.Document, paths ...template.Path) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		s, err := doc.LookupString(p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
