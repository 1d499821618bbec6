// Package notifier delivers resolved alert fields to an incident-alerting
// backend.
package notifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/metrics"
	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/resolver"
)

// Action is the alerting protocol operation performed for an event.
type Action string

const (
	ActionTrigger Action = "trigger"
	ActionResolve Action = "resolve"
)

// Payload is the body attached to a trigger.
type Payload struct {
	Summary       string `json:"summary"`
	Source        string `json:"source"`
	CustomDetails any    `json:"custom_details,omitempty"`
}

// Client is the interface for an alerting backend.
type Client interface {
	// Name returns the client name (e.g., "pagerduty").
	Name() string
	// Trigger opens or updates the incident identified by dedupKey.
	Trigger(ctx context.Context, summary, source, dedupKey string, payload Payload) error
	// Resolve closes the incident identified by dedupKey.
	Resolve(ctx context.Context, dedupKey string) error
}

// DispatchError wraps a failed call to the alerting backend.
type DispatchError struct {
	Client string
	Action Action
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Client, e.Action, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ActionFor returns the operation for a check status: Warning and Critical
// trigger, OK resolves.
func ActionFor(status resolver.Status) (Action, error) {
	switch {
	case status.Firing():
		return ActionTrigger, nil
	case status == resolver.StatusOK:
		return ActionResolve, nil
	default:
		return "", &resolver.InputValidationError{
			Field:  "status",
			Value:  fmt.Sprint(int(status)),
			Reason: "must be one of 0 (OK), 1 (Warning), 2 (Critical)",
		}
	}
}

// Dispatcher sends resolved alert fields to a single client.
type Dispatcher struct {
	client Client
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher for client.
func NewDispatcher(client Client, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		client: client,
		logger: logger,
	}
}

// Dispatch performs exactly one trigger or resolve call for fields. The call
// is not retried; any client failure is returned as a *DispatchError.
func (d *Dispatcher) Dispatch(ctx context.Context, fields *resolver.Fields) (Action, error) {
	action, err := ActionFor(fields.Status)
	if err != nil {
		return "", err
	}

	start := time.Now()
	switch action {
	case ActionTrigger:
		payload := Payload{
			Summary:       fields.Summary,
			Source:        fields.Source,
			CustomDetails: fields.Details,
		}
		err = d.client.Trigger(ctx, fields.Summary, fields.Source, fields.DedupKey, payload)
	case ActionResolve:
		err = d.client.Resolve(ctx, fields.DedupKey)
	}
	metrics.DispatchDuration.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DispatchTotal.WithLabelValues(string(action), metrics.ResultFailure).Inc()
		return action, &DispatchError{Client: d.client.Name(), Action: action, Err: err}
	}
	metrics.DispatchTotal.WithLabelValues(string(action), metrics.ResultSuccess).Inc()

	d.logger.Info("alert dispatched",
		zap.String("client", d.client.Name()),
		zap.String("action", string(action)),
		zap.String("dedup_key", fields.DedupKey),
		zap.Stringer("status", fields.Status),
	)
	return action, nil
}
