package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PagerDuty/go-pagerduty"
)

// DefaultEventsEndpoint is the PagerDuty Events API v2 base URL.
const DefaultEventsEndpoint = "https://events.pagerduty.com"

// PagerDuty severities accepted by the Events API v2.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// PagerDutyConfig holds PagerDuty Events API configuration.
type PagerDutyConfig struct {
	RoutingKey string        // integration key of the PagerDuty service
	Endpoint   string        // Events API base URL (default: DefaultEventsEndpoint)
	Severity   string        // severity of triggered alerts (default: critical)
	ClientName string        // name shown as the event's monitoring client
	Timeout    time.Duration // HTTP timeout (default: 30s)
}

// Validate validates the PagerDuty configuration.
func (c *PagerDutyConfig) Validate() error {
	if c.RoutingKey == "" {
		return fmt.Errorf("routing key is required")
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil {
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return fmt.Errorf("endpoint must be an http(s) URL")
		}
	}
	switch c.Severity {
	case "", SeverityCritical, SeverityError, SeverityWarning, SeverityInfo:
	default:
		return fmt.Errorf("unknown severity %q", c.Severity)
	}
	return nil
}

func (c *PagerDutyConfig) setDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEventsEndpoint
	}
	if c.Severity == "" {
		c.Severity = SeverityCritical
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// PagerDutyNotifier sends trigger and resolve events to the PagerDuty Events API v2.
type PagerDutyNotifier struct {
	config PagerDutyConfig
	client *pagerduty.Client
}

// NewPagerDutyNotifier creates a new PagerDuty notifier.
func NewPagerDutyNotifier(config PagerDutyConfig) (*PagerDutyNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pagerduty config: %w", err)
	}
	config.setDefaults()

	// Events API calls authenticate with the routing key in the body, not a REST token.
	client := pagerduty.NewClient("", pagerduty.WithV2EventsAPIEndpoint(config.Endpoint))
	client.HTTPClient = &http.Client{
		Timeout: config.Timeout,
	}

	return &PagerDutyNotifier{
		config: config,
		client: client,
	}, nil
}

// Name returns "pagerduty".
func (p *PagerDutyNotifier) Name() string {
	return "pagerduty"
}

// Trigger sends a trigger event. Non-empty payload fields take precedence
// over summary and source.
func (p *PagerDutyNotifier) Trigger(ctx context.Context, summary, source, dedupKey string, payload Payload) error {
	body := &pagerduty.V2Payload{
		Summary:  summary,
		Source:   source,
		Severity: p.config.Severity,
		Details:  payload.CustomDetails,
	}
	if payload.Summary != "" {
		body.Summary = payload.Summary
	}
	if payload.Source != "" {
		body.Source = payload.Source
	}

	return p.send(ctx, &pagerduty.V2Event{
		RoutingKey: p.config.RoutingKey,
		Action:     string(ActionTrigger),
		DedupKey:   dedupKey,
		Client:     p.config.ClientName,
		Payload:    body,
	})
}

// Resolve sends a resolve event carrying only the dedup key.
func (p *PagerDutyNotifier) Resolve(ctx context.Context, dedupKey string) error {
	return p.send(ctx, &pagerduty.V2Event{
		RoutingKey: p.config.RoutingKey,
		Action:     string(ActionResolve),
		DedupKey:   dedupKey,
	})
}

func (p *PagerDutyNotifier) send(ctx context.Context, ev *pagerduty.V2Event) error {
	resp, err := p.client.ManageEventWithContext(ctx, ev)
	if err != nil {
		return fmt.Errorf("pagerduty events API: %w", err)
	}
	if resp != nil && len(resp.Errors) > 0 {
		return fmt.Errorf("pagerduty events API: %s: %v", resp.Message, resp.Errors)
	}
	return nil
}
