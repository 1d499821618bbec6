package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the Pushgateway job name used when none is configured.
const DefaultJob = "sensu_pagerduty_handler"

// Pusher sends a registry to a Pushgateway once per invocation.
type Pusher struct {
	url      string
	job      string
	gatherer prometheus.Gatherer
	grouping map[string]string
}

// NewPusher creates a Pusher for the given Pushgateway URL and job.
func NewPusher(url, job string, gatherer prometheus.Gatherer) *Pusher {
	if job == "" {
		job = DefaultJob
	}
	if gatherer == nil {
		gatherer = Registry
	}
	return &Pusher{
		url:      url,
		job:      job,
		gatherer: gatherer,
		grouping: make(map[string]string),
	}
}

// Grouping adds a grouping label, e.g. the Sensu entity name.
func (p *Pusher) Grouping(name, value string) *Pusher {
	p.grouping[name] = value
	return p
}

// Push replaces the job's metrics on the Pushgateway.
func (p *Pusher) Push(ctx context.Context) error {
	pusher := push.New(p.url, p.job).Gatherer(p.gatherer)
	for name, value := range p.grouping {
		pusher = pusher.Grouping(name, value)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
