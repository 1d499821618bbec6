package notifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/good-yellow-bee/sensu-pagerduty-handler/internal/resolver"
)

type triggerCall struct {
	summary  string
	source   string
	dedupKey string
	payload  Payload
}

// mockClient is a mock alerting client for testing.
type mockClient struct {
	triggers []triggerCall
	resolves []string
	err      error
}

func (m *mockClient) Name() string {
	return "mock"
}

func (m *mockClient) Trigger(_ context.Context, summary, source, dedupKey string, payload Payload) error {
	m.triggers = append(m.triggers, triggerCall{summary, source, dedupKey, payload})
	return m.err
}

func (m *mockClient) Resolve(_ context.Context, dedupKey string) error {
	m.resolves = append(m.resolves, dedupKey)
	return m.err
}

func testFields(status resolver.Status) *resolver.Fields {
	return &resolver.Fields{
		DedupKey: "ns_e1_c1",
		Summary:  "ns/e1/c1 : bad",
		Status:   status,
		Source:   "sensu.example.com",
		Details:  map[string]any{"check": "c1"},
	}
}

func TestDispatchTriggers(t *testing.T) {
	for _, status := range []resolver.Status{resolver.StatusWarning, resolver.StatusCritical} {
		t.Run(status.String(), func(t *testing.T) {
			client := &mockClient{}
			d := NewDispatcher(client, nil)

			action, err := d.Dispatch(context.Background(), testFields(status))
			require.NoError(t, err)
			assert.Equal(t, ActionTrigger, action)

			require.Len(t, client.triggers, 1)
			assert.Empty(t, client.resolves)

			call := client.triggers[0]
			assert.Equal(t, "ns/e1/c1 : bad", call.summary)
			assert.Equal(t, "sensu.example.com", call.source)
			assert.Equal(t, "ns_e1_c1", call.dedupKey)
			assert.Equal(t, Payload{
				Summary:       "ns/e1/c1 : bad",
				Source:        "sensu.example.com",
				CustomDetails: map[string]any{"check": "c1"},
			}, call.payload)
		})
	}
}

func TestDispatchResolves(t *testing.T) {
	client := &mockClient{}
	d := NewDispatcher(client, nil)

	action, err := d.Dispatch(context.Background(), testFields(resolver.StatusOK))
	require.NoError(t, err)
	assert.Equal(t, ActionResolve, action)

	assert.Empty(t, client.triggers)
	assert.Equal(t, []string{"ns_e1_c1"}, client.resolves)
}

func TestDispatchInvalidStatus(t *testing.T) {
	client := &mockClient{}
	d := NewDispatcher(client, nil)

	_, err := d.Dispatch(context.Background(), testFields(resolver.Status(3)))
	require.Error(t, err)

	var invalid *resolver.InputValidationError
	assert.True(t, errors.As(err, &invalid))
	assert.Empty(t, client.triggers)
	assert.Empty(t, client.resolves)
}

func TestDispatchClientFailure(t *testing.T) {
	cause := errors.New("connection refused")
	client := &mockClient{err: cause}
	d := NewDispatcher(client, nil)

	action, err := d.Dispatch(context.Background(), testFields(resolver.StatusCritical))
	require.Error(t, err)
	assert.Equal(t, ActionTrigger, action)

	var dispatchErr *DispatchError
	require.True(t, errors.As(err, &dispatchErr))
	assert.Equal(t, ActionTrigger, dispatchErr.Action)
	assert.Equal(t, "mock", dispatchErr.Client)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "mock trigger failed: connection refused", err.Error())
	assert.Len(t, client.triggers, 1)
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		status  resolver.Status
		want    Action
		wantErr bool
	}{
		{resolver.StatusOK, ActionResolve, false},
		{resolver.StatusWarning, ActionTrigger, false},
		{resolver.StatusCritical, ActionTrigger, false},
		{resolver.Status(3), "", true},
		{resolver.Status(-1), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			got, err := ActionFor(tt.status)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
