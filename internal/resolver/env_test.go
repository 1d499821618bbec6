package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayered(t *testing.T) {
	env := Layered(
		MapEnv{EnvSummary: "from process"},
		nil,
		MapEnv{EnvSummary: "from file", EnvSource: "file source"},
	)

	v, ok := env.Lookup(EnvSummary)
	assert.True(t, ok)
	assert.Equal(t, "from process", v)

	v, ok = env.Lookup(EnvSource)
	assert.True(t, ok)
	assert.Equal(t, "file source", v)

	_, ok = env.Lookup(EnvDetails)
	assert.False(t, ok)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagerduty.env")
	content := "PAGERDUTY_SUMMARY=disk full\nPAGERDUTY_DETAILS='{\"team\":\"ops\"}'\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	env, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "disk full", env[EnvSummary])
	assert.Equal(t, `{"team":"ops"}`, env[EnvDetails])
}

func TestLoadEnvFileMissing(t *testing.T) {
	_, err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read env file")
}

type fakeHosts struct {
	hosts map[string][]string
	addrs map[string][]string
}

func (f fakeHosts) LookupHost(_ context.Context, host string) ([]string, error) {
	if v, ok := f.hosts[host]; ok {
		return v, nil
	}
	return nil, errors.New("no such host")
}

func (f fakeHosts) LookupAddr(_ context.Context, addr string) ([]string, error) {
	if v, ok := f.addrs[addr]; ok {
		return v, nil
	}
	return nil, errors.New("no PTR record")
}

func TestQualify(t *testing.T) {
	r := fakeHosts{
		hosts: map[string][]string{
			"web1":   {"10.0.0.1", "10.0.0.2"},
			"lonely": {"10.0.0.9"},
		},
		addrs: map[string][]string{
			"10.0.0.2": {"web1", "web1.prod.example.com."},
			"10.0.0.9": {"lonely"},
		},
	}
	ctx := context.Background()

	assert.Equal(t, "web1.prod.example.com", Qualify(ctx, "web1", r))
	assert.Equal(t, "lonely", Qualify(ctx, "lonely", r))
	assert.Equal(t, "unknown", Qualify(ctx, "unknown", r))
	assert.Equal(t, "already.qualified.net", Qualify(ctx, "already.qualified.net", r))
}
