package resolver

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted when the matching flag is absent.
const (
	EnvDedupKey = "PAGERDUTY_DEDUP_KEY"
	EnvSummary  = "PAGERDUTY_SUMMARY"
	EnvStatus   = "PAGERDUTY_STATUS"
	EnvSource   = "PAGERDUTY_SOURCE"
	EnvDetails  = "PAGERDUTY_DETAILS"
)

// Env looks up environment values. Lookup reports whether key is set;
// a key set to the empty string counts as set.
type Env interface {
	Lookup(key string) (string, bool)
}

// EnvFunc adapts a lookup function to Env.
type EnvFunc func(key string) (string, bool)

// Lookup calls f(key).
func (f EnvFunc) Lookup(key string) (string, bool) {
	return f(key)
}

// ProcessEnv reads the process environment.
var ProcessEnv Env = EnvFunc(os.LookupEnv)

// MapEnv is an Env backed by a fixed map.
type MapEnv map[string]string

// Lookup returns the value stored under key.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Layered consults each Env in order and returns the first hit.
func Layered(envs ...Env) Env {
	return EnvFunc(func(key string) (string, bool) {
		for _, e := range envs {
			if e == nil {
				continue
			}
			if v, ok := e.Lookup(key); ok {
				return v, true
			}
		}
		return "", false
	})
}

// LoadEnvFile reads KEY=value pairs from a dotenv file without touching the
// process environment.
func LoadEnvFile(path string) (MapEnv, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return MapEnv(values), nil
}
