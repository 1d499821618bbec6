package resolver

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
)

// HostResolver is the subset of *net.Resolver used to qualify a hostname.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// FQDN returns the fully-qualified domain name of the local machine.
func FQDN(ctx context.Context) (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("get hostname: %w", err)
	}
	return Qualify(ctx, host, net.DefaultResolver), nil
}

// Qualify returns the first dotted name found by resolving host and then
// reverse-resolving its addresses. The bare host is returned when nothing
// better turns up; lookup failures are not errors.
func Qualify(ctx context.Context, host string, r HostResolver) string {
	if strings.Contains(host, ".") {
		return host
	}

	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return host
	}
	for _, addr := range addrs {
		names, err := r.LookupAddr(ctx, addr)
		if err != nil {
			continue
		}
		for _, name := range names {
			name = strings.TrimSuffix(name, ".")
			if strings.Contains(name, ".") {
				return name
			}
		}
	}
	return host
}
