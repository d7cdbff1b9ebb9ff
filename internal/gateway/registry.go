package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Registry maps service names to upstream base URLs. The base URL's path
// component is the mount prefix the upstream expects, so a request
// /auth/register against auth=http://auth:8001/auth is forwarded to
// http://auth:8001/auth/register.
type Registry struct {
	services map[string]*url.URL
}

func NewRegistry(services map[string]string) (*Registry, error) {
	parsed := make(map[string]*url.URL, len(services))

	for name, raw := range services {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid target for service %q: %w", name, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid target for service %q: %s", name, raw)
		}
		u.Path = strings.TrimSuffix(u.Path, "/")
		parsed[name] = u
	}

	return &Registry{services: parsed}, nil
}

func (r *Registry) Resolve(name string) (*url.URL, bool) {
	u, ok := r.services[name]
	return u, ok
}

// SplitPath separates the first segment from the rest of the path.
// "/auth/register" yields ("auth", "/register"); "/auth" yields
// ("auth", "/"); "/" and "" yield an empty service name.
func SplitPath(path string) (service, remainder string) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "", "/"
	}

	service, rest, found := strings.Cut(trimmed, "/")
	if !found {
		return service, "/"
	}
	return service, "/" + rest
}
