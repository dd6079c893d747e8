// Package auth defines the boundary to the external principal-resolution
// service. The core never authenticates credentials itself; every operation
// receives an already-resolved Principal and enforces authorization against
// its ID.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthenticated is returned when credentials cannot be resolved to a
// principal.
var ErrUnauthenticated = errors.New("authentication required")

// Principal is a stable identity resolved by the external auth service.
type Principal struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Resolver resolves caller credentials to a principal.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Principal, error)
}

// BearerToken extracts the bearer token from a request, falling back to the
// principal query parameter for websocket clients that cannot set headers.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("principal")
}

// StaticResolver treats the token itself as the principal ID. Used in
// development and tests; production deployments plug in the real resolver.
type StaticResolver struct{}

func (StaticResolver) Resolve(_ context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}
	return Principal{ID: token}, nil
}
