// ABOUTME: Cached server-id to display-name lookup
// ABOUTME: Concurrent misses share one backend call via singleflight

package client

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/DarrenBenson/HomelabCmd-sub011/internal/cache"
)

// DefaultLookupTTL is how long fetched server names are reused
const DefaultLookupTTL = 5 * time.Minute

const serverNamesKey = "server-names"

// ServerNames resolves server ids to display names for alert and action rows
type ServerNames struct {
	client  *Client
	cache   *cache.Cache[map[string]string]
	sfGroup singleflight.Group
}

// NewServerNames creates a lookup backed by c. A ttl <= 0 uses DefaultLookupTTL.
func NewServerNames(c *Client, ttl time.Duration) *ServerNames {
	if ttl <= 0 {
		ttl = DefaultLookupTTL
	}
	return &ServerNames{
		client: c,
		cache:  cache.New[map[string]string](ttl),
	}
}

// Names returns the id to name map, fetching the server list on a cache miss
func (s *ServerNames) Names(ctx context.Context) (map[string]string, error) {
	if names, ok := s.cache.Get(serverNamesKey); ok {
		return names, nil
	}

	v, err, _ := s.sfGroup.Do(serverNamesKey, func() (interface{}, error) {
		resp, err := s.client.ListServers(ctx, ListParams{})
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(resp.Items))
		for _, server := range resp.Items {
			names[server.ID] = server.Name()
		}
		s.cache.Set(serverNamesKey, names)
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

// Name resolves one id, falling back to the id itself when unknown or on error
func (s *ServerNames) Name(ctx context.Context, id string) string {
	names, err := s.Names(ctx)
	if err != nil {
		return id
	}
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

// Invalidate forces the next lookup to refetch
func (s *ServerNames) Invalidate() {
	s.cache.Clear(serverNamesKey)
}

// Close releases the cache cleanup loop
func (s *ServerNames) Close() {
	s.cache.Close()
}
