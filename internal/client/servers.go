// ABOUTME: Server inventory and power cost endpoints
// ABOUTME: Lists servers, fetches one server, and requests service restarts

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListServers fetches the server inventory
func (c *Client) ListServers(ctx context.Context, params ListParams) (*ListResponse[Server], error) {
	return list[Server](ctx, c, "/servers", "servers", params)
}

// GetServer fetches a single server
func (c *Client) GetServer(ctx context.Context, id string) (*Server, error) {
	var server Server
	if err := c.do(ctx, http.MethodGet, "/servers/"+url.PathEscape(id), nil, nil, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

// RestartService queues a restart action for a service on a server. The backend
// answers 409 when a restart for the same service is already pending.
func (c *Client) RestartService(ctx context.Context, serverID, service string) (*Action, error) {
	if service == "" {
		return nil, fmt.Errorf("service name is required")
	}
	path := fmt.Sprintf("/servers/%s/services/%s/restart", url.PathEscape(serverID), url.PathEscape(service))
	return post[Action](ctx, c, path, nil)
}

// ListCosts fetches the per-server power cost breakdown
func (c *Client) ListCosts(ctx context.Context, params ListParams) (*ListResponse[CostEntry], error) {
	return list[CostEntry](ctx, c, "/costs/breakdown", "servers", params)
}
