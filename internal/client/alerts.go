// ABOUTME: Alert endpoints
// ABOUTME: Lists alerts and moves them through the acknowledge/resolve lifecycle

package client

import (
	"context"
	"net/http"
	"net/url"
)

// ListAlerts fetches one page of alerts
func (c *Client) ListAlerts(ctx context.Context, params ListParams) (*ListResponse[Alert], error) {
	return list[Alert](ctx, c, "/alerts", "alerts", params)
}

// GetAlert fetches a single alert
func (c *Client) GetAlert(ctx context.Context, id string) (*Alert, error) {
	var alert Alert
	if err := c.do(ctx, http.MethodGet, "/alerts/"+url.PathEscape(id), nil, nil, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// AcknowledgeAlert marks an alert as acknowledged
func (c *Client) AcknowledgeAlert(ctx context.Context, id string) (*Alert, error) {
	return post[Alert](ctx, c, "/alerts/"+url.PathEscape(id)+"/acknowledge", nil)
}

// ResolveAlert marks an alert as resolved
func (c *Client) ResolveAlert(ctx context.Context, id string) (*Alert, error) {
	return post[Alert](ctx, c, "/alerts/"+url.PathEscape(id)+"/resolve", nil)
}
