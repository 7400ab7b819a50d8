// ABOUTME: Remediation action endpoints
// ABOUTME: Lists actions and approves or rejects pending ones

package client

import (
	"context"
	"net/http"
	"net/url"
)

// RejectRequest is the body of a reject call
type RejectRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ListActions fetches one page of remediation actions
func (c *Client) ListActions(ctx context.Context, params ListParams) (*ListResponse[Action], error) {
	return list[Action](ctx, c, "/actions", "actions", params)
}

// GetAction fetches a single action
func (c *Client) GetAction(ctx context.Context, id string) (*Action, error) {
	var action Action
	if err := c.do(ctx, http.MethodGet, "/actions/"+url.PathEscape(id), nil, nil, &action); err != nil {
		return nil, err
	}
	return &action, nil
}

// ApproveAction approves a pending action for execution
func (c *Client) ApproveAction(ctx context.Context, id string) (*Action, error) {
	return post[Action](ctx, c, "/actions/"+url.PathEscape(id)+"/approve", nil)
}

// RejectAction rejects a pending action with an optional reason
func (c *Client) RejectAction(ctx context.Context, id, reason string) (*Action, error) {
	return post[Action](ctx, c, "/actions/"+url.PathEscape(id)+"/reject", RejectRequest{Reason: reason})
}
