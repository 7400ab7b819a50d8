// ABOUTME: Ad-hoc scan and network discovery endpoints
// ABOUTME: Triggers scans, lists them, and drives discovery sessions

package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// ScanRequest is the body of a scan trigger
type ScanRequest struct {
	Hostname string `json:"hostname"`
	ScanType string `json:"scan_type"`
}

// DiscoveryRequest is the body of a discovery start
type DiscoveryRequest struct {
	Subnet string `json:"subnet"`
}

// ListScans fetches one page of scans
func (c *Client) ListScans(ctx context.Context, params ListParams) (*ListResponse[Scan], error) {
	return list[Scan](ctx, c, "/scans", "scans", params)
}

// GetScan fetches a single scan
func (c *Client) GetScan(ctx context.Context, id int) (*Scan, error) {
	var scan Scan
	if err := c.do(ctx, http.MethodGet, "/scans/"+strconv.Itoa(id), nil, nil, &scan); err != nil {
		return nil, err
	}
	return &scan, nil
}

// TriggerScan starts a quick or full scan of hostname
func (c *Client) TriggerScan(ctx context.Context, hostname, scanType string) (*Scan, error) {
	if hostname == "" {
		return nil, fmt.Errorf("hostname is required")
	}
	if scanType == "" {
		scanType = "quick"
	}
	scan, err := post[Scan](ctx, c, "/scans", ScanRequest{Hostname: hostname, ScanType: scanType})
	if err != nil {
		return nil, err
	}
	if scan == nil {
		return nil, fmt.Errorf("invalid response from backend: empty scan")
	}
	return scan, nil
}

// StartDiscovery starts a discovery session over subnet
func (c *Client) StartDiscovery(ctx context.Context, subnet string) (*Discovery, error) {
	if subnet == "" {
		return nil, fmt.Errorf("subnet is required")
	}
	d, err := post[Discovery](ctx, c, "/discovery", DiscoveryRequest{Subnet: subnet})
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("invalid response from backend: empty discovery")
	}
	return d, nil
}

// GetDiscovery fetches the state of a discovery session
func (c *Client) GetDiscovery(ctx context.Context, id int) (*Discovery, error) {
	var d Discovery
	if err := c.do(ctx, http.MethodGet, "/discovery/"+strconv.Itoa(id), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}
