// ABOUTME: Entity types returned by the HomelabCmd API
// ABOUTME: Servers, alerts, remediation actions, scans and cost entries

package client

import (
	"strconv"
	"time"
)

// Server statuses
const (
	ServerOnline  = "online"
	ServerOffline = "offline"
	ServerWarning = "warning"
	ServerUnknown = "unknown"
)

// Alert statuses and severities
const (
	AlertOpen         = "open"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"

	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Action statuses
const (
	ActionPending   = "pending"
	ActionApproved  = "approved"
	ActionExecuting = "executing"
	ActionCompleted = "completed"
	ActionFailed    = "failed"
	ActionRejected  = "rejected"
)

// Scan statuses
const (
	ScanPending   = "pending"
	ScanRunning   = "running"
	ScanCompleted = "completed"
	ScanFailed    = "failed"
)

// Discovery statuses
const (
	DiscoveryRunning   = "running"
	DiscoveryCompleted = "completed"
	DiscoveryFailed    = "failed"
)

var (
	ServerStatuses  = []string{ServerOnline, ServerOffline, ServerWarning, ServerUnknown}
	ServerTypes     = []string{"physical", "vm", "container", "nas"}
	AlertStatuses   = []string{AlertOpen, AlertAcknowledged, AlertResolved}
	AlertSeverities = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
	ActionStatuses  = []string{ActionPending, ActionApproved, ActionExecuting, ActionCompleted, ActionFailed, ActionRejected}
	ScanStatuses    = []string{ScanPending, ScanRunning, ScanCompleted, ScanFailed}
	ScanTypes       = []string{"quick", "full"}
)

// Server is a monitored machine
type Server struct {
	ID            string     `json:"id"`
	Hostname      string     `json:"hostname"`
	DisplayName   string     `json:"display_name,omitempty"`
	IPAddress     string     `json:"ip_address,omitempty"`
	Type          string     `json:"machine_type,omitempty"`
	Status        string     `json:"status"`
	CPUPercent    float64    `json:"cpu_percent"`
	MemoryPercent float64    `json:"memory_percent"`
	DiskPercent   float64    `json:"disk_percent"`
	TDPWatts      int        `json:"tdp_watts,omitempty"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
	Paused        bool       `json:"is_paused,omitempty"`
}

func (s Server) EntityID() string     { return s.ID }
func (s Server) EntityStatus() string { return s.Status }

// Name returns the display name, falling back to the hostname
func (s Server) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Hostname
}

// Alert is a threshold breach or offline event raised against a server
type Alert struct {
	ID             int        `json:"id"`
	ServerID       string     `json:"server_id"`
	ServerName     string     `json:"server_name,omitempty"`
	AlertType      string     `json:"alert_type"`
	Severity       string     `json:"severity"`
	Status         string     `json:"status"`
	Title          string     `json:"title"`
	Message        string     `json:"message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	AutoResolved   bool       `json:"auto_resolved,omitempty"`
}

func (a Alert) EntityID() string     { return strconv.Itoa(a.ID) }
func (a Alert) EntityStatus() string { return a.Status }

// Action is a remediation step awaiting or past approval
type Action struct {
	ID          int        `json:"id"`
	ServerID    string     `json:"server_id"`
	ActionType  string     `json:"action_type"`
	ServiceName string     `json:"service_name,omitempty"`
	Command     string     `json:"command,omitempty"`
	Status      string     `json:"status"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
	Reason      string     `json:"rejection_reason,omitempty"`
	Output      string     `json:"stdout,omitempty"`
	ExitCode    *int       `json:"exit_code,omitempty"`
}

func (a Action) EntityID() string     { return strconv.Itoa(a.ID) }
func (a Action) EntityStatus() string { return a.Status }

// Scan is an ad-hoc inventory scan of a host
type Scan struct {
	ID          int        `json:"id"`
	Hostname    string     `json:"hostname"`
	ScanType    string     `json:"scan_type"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"current_step,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

func (s Scan) EntityID() string     { return strconv.Itoa(s.ID) }
func (s Scan) EntityStatus() string { return s.Status }

// CostEntry is the estimated power cost of one server
type CostEntry struct {
	ServerID             string  `json:"server_id"`
	Hostname             string  `json:"hostname"`
	MachineCategory      string  `json:"machine_category,omitempty"`
	TDPWatts             int     `json:"tdp_watts"`
	EstimatedDailyCost   float64 `json:"estimated_daily_cost"`
	EstimatedMonthlyCost float64 `json:"estimated_monthly_cost"`
}

func (c CostEntry) EntityID() string { return c.ServerID }

// EntityStatus is empty: cost entries carry no lifecycle
func (c CostEntry) EntityStatus() string { return "" }

// Discovery is a network discovery session
type Discovery struct {
	ID          int                `json:"id"`
	Subnet      string             `json:"subnet"`
	Status      string             `json:"status"`
	Progress    int                `json:"progress_percent"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Devices     []DiscoveredDevice `json:"devices,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// DiscoveredDevice is a host found by a discovery session
type DiscoveredDevice struct {
	IP           string  `json:"ip"`
	Hostname     string  `json:"hostname,omitempty"`
	ResponseTime float64 `json:"response_time_ms"`
	SSHReachable bool    `json:"ssh_reachable"`
}
