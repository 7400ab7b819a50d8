// ABOUTME: Persistent session context for the CLI and dashboard
// ABOUTME: Tracks the active discovery, recent subnets and last-used filters per page

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// FileName is the session file inside the config directory
const FileName = "session.json"

// MaxRecentSubnets is the maximum number of recent subnets to keep
const MaxRecentSubnets = 5

// Discovery is the discovery session the user last started
type Discovery struct {
	ID        int       `json:"id"`
	Subnet    string    `json:"subnet"`
	StartedAt time.Time `json:"started_at"`
}

type sessionData struct {
	Discovery     *Discovery        `json:"discovery,omitempty"`
	RecentSubnets []string          `json:"recent_subnets,omitempty"`
	Filters       map[string]string `json:"filters,omitempty"`
}

// Store owns the session file. Every change is written through immediately.
type Store struct {
	mu   sync.Mutex
	dir  string
	data sessionData
}

// Open loads the session from dir. A missing or corrupt file starts a fresh session.
// An empty dir keeps the session in memory only.
func Open(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if dir == "" {
		return s, nil
	}

	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		// Invalid JSON, start fresh
		s.data = sessionData{}
	}
	return s, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, FileName)
}

// Active returns the running discovery, if any
func (s *Store) Active() (Discovery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Discovery == nil {
		return Discovery{}, false
	}
	return *s.data.Discovery, true
}

// Begin records d as the active discovery and remembers its subnet
func (s *Store) Begin(d Discovery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.Discovery = &d
	if d.Subnet != "" {
		recent := make([]string, 0, len(s.data.RecentSubnets)+1)
		recent = append(recent, d.Subnet)
		for _, subnet := range s.data.RecentSubnets {
			if subnet != d.Subnet {
				recent = append(recent, subnet)
			}
		}
		if len(recent) > MaxRecentSubnets {
			recent = recent[:MaxRecentSubnets]
		}
		s.data.RecentSubnets = recent
	}
	return s.save()
}

// End clears the active discovery
func (s *Store) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Discovery = nil
	return s.save()
}

// RecentSubnets returns recently scanned subnets, newest first
func (s *Store) RecentSubnets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.RecentSubnets)
}

// Filters returns the serialized filters last used on page
func (s *Store) Filters(page string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Filters[page]
}

// SetFilters remembers the serialized filters of page. An empty value forgets them.
func (s *Store) SetFilters(page, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data.Filters[page] == raw {
		return nil
	}
	if raw == "" {
		delete(s.data.Filters, page)
	} else {
		if s.data.Filters == nil {
			s.data.Filters = make(map[string]string)
		}
		s.data.Filters[page] = raw
	}
	return s.save()
}

// save writes the session; the caller holds mu
func (s *Store) save() error {
	if s.dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
