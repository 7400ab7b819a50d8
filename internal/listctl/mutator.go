// ABOUTME: Optimistic mutation state machine with per-entity rollback
// ABOUTME: Patches the local list immediately and restores the saved entity if the call fails

package listctl

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMutationInFlight is returned when the entity already has a mutation in flight
	ErrMutationInFlight = errors.New("mutation already in progress")
	// ErrUnknownEntity is returned when the id is not part of the current snapshot
	ErrUnknownEntity = errors.New("entity not in list")
)

// Entity is a backend record with a stable id and a status from a closed set
type Entity interface {
	EntityID() string
	EntityStatus() string
}

// MutationState is the lifecycle position of one mutation attempt
type MutationState int

const (
	StateIdle MutationState = iota
	StateOptimistic
	StateCommitted
	StateReverted
)

// String returns the state name
func (s MutationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOptimistic:
		return "optimistic"
	case StateCommitted:
		return "committed"
	case StateReverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Intent describes a local edit and the backend call that makes it durable
type Intent[E Entity] struct {
	// Label names the operation in notices, e.g. "Acknowledge".
	Label string
	// Patch returns the locally visible entity. It must not modify shared references of its input.
	Patch func(E) E
	// Remove drops the entity from the list instead of patching it.
	Remove bool
	// Call performs the mutation. A non-nil entity replaces the optimistic one on success.
	Call func(ctx context.Context, id string) (*E, error)
	// ConflictText overrides the info notice shown when the backend reports a conflict.
	ConflictText string
}

// Pending is an in-flight mutation together with the entity as it was before the patch
type Pending[E Entity] struct {
	ID     string
	Intent Intent[E]

	state   MutationState
	prior   E
	index   int
	present bool
}

// State returns the current lifecycle state
func (p *Pending[E]) State() MutationState {
	return p.state
}

// MutationResult carries the backend response of a pending mutation
type MutationResult[E Entity] struct {
	Pending *Pending[E]
	Updated *E
	Err     error
}

// Outcome summarizes how a mutation settled
type Outcome struct {
	ID       string
	State    MutationState
	Conflict bool
	Err      error
	Notice   *Notice
}

// conflictError is implemented by backend errors that represent a 409
type conflictError interface {
	Conflict() bool
}

// IsConflict reports whether err carries a conflict status
func IsConflict(err error) bool {
	var ce conflictError
	return errors.As(err, &ce) && ce.Conflict()
}

// Mutator tracks in-flight mutations for one list. It is not safe for concurrent
// use on its own; the owning controller serializes access.
type Mutator[E Entity] struct {
	inFlight map[string]*Pending[E]
	notices  *Notices
}

// NewMutator creates a mutator posting failures to notices
func NewMutator[E Entity](notices *Notices) *Mutator[E] {
	return &Mutator[E]{
		inFlight: make(map[string]*Pending[E]),
		notices:  notices,
	}
}

// Begin saves the entity, applies the intent to items and marks the id in progress.
// It returns the patched list, which never shares a backing array with items.
func (m *Mutator[E]) Begin(items []E, id string, intent Intent[E]) ([]E, *Pending[E], error) {
	if _, busy := m.inFlight[id]; busy {
		return items, nil, fmt.Errorf("%w: %s", ErrMutationInFlight, id)
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return items, nil, fmt.Errorf("%w: %s", ErrUnknownEntity, id)
	}

	p := &Pending[E]{
		ID:     id,
		Intent: intent,
		state:  StateOptimistic,
	}
	out := m.capture(p, items, idx)
	m.inFlight[id] = p
	return out, p, nil
}

// capture records the entity at idx and applies the intent, returning a new list
func (m *Mutator[E]) capture(p *Pending[E], items []E, idx int) []E {
	p.prior = items[idx]
	p.index = idx
	p.present = true

	if p.Intent.Remove {
		out := make([]E, 0, len(items)-1)
		out = append(out, items[:idx]...)
		return append(out, items[idx+1:]...)
	}

	out := make([]E, len(items))
	copy(out, items)
	if p.Intent.Patch != nil {
		out[idx] = p.Intent.Patch(out[idx])
	}
	return out
}

// Rebase re-applies in-flight patches after the list was replaced by a fetch, so the
// optimistic view survives a refresh and rollback targets the fresh entity.
func (m *Mutator[E]) Rebase(items []E) []E {
	for _, id := range m.InProgress() {
		p := m.inFlight[id]
		idx := indexOf(items, id)
		if idx < 0 {
			p.present = false
			continue
		}
		items = m.capture(p, items, idx)
	}
	return items
}

// Settle finishes a pending mutation and returns the reconciled list
func (m *Mutator[E]) Settle(items []E, p *Pending[E], updated *E, err error) ([]E, Outcome) {
	delete(m.inFlight, p.ID)
	out := Outcome{ID: p.ID, Err: err}

	if err == nil {
		p.state = StateCommitted
		out.State = StateCommitted
		if updated != nil && !p.Intent.Remove {
			if idx := indexOf(items, p.ID); idx >= 0 {
				patched := make([]E, len(items))
				copy(patched, items)
				patched[idx] = *updated
				items = patched
			}
		}
		return items, out
	}

	p.state = StateReverted
	out.State = StateReverted
	items = m.revert(items, p)

	var notice Notice
	if IsConflict(err) {
		out.Conflict = true
		text := p.Intent.ConflictText
		if text == "" {
			text = p.Intent.Label + " already pending"
		}
		notice = m.notices.Post(NoticeInfo, text)
	} else {
		notice = m.notices.Post(NoticeError, fmt.Sprintf("%s failed: %v", p.Intent.Label, err))
	}
	out.Notice = &notice
	return items, out
}

// revert restores the whole saved entity; field-level partial reverts are never attempted
func (m *Mutator[E]) revert(items []E, p *Pending[E]) []E {
	if !p.present {
		return items
	}
	if p.Intent.Remove {
		if indexOf(items, p.ID) >= 0 {
			return items
		}
		idx := p.index
		if idx > len(items) {
			idx = len(items)
		}
		out := make([]E, 0, len(items)+1)
		out = append(out, items[:idx]...)
		out = append(out, p.prior)
		return append(out, items[idx:]...)
	}

	idx := indexOf(items, p.ID)
	if idx < 0 {
		return items
	}
	out := make([]E, len(items))
	copy(out, items)
	out[idx] = p.prior
	return out
}

// Busy reports whether id has a mutation in flight
func (m *Mutator[E]) Busy(id string) bool {
	_, ok := m.inFlight[id]
	return ok
}

// InProgress returns the ids with mutations in flight, sorted
func (m *Mutator[E]) InProgress() []string {
	ids := make([]string, 0, len(m.inFlight))
	for id := range m.inFlight {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// removedCount returns how many in-flight removals are applied to the current list
func (m *Mutator[E]) removedCount() int {
	n := 0
	for _, p := range m.inFlight {
		if p.Intent.Remove && p.present {
			n++
		}
	}
	return n
}

func indexOf[E Entity](items []E, id string) int {
	for i, item := range items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}
