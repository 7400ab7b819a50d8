// ABOUTME: Tests for the optimistic mutation state machine
// ABOUTME: Verifies rollback identity, per-entity snapshots, conflicts and notice expiry

package listctl

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMutatorRollbackRestoresList(t *testing.T) {
	clock := newFakeClock()
	m := NewMutator[item](NewNotices(0, clock.Now))
	before := items("pending", "pending", "approved")
	original := append([]item(nil), before...)

	patched, p, err := m.Begin(before, "b", Intent[item]{Label: "Approve", Patch: setStatus("approved")})
	require.NoError(t, err)
	require.Equal(t, StateOptimistic, p.State())
	require.Equal(t, "approved", patched[1].Status)
	require.Equal(t, original, before, "Begin must not modify the caller's slice")
	require.True(t, m.Busy("b"))

	after, out := m.Settle(patched, p, nil, errBoom)
	require.Equal(t, StateReverted, out.State)
	require.Equal(t, original, after)
	require.False(t, m.Busy("b"))
	require.NotNil(t, out.Notice)
	require.Equal(t, NoticeError, out.Notice.Level)
	require.Contains(t, out.Notice.Text, "Approve failed")
}

func TestMutatorRemoveRollbackKeepsPosition(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	before := items("pending", "pending", "pending", "pending")
	original := append([]item(nil), before...)

	patched, p, err := m.Begin(before, "c", Intent[item]{Label: "Reject", Remove: true})
	require.NoError(t, err)
	require.Len(t, patched, 3)

	after, out := m.Settle(patched, p, nil, errBoom)
	require.Equal(t, StateReverted, out.State)
	require.Equal(t, original, after)
}

func TestMutatorCommitKeepsPatch(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	patched, p, err := m.Begin(items("open", "open"), "a", Intent[item]{Label: "Acknowledge", Patch: setStatus("acknowledged")})
	require.NoError(t, err)

	after, out := m.Settle(patched, p, nil, nil)
	require.Equal(t, StateCommitted, out.State)
	require.Nil(t, out.Notice)
	require.Equal(t, "acknowledged", after[0].Status)
	require.Equal(t, StateCommitted, p.State())
}

func TestMutatorCommitReconcilesServerEntity(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	patched, p, err := m.Begin(items("open"), "a", Intent[item]{Label: "Resolve", Patch: setStatus("resolved")})
	require.NoError(t, err)

	fresh := item{ID: "a", Status: "resolved", Note: "resolved by admin"}
	after, _ := m.Settle(patched, p, &fresh, nil)
	require.Equal(t, fresh, after[0])
}

func TestMutatorRejectsSameEntityTwice(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	patched, _, err := m.Begin(items("pending"), "a", Intent[item]{Patch: setStatus("approved")})
	require.NoError(t, err)

	_, _, err = m.Begin(patched, "a", Intent[item]{Patch: setStatus("rejected")})
	require.ErrorIs(t, err, ErrMutationInFlight)
}

func TestMutatorUnknownEntity(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	_, _, err := m.Begin(items("open"), "zz", Intent[item]{})
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestMutatorIndependentRollbacks(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	list := items("pending", "pending", "pending")

	list, pa, err := m.Begin(list, "a", Intent[item]{Label: "Approve", Patch: setStatus("approved")})
	require.NoError(t, err)
	list, pc, err := m.Begin(list, "c", Intent[item]{Label: "Reject", Patch: setStatus("rejected")})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, m.InProgress())

	// c fails while a is still in flight; a's optimistic state must survive
	list, out := m.Settle(list, pc, nil, errBoom)
	require.Equal(t, StateReverted, out.State)
	require.Equal(t, "approved", list[0].Status)
	require.Equal(t, "pending", list[2].Status)

	list, out = m.Settle(list, pa, nil, nil)
	require.Equal(t, StateCommitted, out.State)
	require.Equal(t, "approved", list[0].Status)
	require.Empty(t, m.InProgress())
}

func TestMutatorConflictIsInformational(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	patched, p, err := m.Begin(items("online"), "a", Intent[item]{Label: "Restart", Patch: setStatus("restarting")})
	require.NoError(t, err)

	after, out := m.Settle(patched, p, nil, fmt.Errorf("restart: %w", &conflictErr{msg: "409"}))
	require.True(t, out.Conflict)
	require.Equal(t, StateReverted, out.State)
	require.Equal(t, "online", after[0].Status)
	require.Equal(t, NoticeInfo, out.Notice.Level)
	require.Contains(t, out.Notice.Text, "already pending")
}

func TestMutatorConflictText(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	patched, p, _ := m.Begin(items("online"), "a", Intent[item]{Label: "Restart", ConflictText: "Restart already pending for nginx"})

	_, out := m.Settle(patched, p, nil, &conflictErr{msg: "409"})
	require.Equal(t, "Restart already pending for nginx", out.Notice.Text)
}

func TestMutatorRebaseReappliesPatch(t *testing.T) {
	m := NewMutator[item](NewNotices(0, nil))
	_, p, err := m.Begin(items("open", "open"), "b", Intent[item]{Patch: setStatus("acknowledged")})
	require.NoError(t, err)

	fresh := []item{{ID: "b", Status: "open", Note: "fresh"}, {ID: "a", Status: "open"}}
	rebased := m.Rebase(fresh)
	require.Equal(t, "acknowledged", rebased[0].Status)
	require.Equal(t, "fresh", rebased[0].Note)

	after, _ := m.Settle(rebased, p, nil, errBoom)
	require.Equal(t, fresh, after)
}

func TestNoticesExpireAndDismiss(t *testing.T) {
	clock := newFakeClock()
	n := NewNotices(DefaultNoticeTTL, clock.Now)

	first := n.Post(NoticeError, "first")
	n.Post(NoticeInfo, "second")
	require.Len(t, n.Active(), 2)

	n.Dismiss(first.ID)
	active := n.Active()
	require.Len(t, active, 1)
	require.Equal(t, "second", active[0].Text)

	clock.Advance(4 * time.Second)
	require.Len(t, n.Active(), 1)

	clock.Advance(time.Second)
	require.Empty(t, n.Active())
}

func TestNoticesBounded(t *testing.T) {
	n := NewNotices(time.Minute, nil)
	for i := 0; i < maxNotices+3; i++ {
		n.Post(NoticeError, fmt.Sprint(i))
	}
	active := n.Active()
	require.Len(t, active, maxNotices)
	require.Equal(t, "3", active[0].Text)
}

func TestMutationStateString(t *testing.T) {
	require.Equal(t, "idle", StateIdle.String())
	require.Equal(t, "optimistic", StateOptimistic.String())
	require.Equal(t, "committed", StateCommitted.String())
	require.Equal(t, "reverted", StateReverted.String())
	require.Equal(t, "info", NoticeInfo.String())
	require.Equal(t, "error", NoticeError.String())
}
