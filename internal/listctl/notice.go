// ABOUTME: Transient user-facing notices raised by list operations
// ABOUTME: Notices expire after a fixed delay or when dismissed explicitly

package listctl

import "time"

// DefaultNoticeTTL is how long a notice stays visible without dismissal
const DefaultNoticeTTL = 5 * time.Second

// maxNotices bounds the queue so a burst of failures cannot grow it without limit
const maxNotices = 8

// NoticeLevel distinguishes informational outcomes from failures
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// String returns the level name
func (l NoticeLevel) String() string {
	switch l {
	case NoticeInfo:
		return "info"
	case NoticeError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice is a toast-style message
type Notice struct {
	ID        int
	Level     NoticeLevel
	Text      string
	ExpiresAt time.Time
}

// Notices is an ordered, self-expiring list of notices
type Notices struct {
	ttl    time.Duration
	now    func() time.Time
	nextID int
	items  []Notice
}

// NewNotices creates a notice list. A nil clock uses time.Now.
func NewNotices(ttl time.Duration, now func() time.Time) *Notices {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Notices{ttl: ttl, now: now}
}

// Post adds a notice and returns it
func (n *Notices) Post(level NoticeLevel, text string) Notice {
	n.nextID++
	notice := Notice{
		ID:        n.nextID,
		Level:     level,
		Text:      text,
		ExpiresAt: n.now().Add(n.ttl),
	}
	n.items = append(n.items, notice)
	if len(n.items) > maxNotices {
		n.items = n.items[len(n.items)-maxNotices:]
	}
	return notice
}

// Dismiss removes the notice with id. Unknown ids are ignored.
func (n *Notices) Dismiss(id int) {
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return
		}
	}
}

// DismissAll clears every notice
func (n *Notices) DismissAll() {
	n.items = nil
}

// Active drops expired notices and returns a copy of the rest, oldest first
func (n *Notices) Active() []Notice {
	now := n.now()
	kept := n.items[:0]
	for _, item := range n.items {
		if now.Before(item.ExpiresAt) {
			kept = append(kept, item)
		}
	}
	n.items = kept

	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}
