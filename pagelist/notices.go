package pagelist

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultNoticeTTL is how long a pagination error notice stays visible
// before auto-dismissing.
const DefaultNoticeTTL = 5 * time.Second

const maxNotices = 16

// Notice is one dismissible, auto-expiring error message raised by a failed
// page load. Load errors never clear accumulated items; the notice is the
// only user-visible trace.
type Notice struct {
	ID       string
	Message  string
	RaisedAt time.Time
}

// NoticeStore holds the active notices for one list view. Expiry is handled
// by the underlying expirable LRU; Dismiss removes a notice early.
type NoticeStore struct {
	entries *expirable.LRU[string, Notice]
}

// NewNoticeStore creates a store whose notices expire after ttl. A
// non-positive ttl uses DefaultNoticeTTL.
func NewNoticeStore(ttl time.Duration) *NoticeStore {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &NoticeStore{
		entries: expirable.NewLRU[string, Notice](maxNotices, nil, ttl),
	}
}

// Add raises a notice and returns it.
func (s *NoticeStore) Add(message string) Notice {
	n := Notice{
		ID:       uuid.NewString(),
		Message:  message,
		RaisedAt: time.Now(),
	}
	s.entries.Add(n.ID, n)
	return n
}

// Active returns the notices that have not expired or been dismissed,
// oldest first.
func (s *NoticeStore) Active() []Notice {
	keys := s.entries.Keys()
	out := make([]Notice, 0, len(keys))
	for _, k := range keys {
		if n, ok := s.entries.Get(k); ok {
			out = append(out, n)
		}
	}
	return out
}

// Dismiss removes a notice before its TTL elapses.
func (s *NoticeStore) Dismiss(id string) {
	s.entries.Remove(id)
}
