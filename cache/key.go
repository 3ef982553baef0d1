package cache

import "strings"

// KeySeparator defines the delimiter used between query key segments.
const KeySeparator = "::"

// Key is the composite identifier for one cached result set. It is an
// ordered list of segments, e.g. {"properties", "detail", propertyID}.
// Keys compare by content: two keys are equal iff their segment sequences
// are equal. Filter descriptors are reduced to a deterministic segment by
// the serializer before they become part of a Key.
type Key []string

// NewKey builds a Key from the given segments.
func NewKey(segments ...string) Key {
	return Key(segments)
}

// String returns the canonical string form used by cache backends.
func (k Key) String() string {
	return strings.Join(k, KeySeparator)
}

// IsZero reports whether the key has no segments.
func (k Key) IsZero() bool {
	return len(k) == 0
}

// Valid reports whether every segment is non-empty. A key with an empty
// segment would either silently miss its target entry or, worse, collapse
// into a prefix that matches unrelated entries, so invalid keys must be
// skipped by callers rather than sent to a backend.
func (k Key) Valid() bool {
	if len(k) == 0 {
		return false
	}
	for _, seg := range k {
		if seg == "" {
			return false
		}
	}
	return true
}

// HasPrefix reports whether k starts with the given prefix, comparing
// whole segments.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, seg := range prefix {
		if k[i] != seg {
			return false
		}
	}
	return true
}

// MatchesPrefix reports whether a stored string-form key falls under the
// given prefix. Matching is segment-wise: the prefix "units::u1" matches
// "units::u1::jobs" but never "units::u10". This is what keeps a scoped
// invalidation from bleeding into neighbouring ids.
func MatchesPrefix(stored string, prefix Key) bool {
	if !prefix.Valid() {
		return false
	}
	p := prefix.String()
	if stored == p {
		return true
	}
	return strings.HasPrefix(stored, p+KeySeparator)
}

// SplitKey parses a stored string-form key back into its segments.
func SplitKey(stored string) Key {
	if stored == "" {
		return nil
	}
	return Key(strings.Split(stored, KeySeparator))
}
