package viewmodel

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey compares two items by one user-selectable key. Exactly one of the
// extractors is expected to be set.
type SortKey[T any] struct {
	Date   func(T) string // YYYY-MM-DD; empty or invalid sorts as +∞
	Text   func(T) string // collated, case-insensitive
	Number func(T) int64
}

// Sort orders items in place.
func (s Schema[T]) Sort(items []T, vs ViewState) {
	s.sortNormalized(items, s.Normalize(vs))
}

func (s Schema[T]) sortNormalized(items []T, vs ViewState) {
	key := s.Sorts[vs.Sort]
	// A Collator is not safe for concurrent use.
	col := collate.New(language.English, collate.IgnoreCase)
	desc := vs.Direction == Desc

	slices.SortStableFunc(items, func(a, b T) int {
		if s.Rank != nil {
			if c := cmp.Compare(s.Rank(a), s.Rank(b)); c != 0 {
				return c
			}
		}
		c := key.compare(col, a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if s.Tiebreak != nil {
			if c := cmp.Compare(s.Tiebreak(a), s.Tiebreak(b)); c != 0 {
				return c
			}
		}
		if s.ID != nil {
			return strings.Compare(s.ID(a), s.ID(b))
		}
		return 0
	})
}

func (k SortKey[T]) compare(col *collate.Collator, a, b T) int {
	switch {
	case k.Date != nil:
		return cmp.Compare(dateKey(k.Date(a)), dateKey(k.Date(b)))
	case k.Text != nil:
		return col.CompareString(k.Text(a), k.Text(b))
	case k.Number != nil:
		return cmp.Compare(k.Number(a), k.Number(b))
	}
	return 0
}

// dateKey maps a date to days since the epoch, or +Inf when it is missing
// or unparseable.
func dateKey(v string) float64 {
	t, ok := ParseDate(v)
	if !ok {
		return math.Inf(1)
	}
	return float64(t.Unix() / 86400)
}

// ParseDate accepts YYYY-MM-DD and, for older records, full RFC 3339 times.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
