// Package viewmodel turns a raw collection plus a view-state into the list a
// view renders: filter by status, category and search text, then sort, then
// optionally group by month. One Schema per entity parameterizes the steps.
package viewmodel

import (
	"net/url"
	"strings"
	"time"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// All disables a status or category filter.
const All = "all"

// ViewState is the user-chosen presentation of a list.
type ViewState struct {
	Status    string    `json:"status,omitempty"`
	Category  string    `json:"category,omitempty"`
	Sort      string    `json:"sort,omitempty"`
	Direction Direction `json:"dir,omitempty"`
	Search    string    `json:"q,omitempty"`
}

// FromQuery reads status, category, sort, dir and q.
func FromQuery(q url.Values) ViewState {
	return ViewState{
		Status:    q.Get("status"),
		Category:  q.Get("category"),
		Sort:      q.Get("sort"),
		Direction: Direction(strings.ToLower(q.Get("dir"))),
		Search:    q.Get("q"),
	}
}

// Query is the inverse of FromQuery; empty fields are left out.
func (vs ViewState) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("status", vs.Status)
	set("category", vs.Category)
	set("sort", vs.Sort)
	set("dir", string(vs.Direction))
	set("q", vs.Search)
	return q
}

// Predicate decides status membership. today is midnight UTC of the
// current day, for date based statuses.
type Predicate[T any] func(item T, today time.Time) bool

// Schema describes how one entity is filtered, searched and sorted.
type Schema[T any] struct {
	Entity string

	// Statuses lists the status filters in display order; "all" is implied.
	Statuses    []string
	StatusMatch map[string]Predicate[T]

	// Categories lists the known categories in display order. Category may be
	// nil for entities without one.
	Categories []string
	Category   func(T) string

	Search func(T) []string

	SortKeys         []string
	Sorts            map[string]SortKey[T]
	DefaultSort      string
	DefaultDirection Direction

	// Rank leads every comparison and ignores Direction: lower ranks first.
	Rank func(T) int
	// Tiebreak runs after the user key, ascending.
	Tiebreak func(T) int
	ID       func(T) string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Normalize fills in the schema defaults for unset or unknown values.
func (s Schema[T]) Normalize(vs ViewState) ViewState {
	if vs.Status == "" || (vs.Status != All && s.StatusMatch[vs.Status] == nil) {
		vs.Status = All
	}
	if vs.Category == "" || s.Category == nil {
		vs.Category = All
	}
	if _, ok := s.Sorts[vs.Sort]; !ok {
		vs.Sort = s.DefaultSort
	}
	if vs.Direction != Asc && vs.Direction != Desc {
		vs.Direction = s.DefaultDirection
		if vs.Direction == "" {
			vs.Direction = Asc
		}
	}
	vs.Search = strings.TrimSpace(vs.Search)
	return vs
}

// Apply filters then sorts. items is never modified; the result is a new
// slice, empty (not nil) when nothing matches.
func (s Schema[T]) Apply(items []T, vs ViewState) []T {
	vs = s.Normalize(vs)
	out := s.Filter(items, vs)
	s.sortNormalized(out, vs)
	return out
}

// Filter keeps the items matching status, category and search, in input order.
func (s Schema[T]) Filter(items []T, vs ViewState) []T {
	vs = s.Normalize(vs)
	today := s.today()
	match := s.StatusMatch[vs.Status]
	needle := strings.ToLower(vs.Search)

	out := make([]T, 0, len(items))
	for _, it := range items {
		if match != nil && !match(it, today) {
			continue
		}
		if vs.Category != All && s.Category(it) != vs.Category {
			continue
		}
		if needle != "" && !s.matches(it, needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (s Schema[T]) matches(it T, needle string) bool {
	if s.Search == nil {
		return true
	}
	for _, f := range s.Search(it) {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func (s Schema[T]) today() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
