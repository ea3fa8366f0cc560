package viewmodel

// NoDateGroup labels the group of records without a usable date.
const NoDateGroup = "Sometime Soon…"

type Group[T any] struct {
	Label string `json:"label"`
	Items []T    `json:"items"`
}

// GroupByMonth splits already sorted items into runs sharing the month and
// year of date. Only adjacent items are merged, so a label can appear more
// than once (completed plans sort after open ones) and concatenating the
// groups always reproduces items.
func GroupByMonth[T any](items []T, date func(T) string) []Group[T] {
	groups := []Group[T]{}
	for _, it := range items {
		label := NoDateGroup
		if t, ok := ParseDate(date(it)); ok {
			label = t.Format("January 2006")
		}
		if n := len(groups); n > 0 && groups[n-1].Label == label {
			groups[n-1].Items = append(groups[n-1].Items, it)
			continue
		}
		groups = append(groups, Group[T]{Label: label, Items: []T{it}})
	}
	return groups
}
