package viewmodel

import (
	"time"

	"lovenest/models"
)

func completedRank(done bool) int {
	if done {
		return 1
	}
	return 0
}

// Plans: completed plans always sink below open ones, and among equals the
// ones carrying a memory come first.
var Plans = Schema[models.Plan]{
	Entity:   "plans",
	Statuses: []string{"upcoming", "completed", "withMemories"},
	StatusMatch: map[string]Predicate[models.Plan]{
		"upcoming":     func(p models.Plan, _ time.Time) bool { return !p.IsCompleted },
		"completed":    func(p models.Plan, _ time.Time) bool { return p.IsCompleted },
		"withMemories": func(p models.Plan, _ time.Time) bool { return p.Memory != nil },
	},
	Categories: categoryNames(models.PlanTypes),
	Category:   func(p models.Plan) string { return string(p.Type) },
	Search: func(p models.Plan) []string {
		fields := []string{p.Title}
		if p.Memory != nil {
			fields = append(fields, p.Memory.Notes...)
		}
		return fields
	},
	SortKeys: []string{"date", "title", "category"},
	Sorts: map[string]SortKey[models.Plan]{
		"date":     {Date: func(p models.Plan) string { return p.Date }},
		"title":    {Text: func(p models.Plan) string { return p.Title }},
		"category": {Text: func(p models.Plan) string { return string(p.Type) }},
	},
	DefaultSort: "date",
	Rank:        func(p models.Plan) int { return completedRank(p.IsCompleted) },
	Tiebreak: func(p models.Plan) int {
		if p.Memory != nil {
			return 0
		}
		return 1
	},
	ID: func(p models.Plan) string { return p.ID },
}

var BucketList = Schema[models.BucketListItem]{
	Entity:   "bucketList",
	Statuses: []string{"pending", "completed"},
	StatusMatch: map[string]Predicate[models.BucketListItem]{
		"pending":   func(b models.BucketListItem, _ time.Time) bool { return !b.IsCompleted },
		"completed": func(b models.BucketListItem, _ time.Time) bool { return b.IsCompleted },
	},
	Categories: categoryNames(models.BucketCategories),
	Category:   func(b models.BucketListItem) string { return string(b.Category) },
	Search:     func(b models.BucketListItem) []string { return []string{b.Title, b.Notes} },
	SortKeys:   []string{"date", "title", "category"},
	Sorts: map[string]SortKey[models.BucketListItem]{
		"date":     {Date: func(b models.BucketListItem) string { return b.TargetDate }},
		"title":    {Text: func(b models.BucketListItem) string { return b.Title }},
		"category": {Text: func(b models.BucketListItem) string { return string(b.Category) }},
	},
	DefaultSort: "date",
	Rank:        func(b models.BucketListItem) int { return completedRank(b.IsCompleted) },
	ID:          func(b models.BucketListItem) string { return b.ID },
}

var Dreams = Schema[models.Dream]{
	Entity:     "dreams",
	Categories: categoryNames(models.DreamCategories),
	Category:   func(d models.Dream) string { return string(d.Category) },
	Search:     func(d models.Dream) []string { return []string{d.Title, d.Description} },
	SortKeys:   []string{"title", "category"},
	Sorts: map[string]SortKey[models.Dream]{
		"title":    {Text: func(d models.Dream) string { return d.Title }},
		"category": {Text: func(d models.Dream) string { return string(d.Category) }},
	},
	DefaultSort: "title",
	ID:          func(d models.Dream) string { return d.ID },
}

// Milestones split on today: a milestone dated today is still upcoming.
var Milestones = Schema[models.Milestone]{
	Entity:   "milestones",
	Statuses: []string{"upcoming", "past"},
	StatusMatch: map[string]Predicate[models.Milestone]{
		"upcoming": func(m models.Milestone, today time.Time) bool { return !isPast(m.Date, today) },
		"past":     func(m models.Milestone, today time.Time) bool { return isPast(m.Date, today) },
	},
	Categories: categoryNames(models.MilestoneCategories),
	Category:   func(m models.Milestone) string { return string(m.Category) },
	Search:     func(m models.Milestone) []string { return []string{m.Title, m.Description} },
	SortKeys:   []string{"date", "title", "category"},
	Sorts: map[string]SortKey[models.Milestone]{
		"date":     {Date: func(m models.Milestone) string { return m.Date }},
		"title":    {Text: func(m models.Milestone) string { return m.Title }},
		"category": {Text: func(m models.Milestone) string { return string(m.Category) }},
	},
	DefaultSort: "date",
	ID:          func(m models.Milestone) string { return m.ID },
}

var Cinema = Schema[models.Movie]{
	Entity:   "cinema",
	Statuses: []string{"unwatched", "watched"},
	StatusMatch: map[string]Predicate[models.Movie]{
		"unwatched": func(m models.Movie, _ time.Time) bool { return !m.Watched },
		"watched":   func(m models.Movie, _ time.Time) bool { return m.Watched },
	},
	Search:   func(m models.Movie) []string { return []string{m.Title} },
	SortKeys: []string{"added", "title"},
	Sorts: map[string]SortKey[models.Movie]{
		"added": {Number: func(m models.Movie) int64 { return m.AddedAt }},
		"title": {Text: func(m models.Movie) string { return m.Title }},
	},
	DefaultSort:      "added",
	DefaultDirection: Desc,
	Rank:             func(m models.Movie) int { return completedRank(m.Watched) },
	ID:               func(m models.Movie) string { return m.ID },
}

func isPast(date string, today time.Time) bool {
	t, ok := ParseDate(date)
	return ok && t.Before(today)
}

func categoryNames[S ~string](cats []S) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}
