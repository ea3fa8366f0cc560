package viewmodel

import (
	"math/rand"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/models"
)

func samplePlans() []models.Plan {
	return []models.Plan{
		{ID: "a", Title: "Zoo trip", Date: "2024-05-10", Type: models.PlanTrip},
		{ID: "b", Title: "anniversary dinner", Date: "2024-03-01", Type: models.PlanDate, IsCompleted: true,
			Memory: &models.Memory{Rating: 5, Notes: []string{"the best tiramisu"}}},
		{ID: "c", Title: "Bowling", Date: "", Type: models.PlanActivity},
		{ID: "d", Title: "Concert", Date: "2024-03-20", Type: models.PlanActivity, IsCompleted: true},
		{ID: "e", Title: "Beach", Date: "2024-05-02", Type: models.PlanTrip},
		{ID: "f", Title: "Ëclair class", Date: "not a date", Type: models.PlanOther},
	}
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func planIDs(ps []models.Plan) []string { return ids(ps, Plans.ID) }

func TestApply_FilterIsIdempotent(t *testing.T) {
	states := []ViewState{
		{},
		{Status: "upcoming"},
		{Status: "completed", Category: "date"},
		{Status: "withMemories"},
		{Category: "trip", Search: "ZOO"},
		{Search: "tiramisu"},
	}
	for _, vs := range states {
		once := Plans.Filter(samplePlans(), vs)
		twice := Plans.Filter(once, vs)
		assert.Equal(t, planIDs(once), planIDs(twice), "view state %+v", vs)
	}
}

func TestApply_FiltersAndSearch(t *testing.T) {
	got := Plans.Apply(samplePlans(), ViewState{Status: "upcoming"})
	assert.ElementsMatch(t, []string{"a", "c", "e", "f"}, planIDs(got))

	got = Plans.Apply(samplePlans(), ViewState{Category: "trip"})
	assert.Equal(t, []string{"e", "a"}, planIDs(got))

	got = Plans.Apply(samplePlans(), ViewState{Search: "TIRAMISU"})
	assert.Equal(t, []string{"b"}, planIDs(got))

	got = Plans.Apply(samplePlans(), ViewState{Status: "withMemories"})
	assert.Equal(t, []string{"b"}, planIDs(got))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := samplePlans()
	before := planIDs(in)
	_ = Plans.Apply(in, ViewState{Sort: "title", Direction: Desc})
	assert.Equal(t, before, planIDs(in))
}

func TestApply_EmptyInput(t *testing.T) {
	got := Plans.Apply(nil, ViewState{})
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, GroupByMonth(got, func(p models.Plan) string { return p.Date }))
}

func TestSort_IsDeterministicAcrossPermutations(t *testing.T) {
	base := samplePlans()
	// Duplicate keys so that only the id tie-break separates some records.
	base = append(base, models.Plan{ID: "g", Title: "Beach", Date: "2024-05-02", Type: models.PlanTrip})

	for _, vs := range []ViewState{{}, {Sort: "title"}, {Sort: "category", Direction: Desc}, {Sort: "date", Direction: Desc}} {
		want := planIDs(Plans.Apply(base, vs))
		r := rand.New(rand.NewSource(42))
		for i := 0; i < 20; i++ {
			shuffled := append([]models.Plan(nil), base...)
			r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			assert.Equal(t, want, planIDs(Plans.Apply(shuffled, vs)), "view state %+v", vs)
		}
	}
}

func TestSort_CompletionDominates(t *testing.T) {
	for _, key := range []string{"date", "title", "category"} {
		for _, dir := range []Direction{Asc, Desc} {
			got := Plans.Apply(samplePlans(), ViewState{Sort: key, Direction: dir})
			seenCompleted := false
			for _, p := range got {
				if p.IsCompleted {
					seenCompleted = true
					continue
				}
				assert.False(t, seenCompleted, "incomplete plan %s after a completed one (sort=%s dir=%s)", p.ID, key, dir)
			}
		}
	}
}

func TestSort_MissingDatesAreInfinite(t *testing.T) {
	asc := Plans.Apply(samplePlans(), ViewState{Sort: "date", Direction: Asc})
	// Open plans first: dated ascending, then the undated/unparseable ones.
	assert.Equal(t, []string{"e", "a", "c", "f", "b", "d"}, planIDs(asc))

	desc := Plans.Apply(samplePlans(), ViewState{Sort: "date", Direction: Desc})
	assert.Equal(t, []string{"c", "f", "a", "e", "d", "b"}, planIDs(desc))
}

func TestSort_MemoryTiebreak(t *testing.T) {
	plans := []models.Plan{
		{ID: "1", Title: "Same", Date: "2024-01-01", Type: models.PlanDate, IsCompleted: true},
		{ID: "2", Title: "Same", Date: "2024-01-01", Type: models.PlanDate, IsCompleted: true, Memory: &models.Memory{Rating: 4}},
	}
	got := Plans.Apply(plans, ViewState{Sort: "date"})
	assert.Equal(t, []string{"2", "1"}, planIDs(got))
}

func TestSort_TitleIsCollated(t *testing.T) {
	dreams := []models.Dream{
		{ID: "1", Title: "zebra safari", Category: models.DreamTravel},
		{ID: "2", Title: "Éclair tour", Category: models.DreamTravel},
		{ID: "3", Title: "apple orchard", Category: models.DreamHome},
		{ID: "4", Title: "Boat", Category: models.DreamActivities},
	}
	got := Dreams.Apply(dreams, ViewState{Sort: "title"})
	assert.Equal(t, []string{"3", "4", "2", "1"}, ids(got, Dreams.ID))
}

func TestCinema_DefaultsToNewestFirstWithUnwatchedOnTop(t *testing.T) {
	movies := []models.Movie{
		{ID: "old", Title: "Old", AddedAt: 1},
		{ID: "new", Title: "New", AddedAt: 3},
		{ID: "seen", Title: "Seen", AddedAt: 5, Watched: true},
		{ID: "mid", Title: "Mid", AddedAt: 2},
	}
	got := Cinema.Apply(movies, ViewState{})
	assert.Equal(t, []string{"new", "mid", "old", "seen"}, ids(got, Cinema.ID))

	got = Cinema.Apply(movies, ViewState{Status: "watched"})
	assert.Equal(t, []string{"seen"}, ids(got, Cinema.ID))
}

func TestMilestones_UpcomingAndPast(t *testing.T) {
	schema := Milestones
	schema.Now = func() time.Time { return time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC) }
	ms := []models.Milestone{
		{ID: "past", Date: "2024-06-14"},
		{ID: "today", Date: "2024-06-15"},
		{ID: "future", Date: "2025-01-01"},
	}
	assert.Equal(t, []string{"past"}, ids(schema.Apply(ms, ViewState{Status: "past"}), schema.ID))
	assert.Equal(t, []string{"today", "future"}, ids(schema.Apply(ms, ViewState{Status: "upcoming"}), schema.ID))
}

func TestGroupByMonth_Coverage(t *testing.T) {
	sorted := Plans.Apply(samplePlans(), ViewState{Sort: "date"})
	groups := GroupByMonth(sorted, func(p models.Plan) string { return p.Date })

	var flat []string
	labels := []string{}
	for _, g := range groups {
		labels = append(labels, g.Label)
		flat = append(flat, planIDs(g.Items)...)
	}
	assert.Equal(t, planIDs(sorted), flat)
	assert.Equal(t, []string{"May 2024", NoDateGroup, "March 2024"}, labels)
}

func TestGroupByMonth_RepeatsMonthAfterCompleted(t *testing.T) {
	plans := []models.Plan{
		{ID: "a", Title: "Picnic", Date: "2025-06-01", Type: models.PlanDate},
		{ID: "b", Title: "Lake", Date: "2025-07-12", Type: models.PlanTrip},
		{ID: "c", Title: "Museum", Date: "2025-06-20", Type: models.PlanActivity, IsCompleted: true},
	}
	sorted := Plans.Apply(plans, ViewState{Sort: "date"})
	require.Equal(t, []string{"a", "b", "c"}, planIDs(sorted))

	groups := GroupByMonth(sorted, func(p models.Plan) string { return p.Date })
	var flat, labels []string
	for _, g := range groups {
		labels = append(labels, g.Label)
		flat = append(flat, planIDs(g.Items)...)
	}
	assert.Equal(t, planIDs(sorted), flat)
	assert.Equal(t, []string{"June 2025", "July 2025", "June 2025"}, labels)
}

func TestNormalize_UnknownValuesFallBack(t *testing.T) {
	vs := Plans.Normalize(ViewState{Status: "bogus", Sort: "bogus", Direction: "sideways"})
	assert.Equal(t, ViewState{Status: All, Category: All, Sort: "date", Direction: Asc}, vs)

	vs = Cinema.Normalize(ViewState{Category: "drama"})
	assert.Equal(t, All, vs.Category)
	assert.Equal(t, Desc, vs.Direction)
}

func TestQuery_RoundTrip(t *testing.T) {
	vs := ViewState{Status: "completed", Category: "trip", Sort: "title", Direction: Desc, Search: "paris"}
	q, err := url.ParseQuery(vs.Query().Encode())
	require.NoError(t, err)
	assert.Equal(t, vs, FromQuery(q))
	assert.Empty(t, ViewState{}.Query())
}
