package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovenest/validate"
)

func TestPlan_Validate(t *testing.T) {
	ok := Plan{Title: "Picnic", Date: "2024-06-01", Type: PlanDate, MapsLink: "https://maps.example.com/p"}
	require.NoError(t, ok.Validate())

	bad := Plan{Title: " ", Date: "June 1st", Type: "party", Memory: &Memory{Rating: 9}}
	err := bad.Validate()
	require.True(t, errors.Is(err, validate.ErrValidation))
	fields := validate.Fields(err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "date")
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "memory.rating")

	undated := Plan{Title: "Picnic", Type: PlanDate}
	assert.Equal(t, "is required", validate.Fields(undated.Validate())["date"])
}

func TestBucketListItem_Validate(t *testing.T) {
	require.NoError(t, BucketListItem{Title: "Skydive", Category: BucketAdventure}.Validate())

	err := BucketListItem{Title: "Skydive", Category: BucketTravel, TargetDate: "soon",
		Links: &BucketLinks{Flights: "nope"}}.Validate()
	fields := validate.Fields(err)
	assert.Equal(t, "must be a date like 2006-01-02", fields["targetDate"])
	assert.Contains(t, fields, "links.flights")
}

func TestMilestone_DeriveIcon(t *testing.T) {
	m := Milestone{Category: MilestoneAnniversary}
	m.DeriveIcon()
	assert.Equal(t, "💍", m.Icon)

	m.Category = "mystery"
	m.DeriveIcon()
	assert.Equal(t, MilestoneIcons[MilestoneSpecialMoment], m.Icon)
}

func TestMovie_And_Dream_Validate(t *testing.T) {
	require.NoError(t, Movie{Title: "Up", Poster: "https://img.example.com/up.jpg", Link: "https://example.com/up"}.Validate())
	assert.Contains(t, validate.Fields(Movie{Title: "Up"}.Validate()), "poster")

	require.NoError(t, Dream{Title: "Puppy", Category: DreamPets}.Validate())
	assert.Contains(t, validate.Fields(Dream{Title: "Puppy", Category: "cats"}.Validate()), "category")
}
