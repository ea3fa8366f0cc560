package models

import "lovenest/validate"

type MilestoneCategory string

const (
	MilestoneFirstDate     MilestoneCategory = "first-date"
	MilestoneAnniversary   MilestoneCategory = "anniversary"
	MilestoneSpecialMoment MilestoneCategory = "special-moment"
	MilestoneTrip          MilestoneCategory = "trip"
	MilestoneCelebration   MilestoneCategory = "celebration"
)

var MilestoneCategories = []MilestoneCategory{
	MilestoneFirstDate, MilestoneAnniversary, MilestoneSpecialMoment, MilestoneTrip, MilestoneCelebration,
}

// MilestoneIcons maps a category to the emoji stored in Milestone.Icon.
var MilestoneIcons = map[MilestoneCategory]string{
	MilestoneFirstDate:     "💕",
	MilestoneAnniversary:   "💍",
	MilestoneSpecialMoment: "✨",
	MilestoneTrip:          "🗺️",
	MilestoneCelebration:   "🎉",
}

type Milestone struct {
	ID          string            `json:"id" bson:"_id"`
	Title       string            `json:"title" bson:"title"`
	Date        string            `json:"date" bson:"date"`
	Description string            `json:"description,omitempty" bson:"description,omitempty"`
	Category    MilestoneCategory `json:"category" bson:"category"`
	Photos      []string          `json:"photos" bson:"photos"`
	Icon        string            `json:"icon" bson:"icon"`
}

// DeriveIcon sets Icon from Category, falling back to the special-moment icon.
func (m *Milestone) DeriveIcon() {
	icon, ok := MilestoneIcons[m.Category]
	if !ok {
		icon = MilestoneIcons[MilestoneSpecialMoment]
	}
	m.Icon = icon
}

func (m Milestone) Validate() error {
	e := validate.Errors{}
	validate.Required(e, "title", m.Title)
	validate.Date(e, "date", m.Date, true)
	validate.OneOf(e, "category", m.Category, MilestoneCategories...)
	for _, p := range m.Photos {
		validate.URL(e, "photos", p)
	}
	return e.Err()
}
