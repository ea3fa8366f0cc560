package models

import "lovenest/validate"

type DreamCategory string

const (
	DreamTravel     DreamCategory = "travel"
	DreamHome       DreamCategory = "home"
	DreamPets       DreamCategory = "pets"
	DreamActivities DreamCategory = "activities"
	DreamOther      DreamCategory = "other"
)

var DreamCategories = []DreamCategory{DreamTravel, DreamHome, DreamPets, DreamActivities, DreamOther}

// Dream is a free-form wish. Dreams are created, listed and deleted, never edited.
type Dream struct {
	ID          string        `json:"id" bson:"_id"`
	Title       string        `json:"title" bson:"title"`
	Category    DreamCategory `json:"category" bson:"category"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	ImageURL    string        `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

func (d Dream) Validate() error {
	e := validate.Errors{}
	validate.Required(e, "title", d.Title)
	validate.OneOf(e, "category", d.Category, DreamCategories...)
	validate.URL(e, "imageUrl", d.ImageURL)
	return e.Err()
}
