package models

import "lovenest/validate"

type BucketCategory string

const (
	BucketAdventure BucketCategory = "adventure"
	BucketTravel    BucketCategory = "travel"
	BucketFood      BucketCategory = "food"
	BucketMilestone BucketCategory = "milestone"
	BucketOther     BucketCategory = "other"
)

var BucketCategories = []BucketCategory{BucketAdventure, BucketTravel, BucketFood, BucketMilestone, BucketOther}

type BucketListItem struct {
	ID          string         `json:"id" bson:"_id"`
	Title       string         `json:"title" bson:"title"`
	Category    BucketCategory `json:"category" bson:"category"`
	TargetDate  string         `json:"targetDate,omitempty" bson:"targetDate,omitempty"`
	IsCompleted bool           `json:"isCompleted" bson:"isCompleted"`
	Links       *BucketLinks   `json:"links,omitempty" bson:"links,omitempty"`
	Notes       string         `json:"notes,omitempty" bson:"notes,omitempty"`
}

// BucketLinks are the optional booking/research links of a bucket list item.
type BucketLinks struct {
	Flights     string `json:"flights,omitempty" bson:"flights,omitempty"`
	Airbnb      string `json:"airbnb,omitempty" bson:"airbnb,omitempty"`
	Maps        string `json:"maps,omitempty" bson:"maps,omitempty"`
	Tripadvisor string `json:"tripadvisor,omitempty" bson:"tripadvisor,omitempty"`
	Website     string `json:"website,omitempty" bson:"website,omitempty"`
}

func (b BucketListItem) Validate() error {
	e := validate.Errors{}
	validate.Required(e, "title", b.Title)
	validate.OneOf(e, "category", b.Category, BucketCategories...)
	validate.Date(e, "targetDate", b.TargetDate, false)
	if l := b.Links; l != nil {
		validate.URL(e, "links.flights", l.Flights)
		validate.URL(e, "links.airbnb", l.Airbnb)
		validate.URL(e, "links.maps", l.Maps)
		validate.URL(e, "links.tripadvisor", l.Tripadvisor)
		validate.URL(e, "links.website", l.Website)
	}
	return e.Err()
}
