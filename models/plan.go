package models

import (
	"time"

	"lovenest/validate"
)

type PlanType string

const (
	PlanDate        PlanType = "date"
	PlanTrip        PlanType = "trip"
	PlanActivity    PlanType = "activity"
	PlanCelebration PlanType = "celebration"
	PlanOther       PlanType = "other"
)

var PlanTypes = []PlanType{PlanDate, PlanTrip, PlanActivity, PlanCelebration, PlanOther}

// Plan is something the couple intends to do together.
type Plan struct {
	ID          string   `json:"id" bson:"_id"`
	Title       string   `json:"title" bson:"title"`
	Date        string   `json:"date" bson:"date"` // YYYY-MM-DD, may be empty
	Type        PlanType `json:"type" bson:"type"`
	Website     string   `json:"website,omitempty" bson:"website,omitempty"`
	MapsLink    string   `json:"mapsLink,omitempty" bson:"mapsLink,omitempty"`
	IsCompleted bool     `json:"isCompleted" bson:"isCompleted"`
	// Memory may be attached to an incomplete plan; nothing prevents it.
	Memory *Memory `json:"memory,omitempty" bson:"memory,omitempty"`
}

// Memory is the keepsake attached to a plan after it happened.
type Memory struct {
	Photos    []string  `json:"photos" bson:"photos"`
	Rating    int       `json:"rating" bson:"rating"`
	Notes     []string  `json:"notes" bson:"notes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (p Plan) Validate() error {
	e := validate.Errors{}
	validate.Required(e, "title", p.Title)
	validate.Date(e, "date", p.Date, true)
	validate.OneOf(e, "type", p.Type, PlanTypes...)
	validate.URL(e, "website", p.Website)
	validate.URL(e, "mapsLink", p.MapsLink)
	if p.Memory != nil {
		p.Memory.check(e)
	}
	return e.Err()
}

func (m Memory) Validate() error {
	e := validate.Errors{}
	m.check(e)
	return e.Err()
}

func (m Memory) check(e validate.Errors) {
	validate.Range(e, "memory.rating", m.Rating, 1, 5)
	for _, p := range m.Photos {
		validate.URL(e, "memory.photos", p)
	}
}
