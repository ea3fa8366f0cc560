package models

import "lovenest/validate"

// Movie is an entry of the shared watch-list. AddedAt and WatchedAt are
// epoch milliseconds.
type Movie struct {
	ID        string `json:"id" bson:"_id"`
	Title     string `json:"title" bson:"title"`
	Poster    string `json:"poster" bson:"poster"`
	Link      string `json:"link" bson:"link"`
	AddedAt   int64  `json:"addedAt" bson:"addedAt"`
	Watched   bool   `json:"watched,omitempty" bson:"watched,omitempty"`
	WatchedAt *int64 `json:"watchedAt,omitempty" bson:"watchedAt,omitempty"`
}

func (m Movie) Validate() error {
	e := validate.Errors{}
	validate.Required(e, "title", m.Title)
	validate.Required(e, "poster", m.Poster)
	validate.URL(e, "poster", m.Poster)
	validate.Required(e, "link", m.Link)
	validate.URL(e, "link", m.Link)
	return e.Err()
}
