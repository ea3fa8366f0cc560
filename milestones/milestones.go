// Package milestones holds the relationship timeline. The icon of a
// milestone always follows its category.
package milestones

import (
	"lovenest/logging"
	"lovenest/models"
	"lovenest/records"
	"lovenest/store"
	"lovenest/viewmodel"
)

var Entity = records.Entity[models.Milestone]{
	Name:  store.Milestones,
	SetID: func(m *models.Milestone, id string) { m.ID = id },
	Prepare: func(m *models.Milestone) {
		if m.Photos == nil {
			m.Photos = []string{}
		}
	},
	Derive:   func(m *models.Milestone) { m.DeriveIcon() },
	Derived:  []string{"icon"},
	Validate: models.Milestone.Validate,
	Mutable:  []string{"title", "date", "description", "category", "photos"},
	View:     viewmodel.Milestones,
}

func NewService(coll store.Collection[models.Milestone], notify records.Notifier, log logging.Logger) *records.Service[models.Milestone] {
	return records.NewService(Entity, coll, notify, log)
}
