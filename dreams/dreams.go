// Package dreams holds the dream board. Dreams are only created, listed and
// removed.
package dreams

import (
	"lovenest/logging"
	"lovenest/models"
	"lovenest/records"
	"lovenest/store"
	"lovenest/viewmodel"
)

var Entity = records.Entity[models.Dream]{
	Name:     store.Dreams,
	SetID:    func(d *models.Dream, id string) { d.ID = id },
	Validate: models.Dream.Validate,
	View:     viewmodel.Dreams,
}

func NewService(coll store.Collection[models.Dream], notify records.Notifier, log logging.Logger) *records.Service[models.Dream] {
	return records.NewService(Entity, coll, notify, log)
}
