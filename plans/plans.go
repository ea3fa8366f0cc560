// Package plans holds the plan entity: CRUD plus completion toggling and
// the memory attached once a plan has happened.
package plans

import (
	"context"
	"time"

	"lovenest/logging"
	"lovenest/models"
	"lovenest/records"
	"lovenest/store"
	"lovenest/viewmodel"
)

var Entity = records.Entity[models.Plan]{
	Name:  store.Plans,
	SetID: func(p *models.Plan, id string) { p.ID = id },
	Prepare: func(p *models.Plan) {
		p.IsCompleted = false
		p.Memory = nil
	},
	Validate: models.Plan.Validate,
	Mutable:  []string{"title", "date", "type", "website", "mapsLink"},
	View:     viewmodel.Plans,
}

type Service struct {
	*records.Service[models.Plan]
	log logging.Logger
	now func() time.Time
}

func NewService(coll store.Collection[models.Plan], notify records.Notifier, log logging.Logger) *Service {
	return &Service{
		Service: records.NewService(Entity, coll, notify, log),
		log:     log.With("collection", store.Plans),
		now:     time.Now,
	}
}

// Toggle sets the completion flag.
func (s *Service) Toggle(ctx context.Context, id string, done bool) error {
	return s.Set(ctx, id, store.Fields{"isCompleted": done})
}

// AddMemory replaces the plan's memory wholesale. Incomplete plans accept a
// memory too; that case is only logged.
func (s *Service) AddMemory(ctx context.Context, id string, m models.Memory) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now().UTC()
	}
	if m.Photos == nil {
		m.Photos = []string{}
	}
	if m.Notes == nil {
		m.Notes = []string{}
	}
	if err := m.Validate(); err != nil {
		return err
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsCompleted {
		s.log.Warn(ctx, "memory added to a plan that is not completed", "id", id)
	}
	return s.Set(ctx, id, store.Fields{"memory": m})
}

// Grouped returns the plans seen through vs, bucketed by month.
func (s *Service) Grouped(ctx context.Context, vs viewmodel.ViewState) ([]viewmodel.Group[models.Plan], error) {
	items, err := s.Query(ctx, vs)
	if err != nil {
		return nil, err
	}
	return viewmodel.GroupByMonth(items, func(p models.Plan) string { return p.Date }), nil
}
