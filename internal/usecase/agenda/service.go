package agenda

import (
	"context"
	"strings"
	"time"

	"ocall/internal/models"
	"ocall/internal/store"
	"ocall/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Repository interface {
	CreateEvent(ctx context.Context, event *models.Event) (uuid.UUID, error)
	GetEvent(ctx context.Context, id uuid.UUID) (models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	GetEventsByProducer(ctx context.Context, producerID uuid.UUID) ([]models.Event, error)
	ListEventsBetween(ctx context.Context, start, end time.Time) ([]models.Event, error)

	CreateApplication(ctx context.Context, application *models.Application) (uuid.UUID, error)
	GetApplication(ctx context.Context, id uuid.UUID) (models.Application, error)
	UpdateApplication(ctx context.Context, application *models.Application) error
	DeleteApplication(ctx context.Context, id uuid.UUID) error
	GetApplicationsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Application, error)
	GetApplicationsByPerformer(ctx context.Context, performerID uuid.UUID) ([]models.Application, error)

	CreateTag(ctx context.Context, name string) (int64, error)
	DeleteTag(ctx context.Context, name string) error
	ListTags(ctx context.Context) ([]models.Tag, error)

	// GetProfile resolves venue locations for the distance search.
	GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error)
}

type EventPatch struct {
	Name          *string
	Description   *string
	Tags          []string
	ProducerID    *uuid.UUID
	VenueID       *uuid.UUID
	ClearVenue    bool
	GoogleForm    *string
	Location      *models.GeoPoint
	ClearLocation bool
	Status        *models.EventStatus
	Time          *time.Time
	ApplyByTime   *time.Time
	PayStructure  *string
}

type ApplicationPatch struct {
	Name             *string
	Status           *models.ApplicationStatus
	GoogleResponseID *string
}

type Service struct {
	repo   Repository
	events *usecase.Cache
}

func NewService(repository Repository, cacheTTL time.Duration) *Service {
	return &Service{repo: repository, events: usecase.NewCache("events", cacheTTL)}
}

/*
   ---------------------------
   Events
   ---------------------------
*/

func (s *Service) CreateEvent(ctx context.Context, event models.Event) (uuid.UUID, error) {
	cleanEvent(&event)
	if err := event.Validate(); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.CreateEvent(ctx, &event)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "db error")
	}
	return id, nil
}

func (s *Service) GetEvent(ctx context.Context, id uuid.UUID) (models.Event, error) {
	if v, ok := s.events.Get(id.String()); ok {
		return v.(models.Event), nil
	}
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return models.Event{}, errors.Wrap(err, "db error")
	}
	s.events.Set(id.String(), event)
	return event, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id uuid.UUID, patch EventPatch) (models.Event, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return models.Event{}, errors.Wrap(err, "db error")
	}
	patch.apply(&event)
	cleanEvent(&event)
	if err := event.Validate(); err != nil {
		return models.Event{}, err
	}
	s.events.Delete(id.String())
	if err := s.repo.UpdateEvent(ctx, &event); err != nil {
		return models.Event{}, errors.Wrap(err, "db error")
	}
	// A read racing the write may have cached the old row.
	s.events.Delete(id.String())
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	s.events.Delete(id.String())
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return errors.Wrap(err, "db error")
	}
	return nil
}

func (s *Service) GetEventsByProducer(ctx context.Context, producerID uuid.UUID) ([]models.Event, error) {
	events, err := s.repo.GetEventsByProducer(ctx, producerID)
	if err != nil {
		return nil, errors.Wrap(err, "db error")
	}
	return events, nil
}

// GetAllEvents returns the events in [start, end] whose location lies within
// distanceKM of center. An event without its own location is placed at its
// venue; events with neither are skipped.
func (s *Service) GetAllEvents(
	ctx context.Context, start, end time.Time, center models.GeoPoint, distanceKM float64,
) ([]models.Event, error) {
	if start.After(end) {
		return nil, &models.ValidationError{Field: "start_time", Message: "start time must not be after end time"}
	}
	if distanceKM < 0 {
		return nil, &models.ValidationError{Field: "distance_km", Message: "distance must not be negative"}
	}
	events, err := s.repo.ListEventsBetween(ctx, start, end)
	if err != nil {
		return nil, errors.Wrap(err, "db error")
	}

	venues := map[uuid.UUID]*models.GeoPoint{}
	matched := make([]models.Event, 0, len(events))
	for _, e := range events {
		loc := e.Location()
		if loc.IsZero() && e.VenueID != nil {
			loc, err = s.venueLocation(ctx, *e.VenueID, venues)
			if err != nil {
				return nil, err
			}
		}
		if loc.IsZero() {
			continue
		}
		if models.DistanceKM(center, *loc) <= distanceKM {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (s *Service) venueLocation(ctx context.Context, id uuid.UUID, seen map[uuid.UUID]*models.GeoPoint) (*models.GeoPoint, error) {
	if loc, ok := seen[id]; ok {
		return loc, nil
	}
	venue, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			seen[id] = nil
			return nil, nil
		}
		return nil, errors.Wrap(err, "db error")
	}
	loc := venue.Location()
	seen[id] = loc
	return loc, nil
}

func cleanEvent(e *models.Event) {
	e.Name = usecase.PlainText(e.Name)
	e.Description = usecase.RichText(e.Description)
	e.PayStructure = usecase.PlainText(e.PayStructure)
	e.GoogleForm = strings.TrimSpace(e.GoogleForm)
	for i := range e.Tags {
		e.Tags[i].Name = strings.TrimSpace(e.Tags[i].Name)
	}
}

func (p EventPatch) apply(e *models.Event) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Tags != nil {
		e.Tags = make([]models.Tag, 0, len(p.Tags))
		for _, name := range p.Tags {
			e.Tags = append(e.Tags, models.Tag{Name: name})
		}
	}
	if p.ProducerID != nil {
		e.ProducerID = *p.ProducerID
	}
	if p.ClearVenue {
		e.VenueID = nil
	} else if p.VenueID != nil {
		venue := *p.VenueID
		e.VenueID = &venue
	}
	if p.GoogleForm != nil {
		e.GoogleForm = *p.GoogleForm
	}
	if p.ClearLocation {
		e.SetLocation(nil)
	} else if p.Location != nil {
		e.SetLocation(p.Location)
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.ApplyByTime != nil {
		applyBy := *p.ApplyByTime
		e.ApplyByTime = &applyBy
	}
	if p.PayStructure != nil {
		e.PayStructure = *p.PayStructure
	}
}

/*
   ---------------------------
   Applications
   ---------------------------
*/

func (s *Service) CreateApplication(ctx context.Context, application models.Application) (uuid.UUID, error) {
	application.Name = usecase.PlainText(application.Name)
	if err := application.Validate(); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.CreateApplication(ctx, &application)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "db error")
	}
	return id, nil
}

func (s *Service) GetApplication(ctx context.Context, id uuid.UUID) (models.Application, error) {
	application, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return models.Application{}, errors.Wrap(err, "db error")
	}
	return application, nil
}

func (s *Service) UpdateApplication(ctx context.Context, id uuid.UUID, patch ApplicationPatch) (models.Application, error) {
	application, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return models.Application{}, errors.Wrap(err, "db error")
	}
	if patch.Name != nil {
		application.Name = usecase.PlainText(*patch.Name)
	}
	if patch.Status != nil {
		application.Status = *patch.Status
	}
	if patch.GoogleResponseID != nil {
		application.GoogleResponseID = strings.TrimSpace(*patch.GoogleResponseID)
	}
	if err := application.Validate(); err != nil {
		return models.Application{}, err
	}
	if err := s.repo.UpdateApplication(ctx, &application); err != nil {
		return models.Application{}, errors.Wrap(err, "db error")
	}
	return application, nil
}

func (s *Service) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteApplication(ctx, id); err != nil {
		return errors.Wrap(err, "db error")
	}
	return nil
}

func (s *Service) GetApplicationsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Application, error) {
	applications, err := s.repo.GetApplicationsByEvent(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "db error")
	}
	return applications, nil
}

func (s *Service) GetApplicationsByPerformer(ctx context.Context, performerID uuid.UUID) ([]models.Application, error) {
	applications, err := s.repo.GetApplicationsByPerformer(ctx, performerID)
	if err != nil {
		return nil, errors.Wrap(err, "db error")
	}
	return applications, nil
}

/*
   ---------------------------
   Tags
   ---------------------------
*/

func (s *Service) CreateTag(ctx context.Context, name string) (int64, error) {
	name = usecase.PlainText(name)
	if name == "" {
		return 0, &models.ValidationError{Field: "name", Message: "tag name required"}
	}
	id, err := s.repo.CreateTag(ctx, name)
	if err != nil {
		return 0, errors.Wrap(err, "db error")
	}
	return id, nil
}

// DeleteTag also drops every cached event, since any of them may carry it.
func (s *Service) DeleteTag(ctx context.Context, name string) error {
	if err := s.repo.DeleteTag(ctx, strings.TrimSpace(name)); err != nil {
		return errors.Wrap(err, "db error")
	}
	s.events.Flush()
	return nil
}

func (s *Service) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "db error")
	}
	return tags, nil
}
