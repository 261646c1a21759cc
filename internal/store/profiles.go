package store

import (
	"context"

	"ocall/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) (uuid.UUID, error) {
	p.Touch(s.now())
	if _, err := s.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return uuid.Nil, MapDBError(err)
	}
	return p.ID, nil
}

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	return getProfile(ctx, s.db, id)
}

func getProfile(ctx context.Context, db bun.IDB, id uuid.UUID) (models.Profile, error) {
	var p models.Profile
	if err := db.NewSelect().Model(&p).Where("p.id = ?", id).Scan(ctx); err != nil {
		return models.Profile{}, MapDBError(err)
	}
	return p, nil
}

// ListProfiles returns live profiles ordered by name. An empty type lists all.
func (s *Store) ListProfiles(ctx context.Context, profileType models.ProfileType) ([]models.Profile, error) {
	profiles := []models.Profile{}
	q := s.db.NewSelect().Model(&profiles).OrderExpr("p.name ASC")
	if profileType != "" {
		q = q.Where("p.type = ?", profileType)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	return profiles, nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *models.Profile) error {
	p.Touch(s.now())
	res, err := s.db.NewUpdate().Model(p).ExcludeColumn("created_at").WherePK().Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	return affected(res)
}

func (s *Store) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*models.Profile)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	return affected(res)
}

// GetProducerByEventID returns the producer profile of a live event.
func (s *Store) GetProducerByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error) {
	event, err := getEvent(ctx, s.db, eventID)
	if err != nil {
		return models.Profile{}, err
	}
	return getProfile(ctx, s.db, event.ProducerID)
}

// GetVenueByEventID returns the venue profile of a live event, or
// ErrNotFound when the event has no venue.
func (s *Store) GetVenueByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error) {
	event, err := getEvent(ctx, s.db, eventID)
	if err != nil {
		return models.Profile{}, err
	}
	if event.VenueID == nil {
		return models.Profile{}, ErrNotFound
	}
	return getProfile(ctx, s.db, *event.VenueID)
}

// GetPerformersByEventID returns every performer with a live application
// to the event.
func (s *Store) GetPerformersByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Profile, error) {
	if _, err := getEvent(ctx, s.db, eventID); err != nil {
		return nil, err
	}
	applicants := s.db.NewSelect().
		Model((*models.Application)(nil)).
		Column("a.performer_id").
		Where("a.event_id = ?", eventID)

	profiles := []models.Profile{}
	if err := s.db.NewSelect().
		Model(&profiles).
		Where("p.id IN (?)", applicants).
		OrderExpr("p.name ASC").
		Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	return profiles, nil
}
