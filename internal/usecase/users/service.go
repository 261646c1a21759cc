package users

import (
	"context"
	"time"

	"ocall/internal/models"
	"ocall/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Repository interface {
	CreateProfile(ctx context.Context, profile *models.Profile) (uuid.UUID, error)
	GetProfile(ctx context.Context, id uuid.UUID) (models.Profile, error)
	ListProfiles(ctx context.Context, profileType models.ProfileType) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error

	GetProducerByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error)
	GetVenueByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error)
	GetPerformersByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Profile, error)
}

// ProfilePatch carries the fields of a partial update. Nil fields are kept.
type ProfilePatch struct {
	Name          *string
	Type          *models.ProfileType
	Location      *models.GeoPoint
	ClearLocation bool
}

type Service struct {
	repo  Repository
	cache *usecase.Cache
}

func NewService(repository Repository, cacheTTL time.Duration) *Service {
	return &Service{repo: repository, cache: usecase.NewCache("profiles", cacheTTL)}
}

func (s *Service) CreateProfile(ctx context.Context, profile models.Profile) (uuid.UUID, error) {
	profile.Name = usecase.PlainText(profile.Name)
	if err := profile.Validate(); err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.CreateProfile(ctx, &profile)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "db error")
	}
	s.cache.Set(id.String(), profile)
	return id, nil
}

func (s *Service) GetProfileByID(ctx context.Context, id uuid.UUID) (models.Profile, error) {
	if v, ok := s.cache.Get(id.String()); ok {
		return v.(models.Profile), nil
	}
	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return models.Profile{}, errors.Wrap(err, "db error")
	}
	s.cache.Set(id.String(), profile)
	return profile, nil
}

func (s *Service) ListProfiles(ctx context.Context, profileType models.ProfileType) ([]models.Profile, error) {
	profiles, err := s.repo.ListProfiles(ctx, profileType)
	if err != nil {
		return nil, errors.Wrap(err, "db error")
	}
	return profiles, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, id)
	if err != nil {
		return models.Profile{}, errors.Wrap(err, "db error")
	}
	if patch.Name != nil {
		profile.Name = usecase.PlainText(*patch.Name)
	}
	if patch.Type != nil {
		profile.Type = *patch.Type
	}
	if patch.ClearLocation {
		profile.SetLocation(nil)
	} else if patch.Location != nil {
		profile.SetLocation(patch.Location)
	}
	if err := profile.Validate(); err != nil {
		return models.Profile{}, err
	}
	if err := s.repo.UpdateProfile(ctx, &profile); err != nil {
		return models.Profile{}, errors.Wrap(err, "db error")
	}
	s.cache.Set(id.String(), profile)
	return profile, nil
}

func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	s.cache.Delete(id.String())
	if err := s.repo.DeleteProfile(ctx, id); err != nil {
		return errors.Wrap(err, "db error")
	}
	return nil
}

func (s *Service) GetProducerByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error) {
	producer, err := s.repo.GetProducerByEventID(ctx, eventID)
	if err != nil {
		return models.Profile{}, errors.Wrap(err, "db error")
	}
	return producer, nil
}

func (s *Service) GetVenueByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error) {
	venue, err := s.repo.GetVenueByEventID(ctx, eventID)
	if err != nil {
		return models.Profile{}, errors.Wrap(err, "db error")
	}
	return venue, nil
}

func (s *Service) GetPerformersByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Profile, error) {
	performers, err := s.repo.GetPerformersByEventID(ctx, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "db error")
	}
	return performers, nil
}
