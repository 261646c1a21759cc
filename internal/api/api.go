// Package api registers the OCall JSON API on a huma API.
package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"ocall/internal/models"
	"ocall/internal/store"
	"ocall/internal/usecase/agenda"
	"ocall/internal/usecase/users"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const Prefix = "/api/v1"

type ProfileService interface {
	CreateProfile(ctx context.Context, profile models.Profile) (uuid.UUID, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (models.Profile, error)
	ListProfiles(ctx context.Context, profileType models.ProfileType) ([]models.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch users.ProfilePatch) (models.Profile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	GetProducerByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error)
	GetVenueByEventID(ctx context.Context, eventID uuid.UUID) (models.Profile, error)
	GetPerformersByEventID(ctx context.Context, eventID uuid.UUID) ([]models.Profile, error)
}

type AgendaService interface {
	CreateEvent(ctx context.Context, event models.Event) (uuid.UUID, error)
	GetEvent(ctx context.Context, id uuid.UUID) (models.Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, patch agenda.EventPatch) (models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	GetEventsByProducer(ctx context.Context, producerID uuid.UUID) ([]models.Event, error)
	GetAllEvents(ctx context.Context, start, end time.Time, center models.GeoPoint, distanceKM float64) ([]models.Event, error)

	CreateApplication(ctx context.Context, application models.Application) (uuid.UUID, error)
	GetApplication(ctx context.Context, id uuid.UUID) (models.Application, error)
	UpdateApplication(ctx context.Context, id uuid.UUID, patch agenda.ApplicationPatch) (models.Application, error)
	DeleteApplication(ctx context.Context, id uuid.UUID) error
	GetApplicationsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Application, error)
	GetApplicationsByPerformer(ctx context.Context, performerID uuid.UUID) ([]models.Application, error)

	CreateTag(ctx context.Context, name string) (int64, error)
	DeleteTag(ctx context.Context, name string) error
	ListTags(ctx context.Context) ([]models.Tag, error)
}

// Register mounts every OCall operation under Prefix.
func Register(api huma.API, profiles ProfileService, events AgendaService) {
	group := huma.NewGroup(api, Prefix)
	registerProfiles(group, profiles)
	registerEvents(group, events, profiles)
	registerApplications(group, events)
	registerTags(group, events)
}

/*
   ---------------------------
   Shared inputs and outputs
   ---------------------------
*/

type IDParam struct {
	ID string `path:"id" doc:"Entity UUID"`
}

type idOutput struct {
	Body struct {
		ID string `json:"id"`
	}
}

func newIDOutput(id string) *idOutput {
	out := &idOutput{}
	out.Body.ID = id
	return out
}

func created(op *huma.Operation) {
	op.DefaultStatus = http.StatusCreated
}

func noContent(op *huma.Operation) {
	op.DefaultStatus = http.StatusNoContent
}

func tagged(tag string) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		op.Tags = append(op.Tags, tag)
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, huma.Error400BadRequest("invalid id", errors.Wrap(err, "unable to parse id"))
	}
	return id, nil
}

func parseOptionalID(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, &models.ValidationError{Field: field, Message: "invalid id"}
	}
	return &id, nil
}

// HandleErr turns a service error into the matching huma status error.
// Unexpected errors are logged and hidden from the client.
func HandleErr(err error) error {
	var ve *models.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return huma.Error404NotFound("not found")
	case errors.As(err, &ve):
		return huma.Error400BadRequest(ve.Error())
	case errors.Is(err, store.ErrDuplicate):
		return huma.Error409Conflict("already exists")
	case errors.Is(err, store.ErrInUse):
		return huma.Error409Conflict("still in use")
	}
	var se huma.StatusError
	if errors.As(err, &se) {
		return err
	}
	log.Printf("api error: err=%v", err)
	return huma.Error500InternalServerError("internal error")
}
