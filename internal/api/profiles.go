package api

import (
	"context"
	"time"

	"ocall/internal/models"
	"ocall/internal/usecase/users"

	"github.com/danielgtaylor/huma/v2"
)

type Profile struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Location  *models.GeoPoint `json:"location,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func profileFrom(p models.Profile) Profile {
	return Profile{
		ID:        p.ID.String(),
		Name:      p.Name,
		Type:      p.Type.String(),
		Location:  p.Location(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func profilesFrom(ps []models.Profile) []Profile {
	out := make([]Profile, 0, len(ps))
	for _, p := range ps {
		out = append(out, profileFrom(p))
	}
	return out
}

type ProfileInput struct {
	Name     string           `json:"name"`
	Type     string           `json:"type" doc:"producer, performer or venue"`
	Location *models.GeoPoint `json:"location,omitempty"`
}

type ProfilePatchInput struct {
	Name          *string          `json:"name,omitempty"`
	Type          *string          `json:"type,omitempty"`
	Location      *models.GeoPoint `json:"location,omitempty"`
	ClearLocation bool             `json:"clear_location,omitempty"`
}

type profileOutput struct {
	Body Profile
}

type profilesOutput struct {
	Body []Profile
}

func parseProfileType(raw string) (models.ProfileType, error) {
	t, ok := models.ParseProfileType(raw)
	if !ok {
		return "", &models.ValidationError{Field: "type", Message: "unknown profile type " + raw}
	}
	return t, nil
}

func registerProfiles(api huma.API, svc ProfileService) {
	tag := tagged("Profiles")

	huma.Post(api, "/profiles", func(ctx context.Context, in *struct {
		Body ProfileInput
	}) (*idOutput, error) {
		t, err := parseProfileType(in.Body.Type)
		if err != nil {
			return nil, HandleErr(err)
		}
		profile := models.Profile{Name: in.Body.Name, Type: t}
		profile.SetLocation(in.Body.Location)
		id, err := svc.CreateProfile(ctx, profile)
		if err != nil {
			return nil, HandleErr(err)
		}
		return newIDOutput(id.String()), nil
	}, created, tag)

	huma.Get(api, "/profiles", func(ctx context.Context, in *struct {
		Type string `query:"type" doc:"Only list profiles of this type"`
	}) (*profilesOutput, error) {
		var t models.ProfileType
		if in.Type != "" {
			var err error
			if t, err = parseProfileType(in.Type); err != nil {
				return nil, HandleErr(err)
			}
		}
		profiles, err := svc.ListProfiles(ctx, t)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &profilesOutput{Body: profilesFrom(profiles)}, nil
	}, tag)

	huma.Get(api, "/profiles/{id}", func(ctx context.Context, in *IDParam) (*profileOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		profile, err := svc.GetProfileByID(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &profileOutput{Body: profileFrom(profile)}, nil
	}, tag)

	huma.Patch(api, "/profiles/{id}", func(ctx context.Context, in *struct {
		IDParam
		Body ProfilePatchInput
	}) (*profileOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		patch := users.ProfilePatch{
			Name:          in.Body.Name,
			Location:      in.Body.Location,
			ClearLocation: in.Body.ClearLocation,
		}
		if in.Body.Type != nil {
			t, err := parseProfileType(*in.Body.Type)
			if err != nil {
				return nil, HandleErr(err)
			}
			patch.Type = &t
		}
		profile, err := svc.UpdateProfile(ctx, id, patch)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &profileOutput{Body: profileFrom(profile)}, nil
	}, tag)

	huma.Delete(api, "/profiles/{id}", func(ctx context.Context, in *IDParam) (*struct{}, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteProfile(ctx, id); err != nil {
			return nil, HandleErr(err)
		}
		return nil, nil
	}, noContent, tag)

	huma.Get(api, "/events/{id}/producer", func(ctx context.Context, in *IDParam) (*profileOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		producer, err := svc.GetProducerByEventID(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &profileOutput{Body: profileFrom(producer)}, nil
	}, tag)

	huma.Get(api, "/events/{id}/venue", func(ctx context.Context, in *IDParam) (*profileOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		venue, err := svc.GetVenueByEventID(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &profileOutput{Body: profileFrom(venue)}, nil
	}, tag)

	huma.Get(api, "/events/{id}/performers", func(ctx context.Context, in *IDParam) (*profilesOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		performers, err := svc.GetPerformersByEventID(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &profilesOutput{Body: profilesFrom(performers)}, nil
	}, tag)
}
