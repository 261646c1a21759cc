package api

import (
	"context"
	"strconv"
	"time"

	"ocall/internal/models"
	"ocall/internal/usecase/agenda"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
)

type Event struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Tags         []string         `json:"tags"`
	ProducerID   string           `json:"producer_id"`
	VenueID      *string          `json:"venue_id,omitempty"`
	GoogleForm   string           `json:"google_form,omitempty"`
	Location     *models.GeoPoint `json:"location,omitempty"`
	Status       string           `json:"status"`
	Time         time.Time        `json:"time"`
	ApplyByTime  *time.Time       `json:"apply_by_time,omitempty"`
	PayStructure string           `json:"pay_structure,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func eventFrom(e models.Event) Event {
	out := Event{
		ID:           e.ID.String(),
		Name:         e.Name,
		Description:  e.Description,
		Tags:         e.TagNames(),
		ProducerID:   e.ProducerID.String(),
		GoogleForm:   e.GoogleForm,
		Location:     e.Location(),
		Status:       e.Status.String(),
		Time:         e.Time,
		ApplyByTime:  e.ApplyByTime,
		PayStructure: e.PayStructure,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.VenueID != nil {
		venue := e.VenueID.String()
		out.VenueID = &venue
	}
	return out
}

func eventsFrom(es []models.Event) []Event {
	out := make([]Event, 0, len(es))
	for _, e := range es {
		out = append(out, eventFrom(e))
	}
	return out
}

type EventInput struct {
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Tags         []string         `json:"tags" doc:"Names of existing tags"`
	ProducerID   string           `json:"producer_id"`
	VenueID      *string          `json:"venue_id,omitempty"`
	GoogleForm   string           `json:"google_form,omitempty"`
	Location     *models.GeoPoint `json:"location,omitempty"`
	Status       string           `json:"status,omitempty"`
	Time         time.Time        `json:"time"`
	ApplyByTime  *time.Time       `json:"apply_by_time,omitempty"`
	PayStructure string           `json:"pay_structure,omitempty"`
}

func (in EventInput) toModel() (models.Event, error) {
	e := models.Event{
		Name:         in.Name,
		Description:  in.Description,
		GoogleForm:   in.GoogleForm,
		Time:         in.Time,
		ApplyByTime:  in.ApplyByTime,
		PayStructure: in.PayStructure,
	}
	for _, name := range in.Tags {
		e.Tags = append(e.Tags, models.Tag{Name: name})
	}
	producer, err := uuid.Parse(in.ProducerID)
	if err != nil {
		return e, &models.ValidationError{Field: "producer_id", Message: "invalid id"}
	}
	e.ProducerID = producer
	if e.VenueID, err = parseOptionalID("venue_id", in.VenueID); err != nil {
		return e, err
	}
	e.SetLocation(in.Location)
	if in.Status != "" {
		status, ok := models.ParseEventStatus(in.Status)
		if !ok {
			return e, &models.ValidationError{Field: "status", Message: "unknown event status " + in.Status}
		}
		e.Status = status
	}
	return e, nil
}

type EventPatchInput struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	ProducerID    *string          `json:"producer_id,omitempty"`
	VenueID       *string          `json:"venue_id,omitempty"`
	ClearVenue    bool             `json:"clear_venue,omitempty"`
	GoogleForm    *string          `json:"google_form,omitempty"`
	Location      *models.GeoPoint `json:"location,omitempty"`
	ClearLocation bool             `json:"clear_location,omitempty"`
	Status        *string          `json:"status,omitempty"`
	Time          *time.Time       `json:"time,omitempty"`
	ApplyByTime   *time.Time       `json:"apply_by_time,omitempty"`
	PayStructure  *string          `json:"pay_structure,omitempty"`
}

func (in EventPatchInput) toPatch() (agenda.EventPatch, error) {
	patch := agenda.EventPatch{
		Name:          in.Name,
		Description:   in.Description,
		Tags:          in.Tags,
		ClearVenue:    in.ClearVenue,
		GoogleForm:    in.GoogleForm,
		Location:      in.Location,
		ClearLocation: in.ClearLocation,
		Time:          in.Time,
		ApplyByTime:   in.ApplyByTime,
		PayStructure:  in.PayStructure,
	}
	var err error
	if patch.ProducerID, err = parseOptionalID("producer_id", in.ProducerID); err != nil {
		return patch, err
	}
	if patch.VenueID, err = parseOptionalID("venue_id", in.VenueID); err != nil {
		return patch, err
	}
	if in.Status != nil {
		status, ok := models.ParseEventStatus(*in.Status)
		if !ok {
			return patch, &models.ValidationError{Field: "status", Message: "unknown event status " + *in.Status}
		}
		patch.Status = &status
	}
	return patch, nil
}

type eventOutput struct {
	Body Event
}

type eventsOutput struct {
	Body []Event
}

type eventSearchInput struct {
	StartTime  string  `query:"start_time" required:"true" doc:"Start of the range (RFC3339)"`
	EndTime    string  `query:"end_time" required:"true" doc:"End of the range (RFC3339)"`
	Lat        float64 `query:"lat" required:"true" doc:"Latitude of the search point"`
	Lon        float64 `query:"lon" required:"true" doc:"Longitude of the search point"`
	DistanceKM float64 `query:"distance_km" required:"true" doc:"Distance from the search point in kilometers"`
}

func parseQueryTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: field, Message: "expected an RFC3339 timestamp"}
	}
	return t, nil
}

func registerEvents(api huma.API, svc AgendaService, profiles ProfileService) {
	tag := tagged("Events")

	huma.Post(api, "/events", func(ctx context.Context, in *struct {
		Body EventInput
	}) (*idOutput, error) {
		event, err := in.Body.toModel()
		if err != nil {
			return nil, HandleErr(err)
		}
		id, err := svc.CreateEvent(ctx, event)
		if err != nil {
			return nil, HandleErr(err)
		}
		return newIDOutput(id.String()), nil
	}, created, tag)

	huma.Get(api, "/events", func(ctx context.Context, in *eventSearchInput) (*eventsOutput, error) {
		start, err := parseQueryTime("start_time", in.StartTime)
		if err != nil {
			return nil, HandleErr(err)
		}
		end, err := parseQueryTime("end_time", in.EndTime)
		if err != nil {
			return nil, HandleErr(err)
		}
		center := models.GeoPoint{Lat: in.Lat, Lng: in.Lon}
		events, err := svc.GetAllEvents(ctx, start, end, center, in.DistanceKM)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &eventsOutput{Body: eventsFrom(events)}, nil
	}, tag)

	huma.Get(api, "/events/{id}", func(ctx context.Context, in *IDParam) (*eventOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		event, err := svc.GetEvent(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &eventOutput{Body: eventFrom(event)}, nil
	}, tag)

	huma.Patch(api, "/events/{id}", func(ctx context.Context, in *struct {
		IDParam
		Body EventPatchInput
	}) (*eventOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		patch, err := in.Body.toPatch()
		if err != nil {
			return nil, HandleErr(err)
		}
		event, err := svc.UpdateEvent(ctx, id, patch)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &eventOutput{Body: eventFrom(event)}, nil
	}, tag)

	huma.Delete(api, "/events/{id}", func(ctx context.Context, in *IDParam) (*struct{}, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteEvent(ctx, id); err != nil {
			return nil, HandleErr(err)
		}
		return nil, nil
	}, noContent, tag)

	huma.Get(api, "/producer/{id}/events", func(ctx context.Context, in *IDParam) (*eventsOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		// Anything but a known producer is a 404 rather than an empty list.
		producer, err := profiles.GetProfileByID(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		if producer.Type != models.ProducerType {
			return nil, huma.Error404NotFound("not found")
		}
		events, err := svc.GetEventsByProducer(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &eventsOutput{Body: eventsFrom(events)}, nil
	}, tag)
}

type Application struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Status           string    `json:"status"`
	PerformerID      string    `json:"performer_id"`
	EventID          string    `json:"event_id"`
	GoogleResponseID string    `json:"google_response_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func applicationFrom(a models.Application) Application {
	return Application{
		ID:               a.ID.String(),
		Name:             a.Name,
		Status:           a.Status.String(),
		PerformerID:      a.PerformerID.String(),
		EventID:          a.EventID.String(),
		GoogleResponseID: a.GoogleResponseID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func applicationsFrom(as []models.Application) []Application {
	out := make([]Application, 0, len(as))
	for _, a := range as {
		out = append(out, applicationFrom(a))
	}
	return out
}

type ApplicationInput struct {
	Name             string `json:"name"`
	Status           string `json:"status,omitempty"`
	PerformerID      string `json:"performer_id"`
	EventID          string `json:"event_id"`
	GoogleResponseID string `json:"google_response_id,omitempty"`
}

type ApplicationPatchInput struct {
	Name             *string `json:"name,omitempty"`
	Status           *string `json:"status,omitempty"`
	GoogleResponseID *string `json:"google_response_id,omitempty"`
}

func parseApplicationStatus(raw string) (models.ApplicationStatus, error) {
	status, ok := models.ParseApplicationStatus(raw)
	if !ok {
		return "", &models.ValidationError{Field: "status", Message: "unknown application status " + raw}
	}
	return status, nil
}

func (in ApplicationInput) toModel() (models.Application, error) {
	a := models.Application{Name: in.Name, GoogleResponseID: in.GoogleResponseID}
	var err error
	if in.Status != "" {
		if a.Status, err = parseApplicationStatus(in.Status); err != nil {
			return a, err
		}
	}
	if a.PerformerID, err = uuid.Parse(in.PerformerID); err != nil {
		return a, &models.ValidationError{Field: "performer_id", Message: "invalid id"}
	}
	if a.EventID, err = uuid.Parse(in.EventID); err != nil {
		return a, &models.ValidationError{Field: "event_id", Message: "invalid id"}
	}
	return a, nil
}

type applicationOutput struct {
	Body Application
}

type applicationsOutput struct {
	Body []Application
}

func registerApplications(api huma.API, svc AgendaService) {
	tag := tagged("Applications")

	huma.Post(api, "/applications", func(ctx context.Context, in *struct {
		Body ApplicationInput
	}) (*idOutput, error) {
		application, err := in.Body.toModel()
		if err != nil {
			return nil, HandleErr(err)
		}
		id, err := svc.CreateApplication(ctx, application)
		if err != nil {
			return nil, HandleErr(err)
		}
		return newIDOutput(id.String()), nil
	}, created, tag)

	huma.Get(api, "/applications/{id}", func(ctx context.Context, in *IDParam) (*applicationOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		application, err := svc.GetApplication(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &applicationOutput{Body: applicationFrom(application)}, nil
	}, tag)

	huma.Patch(api, "/applications/{id}", func(ctx context.Context, in *struct {
		IDParam
		Body ApplicationPatchInput
	}) (*applicationOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		patch := agenda.ApplicationPatch{Name: in.Body.Name, GoogleResponseID: in.Body.GoogleResponseID}
		if in.Body.Status != nil {
			status, err := parseApplicationStatus(*in.Body.Status)
			if err != nil {
				return nil, HandleErr(err)
			}
			patch.Status = &status
		}
		application, err := svc.UpdateApplication(ctx, id, patch)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &applicationOutput{Body: applicationFrom(application)}, nil
	}, tag)

	huma.Delete(api, "/applications/{id}", func(ctx context.Context, in *IDParam) (*struct{}, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		if err := svc.DeleteApplication(ctx, id); err != nil {
			return nil, HandleErr(err)
		}
		return nil, nil
	}, noContent, tag)

	huma.Get(api, "/events/{id}/applications", func(ctx context.Context, in *IDParam) (*applicationsOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		applications, err := svc.GetApplicationsByEvent(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &applicationsOutput{Body: applicationsFrom(applications)}, nil
	}, tag)

	huma.Get(api, "/performer/{id}/applications", func(ctx context.Context, in *IDParam) (*applicationsOutput, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return nil, err
		}
		applications, err := svc.GetApplicationsByPerformer(ctx, id)
		if err != nil {
			return nil, HandleErr(err)
		}
		return &applicationsOutput{Body: applicationsFrom(applications)}, nil
	}, tag)
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type tagsOutput struct {
	Body []Tag
}

type TagParam struct {
	Name string `path:"name" doc:"Tag name"`
}

func registerTags(api huma.API, svc AgendaService) {
	tag := tagged("Tags")

	huma.Get(api, "/tags", func(ctx context.Context, _ *struct{}) (*tagsOutput, error) {
		tags, err := svc.ListTags(ctx)
		if err != nil {
			return nil, HandleErr(err)
		}
		out := make([]Tag, 0, len(tags))
		for _, t := range tags {
			out = append(out, Tag{ID: t.ID, Name: t.Name})
		}
		return &tagsOutput{Body: out}, nil
	}, tag)

	huma.Post(api, "/tag/{name}", func(ctx context.Context, in *TagParam) (*idOutput, error) {
		id, err := svc.CreateTag(ctx, in.Name)
		if err != nil {
			return nil, HandleErr(err)
		}
		return newIDOutput(strconv.FormatInt(id, 10)), nil
	}, created, tag)

	huma.Delete(api, "/tag/{name}", func(ctx context.Context, in *TagParam) (*struct{}, error) {
		if err := svc.DeleteTag(ctx, in.Name); err != nil {
			return nil, HandleErr(err)
		}
		return nil, nil
	}, noContent, tag)
}
