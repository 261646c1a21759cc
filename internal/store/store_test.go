package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"ocall/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Options{Type: TypeSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustProfile(t *testing.T, s *Store, name string, typ models.ProfileType, loc *models.GeoPoint) uuid.UUID {
	t.Helper()
	p := &models.Profile{Name: name, Type: typ}
	p.SetLocation(loc)
	id, err := s.CreateProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("create profile %s: %v", name, err)
	}
	return id
}

func mustTag(t *testing.T, s *Store, name string) int64 {
	t.Helper()
	id, err := s.CreateTag(context.Background(), name)
	if err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return id
}

func newEvent(producer uuid.UUID, at time.Time, tags ...string) *models.Event {
	e := &models.Event{
		Name:       "Open mic",
		ProducerID: producer,
		Time:       at,
		Status:     models.EventOpen,
	}
	e.SetLocation(&models.GeoPoint{Lat: 52.37, Lng: 4.89})
	for _, name := range tags {
		e.Tags = append(e.Tags, models.Tag{Name: name})
	}
	return e
}

func TestOpenRejectsUnknownType(t *testing.T) {
	if _, err := Open(context.Background(), Options{Type: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported database type")
	}
}

func TestOpenReportsDriverFailure(t *testing.T) {
	orig := sqlOpenFunc
	t.Cleanup(func() { sqlOpenFunc = orig })
	sqlOpenFunc = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "sqlite" {
			t.Fatalf("unexpected driver %q", driverName)
		}
		return nil, errors.New("no such driver")
	}

	if _, err := Open(context.Background(), Options{Type: TypeSQLite, DSN: ":memory:"}); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestPingAfterClose(t *testing.T) {
	s, err := Open(context.Background(), Options{Type: TypeSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	_ = s.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail on a closed store")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestProfileLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id := mustProfile(t, s, "Paradiso", models.VenueType, &models.GeoPoint{Lat: 52.36, Lng: 4.88})

	got, err := s.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.Name != "Paradiso" || got.Type != models.VenueType {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if diff := cmp.Diff(&models.GeoPoint{Lat: 52.36, Lng: 4.88}, got.Location()); diff != "" {
		t.Fatalf("location mismatch (-want +got):\n%s", diff)
	}

	got.Name = "Paradiso Noord"
	if err := s.UpdateProfile(ctx, &got); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	again, err := s.GetProfile(ctx, id)
	if err != nil {
		t.Fatalf("get updated profile: %v", err)
	}
	if again.Name != "Paradiso Noord" {
		t.Fatalf("expected updated name, got %q", again.Name)
	}

	if err := s.DeleteProfile(ctx, id); err != nil {
		t.Fatalf("delete profile: %v", err)
	}
	if _, err := s.GetProfile(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteProfile(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListProfilesFiltersByType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustProfile(t, s, "Zoe", models.PerformerType, nil)
	mustProfile(t, s, "Adam", models.PerformerType, nil)
	mustProfile(t, s, "Club", models.VenueType, nil)

	performers, err := s.ListProfiles(ctx, models.PerformerType)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	var names []string
	for _, p := range performers {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"Adam", "Zoe"}, names); diff != "" {
		t.Fatalf("performers mismatch (-want +got):\n%s", diff)
	}

	all, err := s.ListProfiles(ctx, "")
	if err != nil {
		t.Fatalf("list all profiles: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 profiles, got %d", len(all))
	}
}

func TestTagsAreUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	first := mustTag(t, s, "jazz")
	if first == 0 {
		t.Fatalf("expected non-zero tag id")
	}
	if _, err := s.CreateTag(ctx, "jazz"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := s.DeleteTag(ctx, "blues"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting missing tag, got %v", err)
	}
}

func TestDeleteTagKeepsEventsTagged(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	producer := mustProfile(t, s, "Prod", models.ProducerType, nil)
	mustTag(t, s, "jazz")
	mustTag(t, s, "blues")
	at := time.Date(2026, 6, 1, 20, 0, 0, 0, time.UTC)

	solo, err := s.CreateEvent(ctx, newEvent(producer, at, "jazz"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	both, err := s.CreateEvent(ctx, newEvent(producer, at, "jazz", "blues"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if err := s.DeleteTag(ctx, "jazz"); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse for the only tag of an event, got %v", err)
	}
	got, err := s.GetEvent(ctx, solo)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if diff := cmp.Diff([]string{"jazz"}, got.TagNames()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	// Soft-deleted events do not hold on to their tags.
	if err := s.DeleteEvent(ctx, solo); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if err := s.DeleteTag(ctx, "jazz"); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
	got, err = s.GetEvent(ctx, both)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if diff := cmp.Diff([]string{"blues"}, got.TagNames()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestEventLifecycleWithTags(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	producer := mustProfile(t, s, "Prod", models.ProducerType, nil)
	mustTag(t, s, "jazz")
	mustTag(t, s, "blues")

	at := time.Date(2026, 11, 20, 20, 0, 0, 0, time.UTC)
	e := newEvent(producer, at, "jazz", "blues", "jazz")
	id, err := s.CreateEvent(ctx, e)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	got, err := s.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if diff := cmp.Diff([]string{"blues", "jazz"}, got.TagNames()); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if !got.Time.Equal(at) {
		t.Fatalf("expected time %s, got %s", at, got.Time)
	}

	got.Tags = []models.Tag{{Name: "blues"}}
	got.Name = "Blues night"
	if err := s.UpdateEvent(ctx, &got); err != nil {
		t.Fatalf("update event: %v", err)
	}
	updated, err := s.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("get updated event: %v", err)
	}
	if updated.Name != "Blues night" {
		t.Fatalf("expected renamed event, got %q", updated.Name)
	}
	if diff := cmp.Diff([]string{"blues"}, updated.TagNames()); diff != "" {
		t.Fatalf("updated tags mismatch (-want +got):\n%s", diff)
	}

	if err := s.DeleteTag(ctx, "jazz"); err != nil {
		t.Fatalf("delete unused tag: %v", err)
	}
	if err := s.DeleteTag(ctx, "blues"); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse for the event's only tag, got %v", err)
	}

	if err := s.DeleteEvent(ctx, id); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if _, err := s.GetEvent(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateEventRejectsBadReferences(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	producer := mustProfile(t, s, "Prod", models.ProducerType, nil)
	performer := mustProfile(t, s, "Act", models.PerformerType, nil)
	mustTag(t, s, "jazz")
	at := time.Date(2026, 11, 20, 20, 0, 0, 0, time.UTC)

	if _, err := s.CreateEvent(ctx, newEvent(producer, at, "polka")); !models.IsValidation(err) {
		t.Fatalf("expected validation error for unknown tag, got %v", err)
	}
	if _, err := s.CreateEvent(ctx, newEvent(uuid.New(), at, "jazz")); !models.IsValidation(err) {
		t.Fatalf("expected validation error for unknown producer, got %v", err)
	}
	if _, err := s.CreateEvent(ctx, newEvent(performer, at, "jazz")); !models.IsValidation(err) {
		t.Fatalf("expected validation error for non-producer, got %v", err)
	}
	e := newEvent(producer, at, "jazz")
	e.VenueID = &performer
	if _, err := s.CreateEvent(ctx, e); !models.IsValidation(err) {
		t.Fatalf("expected validation error for non-venue, got %v", err)
	}
}

func TestEventQueries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	producer := mustProfile(t, s, "Prod", models.ProducerType, nil)
	other := mustProfile(t, s, "Other", models.ProducerType, nil)
	venue := mustProfile(t, s, "Hall", models.VenueType, nil)
	mustTag(t, s, "jazz")

	base := time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC)
	early, err := s.CreateEvent(ctx, newEvent(producer, base, "jazz"))
	if err != nil {
		t.Fatalf("create early: %v", err)
	}
	withVenue := newEvent(producer, base.Add(48*time.Hour), "jazz")
	withVenue.VenueID = &venue
	late, err := s.CreateEvent(ctx, withVenue)
	if err != nil {
		t.Fatalf("create late: %v", err)
	}
	if _, err := s.CreateEvent(ctx, newEvent(other, base.Add(24*time.Hour), "jazz")); err != nil {
		t.Fatalf("create other: %v", err)
	}

	byProducer, err := s.GetEventsByProducer(ctx, producer)
	if err != nil {
		t.Fatalf("events by producer: %v", err)
	}
	if len(byProducer) != 2 || byProducer[0].ID != early || byProducer[1].ID != late {
		t.Fatalf("unexpected events by producer: %+v", byProducer)
	}

	window, err := s.ListEventsBetween(ctx, base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("list between: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("expected 2 events in window, got %d", len(window))
	}

	gotProducer, err := s.GetProducerByEventID(ctx, late)
	if err != nil || gotProducer.ID != producer {
		t.Fatalf("producer by event: %+v %v", gotProducer, err)
	}
	gotVenue, err := s.GetVenueByEventID(ctx, late)
	if err != nil || gotVenue.ID != venue {
		t.Fatalf("venue by event: %+v %v", gotVenue, err)
	}
	if _, err := s.GetVenueByEventID(ctx, early); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for event without venue, got %v", err)
	}
}

func TestApplicationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	producer := mustProfile(t, s, "Prod", models.ProducerType, nil)
	performer := mustProfile(t, s, "Act", models.PerformerType, nil)
	mustTag(t, s, "jazz")
	eventID, err := s.CreateEvent(ctx, newEvent(producer, time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC), "jazz"))
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	a := &models.Application{Name: "Trio set", Status: models.StatusPending, PerformerID: performer, EventID: eventID}
	id, err := s.CreateApplication(ctx, a)
	if err != nil {
		t.Fatalf("create application: %v", err)
	}

	byEvent, err := s.GetApplicationsByEvent(ctx, eventID)
	if err != nil || len(byEvent) != 1 || byEvent[0].ID != id {
		t.Fatalf("applications by event: %+v %v", byEvent, err)
	}
	byPerformer, err := s.GetApplicationsByPerformer(ctx, performer)
	if err != nil || len(byPerformer) != 1 {
		t.Fatalf("applications by performer: %+v %v", byPerformer, err)
	}
	performers, err := s.GetPerformersByEventID(ctx, eventID)
	if err != nil || len(performers) != 1 || performers[0].ID != performer {
		t.Fatalf("performers by event: %+v %v", performers, err)
	}

	got, err := s.GetApplication(ctx, id)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	got.Status = models.StatusAccepted
	if err := s.UpdateApplication(ctx, &got); err != nil {
		t.Fatalf("update application: %v", err)
	}
	again, err := s.GetApplication(ctx, id)
	if err != nil || again.Status != models.StatusAccepted {
		t.Fatalf("expected accepted application: %+v %v", again, err)
	}

	if err := s.DeleteApplication(ctx, id); err != nil {
		t.Fatalf("delete application: %v", err)
	}
	if _, err := s.GetApplication(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.GetApplicationsByEvent(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing event, got %v", err)
	}

	wrong := &models.Application{Name: "x", PerformerID: producer, EventID: eventID, Status: models.StatusPending}
	if _, err := s.CreateApplication(ctx, wrong); !models.IsValidation(err) {
		t.Fatalf("expected validation error for non-performer, got %v", err)
	}
}

func TestMapDBError(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	if err := MapDBError(errors.New("UNIQUE constraint failed: tags.name")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	other := errors.New("boom")
	if err := MapDBError(other); err != other {
		t.Fatalf("expected passthrough, got %v", err)
	}
}
