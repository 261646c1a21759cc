//go:build integration

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ocall/internal/models"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "ocall",
			"POSTGRES_PASSWORD": "ocall",
			"POSTGRES_DB":       "ocall",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(1 * time.Minute).
			WithPollInterval(2 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("get host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("get mapped port: %v", err)
	}

	dsn := fmt.Sprintf("postgres://ocall:ocall@%s:%s/ocall?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(context.Background())
	}
}

func TestPostgresStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dsn, cleanup := startPostgres(ctx, t)
	defer cleanup()

	s, err := Open(ctx, Options{Type: TypePostgres, DSN: dsn})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	producer, err := s.CreateProfile(ctx, &models.Profile{Name: "Prod", Type: models.ProducerType})
	if err != nil {
		t.Fatalf("create producer: %v", err)
	}
	if _, err := s.CreateTag(ctx, "jazz"); err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if _, err := s.CreateTag(ctx, "jazz"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	at := time.Date(2026, 11, 20, 20, 0, 0, 0, time.UTC)
	event := &models.Event{
		Name:       "Gig",
		ProducerID: producer,
		Time:       at,
		Status:     models.EventDraft,
		Tags:       []models.Tag{{Name: "jazz"}},
	}
	event.SetLocation(&models.GeoPoint{Lat: 52.37, Lng: 4.89})
	id, err := s.CreateEvent(ctx, event)
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	got, err := s.GetEvent(ctx, id)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Name != "Gig" || len(got.Tags) != 1 || !got.Time.Equal(at) {
		t.Fatalf("unexpected event: %+v", got)
	}

	between, err := s.ListEventsBetween(ctx, at.Add(-time.Hour), at.Add(time.Hour))
	if err != nil || len(between) != 1 {
		t.Fatalf("list between: %+v %v", between, err)
	}

	if err := s.DeleteEvent(ctx, id); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if _, err := s.GetEvent(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
