package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ocall/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

/*
   ---------------------------
   Events
   ---------------------------
*/

// CreateEvent stores the event and links it to its tags by name. Unknown
// tags and references to missing or mistyped profiles are validation errors.
func (s *Store) CreateEvent(ctx context.Context, e *models.Event) (uuid.UUID, error) {
	e.Touch(s.now())
	e.Time = e.Time.UTC()
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkEventRefs(ctx, tx, e); err != nil {
			return err
		}
		tags, err := tagsByName(ctx, tx, e.TagNames())
		if err != nil {
			return err
		}
		e.Tags = tags
		if _, err := tx.NewInsert().Model(e).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		return linkTags(ctx, tx, e.ID, tags)
	})
	if err != nil {
		return uuid.Nil, err
	}
	return e.ID, nil
}

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (models.Event, error) {
	e, err := getEvent(ctx, s.db, id)
	if err != nil {
		return models.Event{}, err
	}
	events := []models.Event{e}
	if err := loadTags(ctx, s.db, events); err != nil {
		return models.Event{}, err
	}
	return events[0], nil
}

func getEvent(ctx context.Context, db bun.IDB, id uuid.UUID) (models.Event, error) {
	var e models.Event
	if err := db.NewSelect().Model(&e).Where("e.id = ?", id).Scan(ctx); err != nil {
		return models.Event{}, MapDBError(err)
	}
	return e, nil
}

// UpdateEvent saves every column of the event and replaces its tag set.
func (s *Store) UpdateEvent(ctx context.Context, e *models.Event) error {
	e.Touch(s.now())
	e.Time = e.Time.UTC()
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkEventRefs(ctx, tx, e); err != nil {
			return err
		}
		tags, err := tagsByName(ctx, tx, e.TagNames())
		if err != nil {
			return err
		}
		res, err := tx.NewUpdate().Model(e).ExcludeColumn("created_at").WherePK().Exec(ctx)
		if err != nil {
			return MapDBError(err)
		}
		if err := affected(res); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.EventTag)(nil)).Where("event_id = ?", e.ID).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		e.Tags = tags
		return linkTags(ctx, tx, e.ID, tags)
	})
}

func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*models.Event)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	return affected(res)
}

func (s *Store) GetEventsByProducer(ctx context.Context, producerID uuid.UUID) ([]models.Event, error) {
	events := []models.Event{}
	if err := s.db.NewSelect().
		Model(&events).
		Where("e.producer_id = ?", producerID).
		OrderExpr("e.event_time ASC").
		Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	if err := loadTags(ctx, s.db, events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsBetween returns live events whose time lies in [start, end].
func (s *Store) ListEventsBetween(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	events := []models.Event{}
	if err := s.db.NewSelect().
		Model(&events).
		Where("e.event_time >= ?", start.UTC()).
		Where("e.event_time <= ?", end.UTC()).
		OrderExpr("e.event_time ASC").
		Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	if err := loadTags(ctx, s.db, events); err != nil {
		return nil, err
	}
	return events, nil
}

func checkEventRefs(ctx context.Context, db bun.IDB, e *models.Event) error {
	producer, err := getProfile(ctx, db, e.ProducerID)
	if err != nil {
		return refError(err, "producer_id", "producer")
	}
	if producer.Type != models.ProducerType {
		return &models.ValidationError{Field: "producer_id", Message: "profile is not a producer"}
	}
	if e.VenueID == nil {
		return nil
	}
	venue, err := getProfile(ctx, db, *e.VenueID)
	if err != nil {
		return refError(err, "venue_id", "venue")
	}
	if venue.Type != models.VenueType {
		return &models.ValidationError{Field: "venue_id", Message: "profile is not a venue"}
	}
	return nil
}

func refError(err error, field, what string) error {
	if err == ErrNotFound {
		return &models.ValidationError{Field: field, Message: "unknown " + what}
	}
	return err
}

/*
   ---------------------------
   Applications
   ---------------------------
*/

func (s *Store) CreateApplication(ctx context.Context, a *models.Application) (uuid.UUID, error) {
	a.Touch(s.now())
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkApplicationRefs(ctx, tx, a); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(a).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return a.ID, nil
}

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (models.Application, error) {
	var a models.Application
	if err := s.db.NewSelect().Model(&a).Where("a.id = ?", id).Scan(ctx); err != nil {
		return models.Application{}, MapDBError(err)
	}
	return a, nil
}

func (s *Store) UpdateApplication(ctx context.Context, a *models.Application) error {
	a.Touch(s.now())
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkApplicationRefs(ctx, tx, a); err != nil {
			return err
		}
		res, err := tx.NewUpdate().Model(a).ExcludeColumn("created_at").WherePK().Exec(ctx)
		if err != nil {
			return MapDBError(err)
		}
		return affected(res)
	})
}

func (s *Store) DeleteApplication(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*models.Application)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	return affected(res)
}

// GetApplicationsByEvent returns ErrNotFound when the event itself is gone.
func (s *Store) GetApplicationsByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Application, error) {
	if _, err := getEvent(ctx, s.db, eventID); err != nil {
		return nil, err
	}
	return s.listApplications(ctx, "a.event_id = ?", eventID)
}

func (s *Store) GetApplicationsByPerformer(ctx context.Context, performerID uuid.UUID) ([]models.Application, error) {
	return s.listApplications(ctx, "a.performer_id = ?", performerID)
}

func (s *Store) listApplications(ctx context.Context, where string, id uuid.UUID) ([]models.Application, error) {
	applications := []models.Application{}
	if err := s.db.NewSelect().
		Model(&applications).
		Where(where, id).
		OrderExpr("a.created_at ASC").
		Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	return applications, nil
}

func checkApplicationRefs(ctx context.Context, db bun.IDB, a *models.Application) error {
	performer, err := getProfile(ctx, db, a.PerformerID)
	if err != nil {
		return refError(err, "performer_id", "performer")
	}
	if performer.Type != models.PerformerType {
		return &models.ValidationError{Field: "performer_id", Message: "profile is not a performer"}
	}
	if _, err := getEvent(ctx, db, a.EventID); err != nil {
		return refError(err, "event_id", "event")
	}
	return nil
}

/*
   ---------------------------
   Tags
   ---------------------------
*/

func (s *Store) CreateTag(ctx context.Context, name string) (int64, error) {
	tag := &models.Tag{Name: name}
	if _, err := s.db.NewInsert().Model(tag).Returning("id").Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return tag.ID, nil
}

// DeleteTag removes the tag and unlinks it from every event. A tag that is
// the only tag of a live event is kept and ErrInUse is returned.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var tag models.Tag
		if err := tx.NewSelect().Model(&tag).Where("t.name = ?", name).Scan(ctx); err != nil {
			return MapDBError(err)
		}
		sole, err := tx.NewSelect().
			Model((*models.Event)(nil)).
			Where("e.id IN (SELECT event_id FROM event_tags WHERE tag_id = ?)", tag.ID).
			Where("(SELECT COUNT(*) FROM event_tags AS et WHERE et.event_id = e.id) = 1").
			Count(ctx)
		if err != nil {
			return MapDBError(err)
		}
		if sole > 0 {
			return ErrInUse
		}
		if _, err := tx.NewDelete().Model((*models.EventTag)(nil)).Where("tag_id = ?", tag.ID).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		res, err := tx.NewDelete().Model((*models.Tag)(nil)).Where("id = ?", tag.ID).Exec(ctx)
		if err != nil {
			return MapDBError(err)
		}
		return affected(res)
	})
}

func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := s.db.NewSelect().Model(&tags).OrderExpr("t.name ASC").Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	return tags, nil
}

// tagsByName resolves names in the order given, dropping duplicates.
func tagsByName(ctx context.Context, db bun.IDB, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return []models.Tag{}, nil
	}
	var found []models.Tag
	if err := db.NewSelect().Model(&found).Where("t.name IN (?)", bun.In(names)).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	byName := make(map[string]models.Tag, len(found))
	for _, t := range found {
		byName[t.Name] = t
	}

	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		t, ok := byName[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		tags = append(tags, t)
	}
	if len(missing) > 0 {
		return nil, &models.ValidationError{
			Field:   "tags",
			Message: fmt.Sprintf("unknown tags: %s", strings.Join(missing, ", ")),
		}
	}
	return tags, nil
}

func linkTags(ctx context.Context, db bun.IDB, eventID uuid.UUID, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	links := make([]models.EventTag, 0, len(tags))
	for _, t := range tags {
		links = append(links, models.EventTag{EventID: eventID, TagID: t.ID})
	}
	if _, err := db.NewInsert().Model(&links).Exec(ctx); err != nil {
		return MapDBError(err)
	}
	return nil
}

type eventTagRow struct {
	EventID uuid.UUID `bun:"event_id"`
	ID      int64     `bun:"id"`
	Name    string    `bun:"name"`
}

// loadTags fills Tags on each event with a single query.
func loadTags(ctx context.Context, db bun.IDB, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	var rows []eventTagRow
	err := db.NewSelect().
		TableExpr("event_tags AS et").
		Join("JOIN tags AS t ON t.id = et.tag_id").
		ColumnExpr("et.event_id, t.id, t.name").
		Where("et.event_id IN (?)", bun.In(ids)).
		OrderExpr("t.name ASC").
		Scan(ctx, &rows)
	if err != nil && err != sql.ErrNoRows {
		return MapDBError(err)
	}

	byEvent := make(map[uuid.UUID][]models.Tag, len(events))
	for _, r := range rows {
		byEvent[r.EventID] = append(byEvent[r.EventID], models.Tag{ID: r.ID, Name: r.Name})
	}
	for i := range events {
		events[i].Tags = byEvent[events[i].ID]
		if events[i].Tags == nil {
			events[i].Tags = []models.Tag{}
		}
	}
	return nil
}
