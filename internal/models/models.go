// Package models holds the OCall domain entities and the rules that decide
// whether an entity may be stored.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Model struct {
	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
	DeletedAt time.Time `bun:"deleted_at,soft_delete,nullzero"`
}

// Touch assigns an id on first use and refreshes the timestamps.
func (m *Model) Touch(now time.Time) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`
	Model

	Name string      `bun:"name,notnull"`
	Type ProfileType `bun:"type,notnull"`
	Lat  *float64    `bun:"lat"`
	Lng  *float64    `bun:"lng"`
}

func (p *Profile) Location() *GeoPoint { return pointFrom(p.Lat, p.Lng) }

func (p *Profile) SetLocation(g *GeoPoint) { p.Lat, p.Lng = g.columns() }

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull,unique"`
}

// EventTag joins events to tags.
type EventTag struct {
	bun.BaseModel `bun:"table:event_tags,alias:et"`

	EventID uuid.UUID `bun:"event_id,pk,type:uuid"`
	TagID   int64     `bun:"tag_id,pk"`
}

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`
	Model

	Name         string      `bun:"name,notnull"`
	Description  string      `bun:"description"`
	ProducerID   uuid.UUID   `bun:"producer_id,notnull,type:uuid"`
	VenueID      *uuid.UUID  `bun:"venue_id,type:uuid"`
	GoogleForm   string      `bun:"google_form"`
	Lat          *float64    `bun:"lat"`
	Lng          *float64    `bun:"lng"`
	Status       EventStatus `bun:"status,notnull"`
	Time         time.Time   `bun:"event_time,notnull"`
	ApplyByTime  *time.Time  `bun:"apply_by_time"`
	PayStructure string      `bun:"pay_structure"`

	Tags []Tag `bun:"-"`
}

func (e *Event) Location() *GeoPoint { return pointFrom(e.Lat, e.Lng) }

func (e *Event) SetLocation(g *GeoPoint) { e.Lat, e.Lng = g.columns() }

// TagNames returns the names of the event's tags in order.
func (e *Event) TagNames() []string {
	names := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		names = append(names, t.Name)
	}
	return names
}

type Application struct {
	bun.BaseModel `bun:"table:applications,alias:a"`
	Model

	Name             string            `bun:"name,notnull"`
	Status           ApplicationStatus `bun:"status,notnull"`
	PerformerID      uuid.UUID         `bun:"performer_id,notnull,type:uuid"`
	EventID          uuid.UUID         `bun:"event_id,notnull,type:uuid"`
	GoogleResponseID string            `bun:"google_response_id"`
}
