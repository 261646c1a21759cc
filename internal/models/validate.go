package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ValidationError reports an entity that breaks a domain rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Validate checks the profile and stores its type in canonical form.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "name required for profile")
	}
	t, ok := ParseProfileType(string(p.Type))
	if !ok {
		return invalid("type", "profile type must be producer, performer or venue")
	}
	p.Type = t
	return nil
}

// Validate checks the event and fills in its default status.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return invalid("name", "name required for event")
	}
	if len(e.Tags) == 0 {
		return invalid("tags", "event must have at least one tag")
	}
	if e.ProducerID == uuid.Nil {
		return invalid("producer_id", "event must have a producer")
	}
	if e.Location().IsZero() && (e.VenueID == nil || *e.VenueID == uuid.Nil) {
		return invalid("location", "either location or venue must be supplied")
	}
	if e.ApplyByTime != nil && !e.Time.IsZero() && e.ApplyByTime.After(e.Time) {
		return invalid("apply_by_time", "apply by time must not be after the event time")
	}
	if e.Status == "" {
		e.Status = EventDraft
	}
	if _, ok := ParseEventStatus(string(e.Status)); !ok {
		return invalid("status", "unknown event status")
	}
	return nil
}

// Validate checks the application and fills in its default status.
func (a *Application) Validate() error {
	if a.PerformerID == uuid.Nil {
		return invalid("performer_id", "performer required to create application")
	}
	if strings.TrimSpace(a.Name) == "" {
		return invalid("name", "no name for application")
	}
	if a.EventID == uuid.Nil {
		return invalid("event_id", "event required for application")
	}
	if a.Status == "" || a.Status == StatusUnknown {
		a.Status = StatusPending
	}
	if _, ok := ParseApplicationStatus(string(a.Status)); !ok {
		return invalid("status", "unknown application status")
	}
	return nil
}
