package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ProfileType string

const (
	ProducerType  ProfileType = "producer"
	PerformerType ProfileType = "performer"
	VenueType     ProfileType = "venue"
)

func (p ProfileType) String() string { return string(p) }

// ParseProfileType accepts any casing of the three known profile types.
func ParseProfileType(s string) (ProfileType, bool) {
	switch ProfileType(strings.ToLower(strings.TrimSpace(s))) {
	case ProducerType:
		return ProducerType, true
	case PerformerType:
		return PerformerType, true
	case VenueType:
		return VenueType, true
	}
	return "", false
}

func (p *ProfileType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseProfileType(s)
	if !ok {
		return fmt.Errorf("invalid profile type %q. Allowed: producer, performer, venue", s)
	}
	*p = parsed
	return nil
}

type ApplicationStatus string

const (
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
	StatusPending  ApplicationStatus = "pending"
	StatusOffered  ApplicationStatus = "offered"
	StatusUnknown  ApplicationStatus = "unknown"
)

func (a ApplicationStatus) String() string { return string(a) }

func ParseApplicationStatus(s string) (ApplicationStatus, bool) {
	switch ApplicationStatus(s) {
	case StatusAccepted, StatusRejected, StatusPending, StatusOffered, StatusUnknown:
		return ApplicationStatus(s), true
	}
	return "", false
}

func (a *ApplicationStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseApplicationStatus(s)
	if !ok {
		return fmt.Errorf("invalid application status type %s. Allowed: accepted, rejected, pending, offered, unknown", s)
	}
	*a = parsed
	return nil
}

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventOpen      EventStatus = "open"
	EventClosed    EventStatus = "closed"
	EventCancelled EventStatus = "cancelled"
	EventUnknown   EventStatus = "unknown"
)

func (e EventStatus) String() string { return string(e) }

func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventDraft, EventOpen, EventClosed, EventCancelled, EventUnknown:
		return EventStatus(s), true
	}
	return "", false
}

func (e *EventStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseEventStatus(s)
	if !ok {
		return fmt.Errorf("invalid event application status %s. Allowed: draft, open, closed, cancelled, unknown", s)
	}
	*e = parsed
	return nil
}
