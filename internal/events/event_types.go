package events

import (
	"time"

	"github.com/fixit-suporte/fixit-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated   EventType = "incident_created"
	EventIncidentAssigned  EventType = "incident_assigned"
	EventIncidentResolved  EventType = "incident_resolved"
	EventIncidentCommented EventType = "incident_commented"
	EventIncidentDeleted   EventType = "incident_deleted"
)

// Actor identifies who triggered an event.
type Actor struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID string      `json:"incident_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentCreatedPayload payload.
type IncidentCreatedPayload struct {
	Code       string          `json:"code"`
	Title      string          `json:"title"`
	Department string          `json:"department,omitempty"`
	Priority   domain.Priority `json:"priority"`
}

// IncidentAssignedPayload payload. SelfAssigned distinguishes a
// technician claiming the incident from an admin handing it over.
type IncidentAssignedPayload struct {
	TechnicianID   string `json:"technician_id"`
	TechnicianName string `json:"technician_name"`
	SelfAssigned   bool   `json:"self_assigned"`
}

// IncidentResolvedPayload payload.
type IncidentResolvedPayload struct {
	OldStatus domain.Status `json:"old_status"`
}

// IncidentCommentedPayload payload.
type IncidentCommentedPayload struct {
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}

// IncidentDeletedPayload payload.
type IncidentDeletedPayload struct {
	Code   string        `json:"code,omitempty"`
	Status domain.Status `json:"status"`
}

// NewActor builds event actor metadata from the session actor.
func NewActor(actor *domain.User) Actor {
	if actor == nil {
		return Actor{}
	}
	return Actor{ID: actor.ID, Name: actor.Name, Role: actor.Role}
}
