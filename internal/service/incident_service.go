package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/directory"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	"github.com/fixit-suporte/fixit-gateway/internal/events"
	"github.com/fixit-suporte/fixit-gateway/internal/lifecycle"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// IncidentService enforces the lifecycle rules in front of the backend.
// The backend stores and versions nothing for us; this layer is where an
// actor's role and relationship to the incident decide what goes through.
type IncidentService struct {
	incidents  backend.IncidentAPI
	directory  *directory.Directory
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IncidentDependencies bundles requirements for the incident service.
type IncidentDependencies struct {
	Incidents  backend.IncidentAPI
	Directory  *directory.Directory
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewIncidentService builds the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	return &IncidentService{
		incidents:  deps.Incidents,
		directory:  deps.Directory,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// CreateIncidentInput carries the report form fields. Priority accepts
// either vocabulary; anything unrecognized files as low.
type CreateIncidentInput struct {
	Title       string
	Description string
	Department  string
	Priority    string
}

// Create files a new incident on behalf of the actor.
func (s *IncidentService) Create(ctx context.Context, actor *domain.User, input CreateIncidentInput) (*domain.Incident, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}
	department := strings.TrimSpace(input.Department)
	if department == "" {
		department = actor.Department
	}

	created, err := s.incidents.CreateIncident(ctx, backend.CreateIncidentInput{
		Title:       title,
		Description: description,
		Department:  department,
		Priority:    domain.NormalizePriority(input.Priority),
		CreatorID:   actor.ID,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventIncidentCreated, created.ID, actor, events.IncidentCreatedPayload{
		Code:       created.Code,
		Title:      created.Title,
		Department: created.Department,
		Priority:   created.Priority,
	})
	s.logger.Info("incident created",
		zap.String("incident_id", created.ID),
		zap.String("code", created.Code),
		zap.String("creator_id", actor.ID))
	return created, nil
}

// List returns every incident as the backend reports them.
func (s *IncidentService) List(ctx context.Context) ([]domain.Incident, error) {
	return s.incidents.ListIncidents(ctx)
}

// Get fetches one incident together with the actor's permission set on it.
func (s *IncidentService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Incident, lifecycle.Permissions, error) {
	incident, err := s.incidents.GetIncident(ctx, id)
	if err != nil {
		return nil, lifecycle.Permissions{}, err
	}
	return incident, lifecycle.For(actor, incident), nil
}

// Claim lets a technician take an unassigned incident for themselves.
func (s *IncidentService) Claim(ctx context.Context, actor *domain.User, id string) (*domain.Incident, error) {
	return s.assign(ctx, actor, id, actor.ID, actor.Name, true)
}

// Assign hands the incident to the given technician. Technicians may only
// do this while the incident is unassigned; admins may reassign freely.
func (s *IncidentService) Assign(ctx context.Context, actor *domain.User, id, technicianID string) (*domain.Incident, error) {
	technicians, err := s.directory.Technicians(ctx)
	if err != nil {
		return nil, err
	}
	for _, tech := range technicians {
		if tech.ID == technicianID {
			return s.assign(ctx, actor, id, tech.ID, tech.Name, false)
		}
	}
	return nil, apperrors.NewNotFound("technician", map[string]any{"id": technicianID})
}

func (s *IncidentService) assign(ctx context.Context, actor *domain.User, id, techID, techName string, self bool) (*domain.Incident, error) {
	incident, err := s.incidents.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanAssign(actor, incident) {
		if incident.Assigned() {
			return nil, apperrors.NewConflict("incident is already assigned to a technician", map[string]any{"technician_id": incident.Technician.ID})
		}
		return nil, apperrors.NewForbidden("only technicians may take incidents")
	}

	status := domain.StatusInProgress
	updated, err := s.incidents.UpdateIncident(ctx, id, backend.IncidentPatch{
		Status:     &status,
		Technician: &domain.TechnicianRef{ID: techID, Name: techName},
		Touch:      true,
	})
	if err != nil {
		return nil, err
	}
	// Re-read so the response reflects whatever else the backend touched
	// during the update, not just the echoed patch.
	if fresh, err := s.incidents.GetIncident(ctx, id); err == nil {
		updated = fresh
	}

	s.publish(ctx, events.EventIncidentAssigned, id, actor, events.IncidentAssignedPayload{
		TechnicianID:   techID,
		TechnicianName: techName,
		SelfAssigned:   self,
	})
	s.logger.Info("incident assigned",
		zap.String("incident_id", id),
		zap.String("technician_id", techID),
		zap.Bool("self_assigned", self))
	return updated, nil
}

// Solve marks the incident resolved. Only the assigned technician or an
// admin may do this; resolution is reversible by a later assignment.
func (s *IncidentService) Solve(ctx context.Context, actor *domain.User, id string) (*domain.Incident, error) {
	incident, err := s.incidents.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanSolve(actor, incident) {
		return nil, apperrors.NewForbidden("only the assigned technician or an administrator may resolve this incident")
	}

	status := domain.StatusResolved
	updated, err := s.incidents.UpdateIncident(ctx, id, backend.IncidentPatch{
		Status: &status,
		Touch:  true,
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventIncidentResolved, id, actor, events.IncidentResolvedPayload{
		OldStatus: incident.Status,
	})
	s.logger.Info("incident resolved",
		zap.String("incident_id", id),
		zap.String("actor_id", actor.ID))
	return updated, nil
}

// Delete removes the incident. Owner-only, regardless of status.
func (s *IncidentService) Delete(ctx context.Context, actor *domain.User, id string) error {
	incident, err := s.incidents.GetIncident(ctx, id)
	if err != nil {
		return err
	}
	if !lifecycle.IsOwner(actor, incident) {
		return apperrors.NewForbidden("only the creator may delete this incident")
	}
	if err := s.incidents.DeleteIncident(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.EventIncidentDeleted, id, actor, events.IncidentDeletedPayload{
		Code:   incident.Code,
		Status: incident.Status,
	})
	s.logger.Info("incident deleted",
		zap.String("incident_id", id),
		zap.String("actor_id", actor.ID))
	return nil
}

// Comment appends to the incident's thread and returns the updated record.
func (s *IncidentService) Comment(ctx context.Context, actor *domain.User, id, message string) (*domain.Incident, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("comment message is required", nil)
	}

	incident, err := s.incidents.GetIncident(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lifecycle.CanComment(actor, incident) {
		return nil, apperrors.NewForbidden("commenting opens once a technician is assigned")
	}

	updated, err := s.incidents.AddComment(ctx, id, message, actor.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventIncidentCommented, id, actor, events.IncidentCommentedPayload{
		AuthorID:    actor.ID,
		BodyPreview: preview(message, 120),
	})
	return updated, nil
}

// Search forwards a free-text query to the backend.
func (s *IncidentService) Search(ctx context.Context, query string) ([]domain.Incident, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.incidents.ListIncidents(ctx)
	}
	return s.incidents.SearchIncidents(ctx, query)
}

// Filter forwards server-side filtering by status, priority and department.
func (s *IncidentService) Filter(ctx context.Context, criteria backend.FilterCriteria) ([]domain.Incident, error) {
	if criteria.Status == "" && criteria.Priority == "" && criteria.Department == "" {
		return s.incidents.ListIncidents(ctx)
	}
	return s.incidents.FilterIncidents(ctx, criteria)
}

func (s *IncidentService) publish(ctx context.Context, eventType events.EventType, incidentID string, actor *domain.User, payload any) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		IncidentID: incidentID,
		Actor:      events.NewActor(actor),
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	})
}

func preview(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
