package dto

import (
	"time"

	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	"github.com/fixit-suporte/fixit-gateway/internal/lifecycle"
)

// CreateIncidentRequest payload for filing an incident. Priority accepts
// the canonical names or the backend vocabulary; unknown values file as
// low.
type CreateIncidentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"`
	Priority    string `json:"priority"`
}

// AssignRequest payload for handing an incident to a technician.
type AssignRequest struct {
	TechnicianID string `json:"technician_id"`
}

// CommentRequest payload for the comment thread.
type CommentRequest struct {
	Message string `json:"message"`
}

// PersonRef is a slim person reference in incident responses.
type PersonRef struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

// CommentResponse is one thread entry.
type CommentResponse struct {
	ID        string    `json:"id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Author    PersonRef `json:"author"`
}

// IncidentResponse is the incident shape handed to clients. Status and
// priority always carry canonical values.
type IncidentResponse struct {
	ID          string            `json:"id"`
	Code        string            `json:"code,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Department  string            `json:"department,omitempty"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   *time.Time        `json:"updated_at,omitempty"`
	ClosedAt    *time.Time        `json:"closed_at,omitempty"`
	Creator     *PersonRef        `json:"creator,omitempty"`
	Technician  *PersonRef        `json:"technician,omitempty"`
	Comments    []CommentResponse `json:"comments"`
}

// IncidentDetailResponse pairs an incident with the caller's permission
// set on it.
type IncidentDetailResponse struct {
	Incident    IncidentResponse      `json:"incident"`
	Permissions lifecycle.Permissions `json:"permissions"`
}

// FromIncident maps a domain incident to its response shape.
func FromIncident(inc domain.Incident) IncidentResponse {
	resp := IncidentResponse{
		ID:          inc.ID,
		Code:        inc.Code,
		Title:       inc.Title,
		Description: inc.Description,
		Department:  inc.Department,
		Status:      inc.Status.String(),
		Priority:    inc.Priority.String(),
		CreatedAt:   inc.CreatedAt,
		UpdatedAt:   inc.UpdatedAt,
		ClosedAt:    inc.ClosedAt,
		Comments:    make([]CommentResponse, 0, len(inc.Comments)),
	}
	if inc.Creator != nil {
		resp.Creator = &PersonRef{ID: inc.Creator.ID, Name: inc.Creator.Name, Department: inc.Creator.Department}
	}
	if inc.Technician != nil {
		resp.Technician = &PersonRef{ID: inc.Technician.ID, Name: inc.Technician.Name}
	}
	for _, comment := range inc.Comments {
		resp.Comments = append(resp.Comments, CommentResponse{
			ID:        comment.ID,
			Message:   comment.Message,
			CreatedAt: comment.CreatedAt,
			Author: PersonRef{
				ID:         comment.Author.ID,
				Name:       comment.Author.Name,
				Department: comment.Author.Department,
			},
		})
	}
	return resp
}

// FromIncidents maps a slice of incidents.
func FromIncidents(incidents []domain.Incident) []IncidentResponse {
	out := make([]IncidentResponse, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, FromIncident(inc))
	}
	return out
}
