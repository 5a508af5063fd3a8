package domain

import "time"

// CreatorRef is the denormalized creator reference embedded in an
// incident.
type CreatorRef struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
}

// TechnicianRef is the assigned-technician reference. At most one
// technician is assigned at a time; a nil reference means unassigned.
type TechnicianRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CommentAuthor carries the author profile the backend denormalizes onto
// each comment.
type CommentAuthor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Telephone  string `json:"telephone,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Comment is a single entry in an incident's ordered comment thread.
type Comment struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"createdAt"`
	Author    CommentAuthor `json:"author"`
}

// Incident is the aggregate for a reported support ticket. Status and
// Priority always hold canonical values; the backend client normalizes on
// ingestion.
type Incident struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Department  string         `json:"department,omitempty"`
	Status      Status         `json:"status"`
	Priority    Priority       `json:"priority"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   *time.Time     `json:"updatedAt,omitempty"`
	ClosedAt    *time.Time     `json:"closedAt,omitempty"`
	Creator     *CreatorRef    `json:"creator,omitempty"`
	Technician  *TechnicianRef `json:"technician,omitempty"`
	Comments    []Comment      `json:"comments"`
}

// Assigned reports whether a technician currently holds the incident.
func (i *Incident) Assigned() bool {
	return i != nil && i.Technician != nil && i.Technician.ID != ""
}
