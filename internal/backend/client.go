package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fixit-suporte/fixit-gateway/internal/config"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

// IncidentAPI is the incident surface of the help-desk backend. The
// gateway owns none of this data; every method is a thin request/response
// wrapper with no retry, no backoff and no idempotency key.
type IncidentAPI interface {
	ListIncidents(ctx context.Context) ([]domain.Incident, error)
	GetIncident(ctx context.Context, id string) (*domain.Incident, error)
	CreateIncident(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error)
	UpdateIncident(ctx context.Context, id string, patch IncidentPatch) (*domain.Incident, error)
	DeleteIncident(ctx context.Context, id string) error
	AddComment(ctx context.Context, id, message, authorID string) (*domain.Incident, error)
	SearchIncidents(ctx context.Context, query string) ([]domain.Incident, error)
	FilterIncidents(ctx context.Context, criteria FilterCriteria) ([]domain.Incident, error)
}

// UserAPI is the account surface of the help-desk backend.
type UserAPI interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	RegisterUser(ctx context.Context, user domain.User) (*domain.User, error)
	LoginUser(ctx context.Context, email, password string) (*domain.User, error)
}

// CreateIncidentInput is the payload for a new incident. Priority is
// translated to the backend vocabulary on the wire.
type CreateIncidentInput struct {
	Title       string
	Description string
	Department  string
	Priority    domain.Priority
	CreatorID   string
}

// IncidentPatch carries the partial fields an update may set. Nil fields
// are omitted from the request body.
type IncidentPatch struct {
	Status     *domain.Status
	Technician *domain.TechnicianRef
	Touch      bool
}

// FilterCriteria mirrors the backend's /chamados/filtrar query parameters.
type FilterCriteria struct {
	Status     string
	Priority   string
	Department string
}

// Client talks JSON over HTTP to the backend at a fixed base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ IncidentAPI = (*Client)(nil)
var _ UserAPI = (*Client)(nil)

// NewClient builds a backend client from configuration.
func NewClient(cfg config.BackendConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if cfg.TimeoutSeconds <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListIncidents fetches every incident.
func (c *Client) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	var wires []wireIncident
	if err := c.do(ctx, http.MethodGet, "/chamados", nil, &wires); err != nil {
		return nil, err
	}
	return incidentsToDomain(wires), nil
}

// GetIncident fetches a single incident by id.
func (c *Client) GetIncident(ctx context.Context, id string) (*domain.Incident, error) {
	var wire wireIncident
	if err := c.do(ctx, http.MethodGet, "/chamados/"+url.PathEscape(id), nil, &wire); err != nil {
		return nil, err
	}
	inc := wire.toDomain()
	return &inc, nil
}

// CreateIncident files a new incident on behalf of its creator. Status is
// chosen by the backend (new incidents open as "aberto").
func (c *Client) CreateIncident(ctx context.Context, input CreateIncidentInput) (*domain.Incident, error) {
	body := wireCreateIncident{
		Titulo:       input.Title,
		Descricao:    input.Description,
		Departamento: input.Department,
		Prioridade:   input.Priority.Wire(),
		Usuario:      wireUserRef{ID: flexID(input.CreatorID)},
	}
	var wire wireIncident
	if err := c.do(ctx, http.MethodPost, "/chamados", body, &wire); err != nil {
		return nil, err
	}
	inc := wire.toDomain()
	return &inc, nil
}

// UpdateIncident applies a partial update and returns the backend's view
// of the record. There is no version token; two concurrent updates both
// succeed and the second write wins.
func (c *Client) UpdateIncident(ctx context.Context, id string, patch IncidentPatch) (*domain.Incident, error) {
	body := wireUpdateIncident{}
	if patch.Status != nil {
		body.Status = patch.Status.String()
	}
	if patch.Technician != nil {
		body.Tecnico = &wireTechRef{ID: flexID(patch.Technician.ID), Name: patch.Technician.Name}
	}
	if patch.Touch {
		body.DataAtualizacao = time.Now().Format(time.RFC3339)
	}
	var wire wireIncident
	if err := c.do(ctx, http.MethodPut, "/chamados/"+url.PathEscape(id), body, &wire); err != nil {
		return nil, err
	}
	inc := wire.toDomain()
	return &inc, nil
}

// DeleteIncident removes the incident entirely.
func (c *Client) DeleteIncident(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/chamados/"+url.PathEscape(id), nil, nil)
}

// AddComment appends a comment and returns the updated incident.
func (c *Client) AddComment(ctx context.Context, id, message, authorID string) (*domain.Incident, error) {
	body := wireAddComment{Mensagem: message, AutorID: flexID(authorID)}
	var wire wireIncident
	if err := c.do(ctx, http.MethodPost, "/chamados/"+url.PathEscape(id)+"/comentarios", body, &wire); err != nil {
		return nil, err
	}
	inc := wire.toDomain()
	return &inc, nil
}

// SearchIncidents performs a free-text search.
func (c *Client) SearchIncidents(ctx context.Context, query string) ([]domain.Incident, error) {
	var wires []wireIncident
	path := "/chamados/buscar?q=" + url.QueryEscape(query)
	if err := c.do(ctx, http.MethodGet, path, nil, &wires); err != nil {
		return nil, err
	}
	return incidentsToDomain(wires), nil
}

// FilterIncidents filters server-side by status, priority and department.
// Priority is translated to the backend vocabulary before sending.
func (c *Client) FilterIncidents(ctx context.Context, criteria FilterCriteria) ([]domain.Incident, error) {
	params := url.Values{}
	if criteria.Status != "" {
		params.Set("status", domain.NormalizeStatus(criteria.Status).String())
	}
	if criteria.Priority != "" {
		params.Set("prioridade", domain.NormalizePriority(criteria.Priority).Wire())
	}
	if criteria.Department != "" {
		params.Set("departamento", criteria.Department)
	}
	var wires []wireIncident
	if err := c.do(ctx, http.MethodGet, "/chamados/filtrar?"+params.Encode(), nil, &wires); err != nil {
		return nil, err
	}
	return incidentsToDomain(wires), nil
}

// ListUsers fetches every backend account.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var wires []wireUser
	if err := c.do(ctx, http.MethodGet, "/usuarios", nil, &wires); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(wires))
	for _, w := range wires {
		users = append(users, w.toDomain())
	}
	return users, nil
}

// RegisterUser creates a backend account and returns the stored record.
func (c *Client) RegisterUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.Role == "" {
		user.Role = domain.RoleUser
	}
	var wire wireUser
	if err := c.do(ctx, http.MethodPost, "/usuarios", userToWire(user), &wire); err != nil {
		return nil, err
	}
	created := wire.toDomain()
	return &created, nil
}

// LoginUser authenticates against the backend login endpoint.
func (c *Client) LoginUser(ctx context.Context, email, password string) (*domain.User, error) {
	body := map[string]string{"email": email, "password": password}
	var wire wireUser
	if err := c.do(ctx, http.MethodPost, "/usuarios/login", body, &wire); err != nil {
		return nil, err
	}
	user := wire.toDomain()
	return &user, nil
}

// Ping verifies the backend answers at all. The backend exposes no
// dedicated health endpoint, so the cheapest real resource stands in.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/chamados", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("help-desk backend unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFound("resource", map[string]any{"path": path})
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewUpstreamError(upstreamMessage(resp), nil)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewUpstreamError("help-desk backend returned malformed payload", err)
	}
	return nil
}

// upstreamMessage pulls the backend's error message out of a failed
// response when one is decodable; otherwise a generic line with the status.
func upstreamMessage(resp *http.Response) string {
	var parsed wireErrorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return fmt.Sprintf("help-desk backend request failed with status %d", resp.StatusCode)
}

func incidentsToDomain(wires []wireIncident) []domain.Incident {
	incidents := make([]domain.Incident, 0, len(wires))
	for _, w := range wires {
		incidents = append(incidents, w.toDomain())
	}
	return incidents
}
