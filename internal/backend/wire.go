package backend

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/fixit-suporte/fixit-gateway/internal/domain"
)

// flexID tolerates the backend's habit of returning ids as JSON numbers in
// some payloads (comment authors, user refs) and strings in others. It
// always marshals back as a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func (f flexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseWireTime parses the backend's timestamp strings; malformed or
// missing values come back zero rather than failing the whole payload.
func parseWireTime(raw string) time.Time {
	for _, layout := range wireTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func parseWireTimePtr(raw string) *time.Time {
	ts := parseWireTime(raw)
	if ts.IsZero() {
		return nil
	}
	return &ts
}

type wireUserRef struct {
	ID         flexID `json:"id"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

type wireTechRef struct {
	ID   flexID `json:"id"`
	Name string `json:"name,omitempty"`
}

type wireCommentAuthor struct {
	ID         flexID `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
	Telephone  string `json:"telephone,omitempty"`
	Role       string `json:"role,omitempty"`
}

type wireComment struct {
	ID             flexID            `json:"id"`
	Mensagem       string            `json:"mensagem"`
	DataComentario string            `json:"dataComentario,omitempty"`
	Autor          wireCommentAuthor `json:"autor"`
}

type wireIncident struct {
	ID              flexID        `json:"id"`
	Codigo          string        `json:"codigo,omitempty"`
	Titulo          string        `json:"titulo"`
	Descricao       string        `json:"descricao"`
	Departamento    string        `json:"departamento,omitempty"`
	Status          string        `json:"status"`
	Prioridade      string        `json:"prioridade"`
	DataCriacao     string        `json:"dataCriacao,omitempty"`
	DataAtualizacao string        `json:"dataAtualizacao,omitempty"`
	DataFechamento  string        `json:"dataFechamento,omitempty"`
	Comentarios     []wireComment `json:"comentarios,omitempty"`
	Usuario         *wireUserRef  `json:"usuario,omitempty"`
	Tecnico         *wireTechRef  `json:"tecnico,omitempty"`
}

type wireUser struct {
	ID         flexID `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Telephone  string `json:"telephone,omitempty"`
	Department string `json:"department,omitempty"`
	Password   string `json:"password,omitempty"`
	Role       string `json:"role,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

type wireCreateIncident struct {
	Titulo       string      `json:"titulo"`
	Descricao    string      `json:"descricao"`
	Departamento string      `json:"departamento,omitempty"`
	Prioridade   string      `json:"prioridade"`
	Usuario      wireUserRef `json:"usuario"`
}

type wireUpdateIncident struct {
	Status          string       `json:"status,omitempty"`
	Tecnico         *wireTechRef `json:"tecnico,omitempty"`
	DataAtualizacao string       `json:"dataAtualizacao,omitempty"`
}

type wireAddComment struct {
	Mensagem string `json:"mensagem"`
	AutorID  flexID `json:"autorId"`
}

type wireErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (w wireIncident) toDomain() domain.Incident {
	inc := domain.Incident{
		ID:          string(w.ID),
		Code:        w.Codigo,
		Title:       w.Titulo,
		Description: w.Descricao,
		Department:  w.Departamento,
		Status:      domain.NormalizeStatus(w.Status),
		Priority:    domain.NormalizePriority(w.Prioridade),
		CreatedAt:   parseWireTime(w.DataCriacao),
		UpdatedAt:   parseWireTimePtr(w.DataAtualizacao),
		ClosedAt:    parseWireTimePtr(w.DataFechamento),
		Comments:    make([]domain.Comment, 0, len(w.Comentarios)),
	}
	if w.Usuario != nil && w.Usuario.ID != "" {
		inc.Creator = &domain.CreatorRef{
			ID:         string(w.Usuario.ID),
			Name:       w.Usuario.Name,
			Department: w.Usuario.Department,
		}
	}
	if w.Tecnico != nil && w.Tecnico.ID != "" {
		inc.Technician = &domain.TechnicianRef{
			ID:   string(w.Tecnico.ID),
			Name: w.Tecnico.Name,
		}
	}
	for _, c := range w.Comentarios {
		inc.Comments = append(inc.Comments, c.toDomain())
	}
	return inc
}

func (w wireComment) toDomain() domain.Comment {
	return domain.Comment{
		ID:        string(w.ID),
		Message:   w.Mensagem,
		CreatedAt: parseWireTime(w.DataComentario),
		Author: domain.CommentAuthor{
			ID:         string(w.Autor.ID),
			Name:       w.Autor.Name,
			Email:      w.Autor.Email,
			Department: w.Autor.Department,
			Telephone:  w.Autor.Telephone,
			Role:       w.Autor.Role,
		},
	}
}

func (w wireUser) toDomain() domain.User {
	return domain.User{
		ID:           string(w.ID),
		Name:         w.Name,
		Email:        w.Email,
		Telephone:    w.Telephone,
		Department:   w.Department,
		Role:         domain.ParseRole(w.Role),
		PasswordHash: w.Password,
		CreatedAt:    parseWireTime(w.CreatedAt),
	}
}

func userToWire(u domain.User) wireUser {
	created := ""
	if !u.CreatedAt.IsZero() {
		created = u.CreatedAt.Format(time.RFC3339)
	}
	return wireUser{
		ID:         flexID(u.ID),
		Name:       u.Name,
		Email:      u.Email,
		Telephone:  u.Telephone,
		Department: u.Department,
		Password:   u.PasswordHash,
		Role:       string(u.Role),
		CreatedAt:  created,
	}
}
