package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/config"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

func newTestClient(t *testing.T, handler http.Handler) (*backend.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, TimeoutSeconds: 5})
	return client, srv
}

func TestCreateIncidentMapsPriorityToWire(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/chamados")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "42",
			"codigo":     "CH-0042",
			"titulo":     "VPN down",
			"descricao":  "cannot connect",
			"status":     "aberto",
			"prioridade": "ALTA",
			"usuario":    map[string]any{"id": 7, "name": "Ana"},
		})
	}))

	inc, err := client.CreateIncident(context.Background(), backend.CreateIncidentInput{
		Title:       "VPN down",
		Description: "cannot connect",
		Department:  "ti",
		Priority:    domain.PriorityHigh,
		CreatorID:   "7",
	})
	gt.NoError(t, err).Required()

	gt.Value(t, captured["prioridade"]).Equal("ALTA")
	gt.Value(t, captured["titulo"]).Equal("VPN down")

	gt.Value(t, inc.ID).Equal("42")
	gt.Value(t, inc.Code).Equal("CH-0042")
	gt.Value(t, inc.Status).Equal(domain.StatusOpen)
	gt.Value(t, inc.Priority).Equal(domain.PriorityHigh)
	gt.Value(t, inc.Creator.ID).Equal("7")
	gt.Bool(t, inc.Assigned()).False()
}

func TestCreateIncidentUnknownPriorityDefaultsToBaixa(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "1", "status": "aberto", "prioridade": "BAIXA"})
	}))

	_, err := client.CreateIncident(context.Background(), backend.CreateIncidentInput{
		Title: "x", Description: "y", Priority: domain.Priority("unheard-of"), CreatorID: "1",
	})
	gt.NoError(t, err)
	gt.Value(t, captured["prioridade"]).Equal("BAIXA")
}

func TestListIncidentsNormalizesLegacyVocabulary(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "titulo": "a", "status": "in_progress", "prioridade": "Crítica"},
			{"id": "2", "titulo": "b", "status": "ABERTO", "prioridade": "media"},
			{"id": "3", "titulo": "c", "status": "closed", "prioridade": "ALTA",
				"tecnico": map[string]any{"id": 9, "name": "Bruno"}},
		})
	}))

	incidents, err := client.ListIncidents(context.Background())
	gt.NoError(t, err).Required()
	gt.Array(t, incidents).Length(3)

	gt.Value(t, incidents[0].ID).Equal("1")
	gt.Value(t, incidents[0].Status).Equal(domain.StatusInProgress)
	gt.Value(t, incidents[0].Priority).Equal(domain.PriorityCritical)

	gt.Value(t, incidents[1].Status).Equal(domain.StatusOpen)
	gt.Value(t, incidents[1].Priority).Equal(domain.PriorityMedium)

	gt.Value(t, incidents[2].Status).Equal(domain.StatusResolved)
	gt.Bool(t, incidents[2].Assigned()).True()
	gt.Value(t, incidents[2].Technician.ID).Equal("9")
}

func TestUpdateIncidentSendsCanonicalStatus(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPut)
		gt.Value(t, r.URL.Path).Equal("/chamados/42")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "42", "status": "em_andamento", "prioridade": "ALTA",
			"tecnico": map[string]any{"id": "t-1", "name": "Bruno"},
		})
	}))

	status := domain.StatusInProgress
	inc, err := client.UpdateIncident(context.Background(), "42", backend.IncidentPatch{
		Status:     &status,
		Technician: &domain.TechnicianRef{ID: "t-1", Name: "Bruno"},
	})
	gt.NoError(t, err).Required()

	gt.Value(t, captured["status"]).Equal("em_andamento")
	tecnico := captured["tecnico"].(map[string]any)
	gt.Value(t, tecnico["id"]).Equal("t-1")
	gt.Value(t, inc.Technician.Name).Equal("Bruno")
}

func TestAddCommentPostsToCommentEndpoint(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/chamados/7/comentarios")
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "7", "status": "em_andamento", "prioridade": "MEDIA",
			"comentarios": []map[string]any{
				{"id": 1, "mensagem": "on it", "autor": map[string]any{"id": 9, "name": "Bruno", "role": "technician"}},
			},
		})
	}))

	inc, err := client.AddComment(context.Background(), "7", "on it", "9")
	gt.NoError(t, err).Required()
	gt.Value(t, captured["mensagem"]).Equal("on it")
	gt.Value(t, captured["autorId"]).Equal("9")
	gt.Array(t, inc.Comments).Length(1)
	gt.Value(t, inc.Comments[0].Author.Name).Equal("Bruno")
}

func TestFilterIncidentsTranslatesQueryVocabulary(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/chamados/filtrar")
		gt.Value(t, r.URL.Query().Get("prioridade")).Equal("ALTA")
		gt.Value(t, r.URL.Query().Get("status")).Equal("em_andamento")
		gt.Value(t, r.URL.Query().Get("departamento")).Equal("ti")
		_ = json.NewEncoder(w).Encode([]map[string]any{})
	}))

	incidents, err := client.FilterIncidents(context.Background(), backend.FilterCriteria{
		Status:     "in_progress",
		Priority:   "high",
		Department: "ti",
	})
	gt.NoError(t, err)
	gt.Array(t, incidents).Length(0)
}

func TestGetIncidentNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetIncident(context.Background(), "missing")
	gt.Error(t, err)
	var domainErr *apperrors.DomainError
	gt.Bool(t, errors.As(err, &domainErr)).True()
	gt.Value(t, domainErr.Code).Equal("NOT_FOUND")
	gt.Value(t, domainErr.HTTPStatus).Equal(http.StatusNotFound)
}

func TestUpstreamErrorCarriesBackendMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "banco indisponível"})
	}))

	_, err := client.ListIncidents(context.Background())
	gt.Error(t, err)
	var domainErr *apperrors.DomainError
	gt.Bool(t, errors.As(err, &domainErr)).True()
	gt.Value(t, domainErr.Code).Equal("UPSTREAM_FAILED")
	gt.Value(t, domainErr.Message).Equal("banco indisponível")
}

func TestLoginUser(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/usuarios/login")
		var body map[string]string
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] != "ana@empresa.com" || body["password"] != "segredo" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 12, "name": "Ana", "email": "ana@empresa.com", "role": "user",
		})
	}))

	user, err := client.LoginUser(context.Background(), "ana@empresa.com", "segredo")
	gt.NoError(t, err).Required()
	gt.Value(t, user.ID).Equal("12")
	gt.Value(t, user.Role).Equal(domain.RoleUser)

	_, err = client.LoginUser(context.Background(), "ana@empresa.com", "errada")
	gt.Error(t, err)
}
