package service_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"go.uber.org/zap"

	"github.com/fixit-suporte/fixit-gateway/internal/backend"
	"github.com/fixit-suporte/fixit-gateway/internal/directory"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	"github.com/fixit-suporte/fixit-gateway/internal/events"
	"github.com/fixit-suporte/fixit-gateway/internal/service"
	apperrors "github.com/fixit-suporte/fixit-gateway/pkg/util"
)

type fakeIncidentAPI struct {
	mu        sync.Mutex
	incidents map[string]domain.Incident
	nextID    int
}

func newFakeIncidentAPI() *fakeIncidentAPI {
	return &fakeIncidentAPI{incidents: make(map[string]domain.Incident)}
}

func (f *fakeIncidentAPI) seed(inc domain.Incident) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incidents[inc.ID] = inc
}

func (f *fakeIncidentAPI) ListIncidents(_ context.Context) ([]domain.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Incident, 0, len(f.incidents))
	for _, inc := range f.incidents {
		out = append(out, inc)
	}
	return out, nil
}

func (f *fakeIncidentAPI) GetIncident(_ context.Context, id string) (*domain.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return nil, apperrors.NewNotFound("resource", nil)
	}
	copied := inc
	return &copied, nil
}

func (f *fakeIncidentAPI) CreateIncident(_ context.Context, input backend.CreateIncidentInput) (*domain.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := strconv.Itoa(f.nextID)
	inc := domain.Incident{
		ID:          "inc-" + n,
		Code:        "CH-000" + n,
		Title:       input.Title,
		Description: input.Description,
		Department:  input.Department,
		Status:      domain.StatusOpen,
		Priority:    input.Priority,
		Creator:     &domain.CreatorRef{ID: input.CreatorID},
	}
	f.incidents[inc.ID] = inc
	return &inc, nil
}

func (f *fakeIncidentAPI) UpdateIncident(_ context.Context, id string, patch backend.IncidentPatch) (*domain.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return nil, apperrors.NewNotFound("resource", nil)
	}
	if patch.Status != nil {
		inc.Status = *patch.Status
	}
	if patch.Technician != nil {
		tech := *patch.Technician
		inc.Technician = &tech
	}
	f.incidents[id] = inc
	copied := inc
	return &copied, nil
}

func (f *fakeIncidentAPI) DeleteIncident(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.incidents[id]; !ok {
		return apperrors.NewNotFound("resource", nil)
	}
	delete(f.incidents, id)
	return nil
}

func (f *fakeIncidentAPI) AddComment(_ context.Context, id, message, authorID string) (*domain.Incident, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inc, ok := f.incidents[id]
	if !ok {
		return nil, apperrors.NewNotFound("resource", nil)
	}
	inc.Comments = append(inc.Comments, domain.Comment{Message: message, Author: domain.CommentAuthor{ID: authorID}})
	f.incidents[id] = inc
	copied := inc
	return &copied, nil
}

func (f *fakeIncidentAPI) SearchIncidents(_ context.Context, _ string) ([]domain.Incident, error) {
	return f.ListIncidents(context.Background())
}

func (f *fakeIncidentAPI) FilterIncidents(_ context.Context, _ backend.FilterCriteria) ([]domain.Incident, error) {
	return f.ListIncidents(context.Background())
}

type fakeUserAPI struct {
	users []domain.User
}

func (f *fakeUserAPI) ListUsers(_ context.Context) ([]domain.User, error) {
	return f.users, nil
}

func (f *fakeUserAPI) RegisterUser(_ context.Context, user domain.User) (*domain.User, error) {
	user.ID = "remote-" + user.Email
	f.users = append(f.users, user)
	return &user, nil
}

func (f *fakeUserAPI) LoginUser(_ context.Context, email, password string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.NewUnauthorized("invalid email or password")
}

type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *capturingDispatcher) captured() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.events...)
}

var (
	ana = &domain.User{ID: "user-ana", Name: "Ana", Email: "ana@empresa.com", Role: domain.RoleUser, Department: "marketing"}

	bruno = &domain.User{ID: "tech-bruno", Name: "Bruno", Email: "bruno@fixit.com", Role: domain.RoleTechnician, Department: "suporte"}

	otherTech = &domain.User{ID: "tech-carla", Name: "Carla", Email: "carla@fixit.com", Role: domain.RoleTechnician, Department: "suporte"}

	admin = &domain.User{ID: "admin-1", Name: "Admin", Email: "admin@fixit.com", Role: domain.RoleAdmin, Department: "ti"}
)

func newIncidentService(t *testing.T, api *fakeIncidentAPI, techs ...domain.User) (*service.IncidentService, *capturingDispatcher) {
	t.Helper()
	dispatcher := &capturingDispatcher{}
	dir := directory.New(directory.NewMemoryStore(), &fakeUserAPI{users: techs}, zap.NewNop(), 4)
	svc := service.NewIncidentService(service.IncidentDependencies{
		Incidents:  api,
		Directory:  dir,
		Dispatcher: dispatcher,
		Logger:     zap.NewNop(),
	})
	return svc, dispatcher
}

func TestCreateFilesIncidentAndPublishes(t *testing.T) {
	api := newFakeIncidentAPI()
	svc, dispatcher := newIncidentService(t, api)

	created, err := svc.Create(context.Background(), ana, service.CreateIncidentInput{
		Title:       "Impressora parou",
		Description: "Sem resposta desde ontem",
		Priority:    "alta",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, created.Status).Equal(domain.StatusOpen)
	gt.Value(t, created.Priority).Equal(domain.PriorityHigh)
	gt.Value(t, created.Department).Equal("marketing")
	gt.Value(t, created.Creator.ID).Equal(ana.ID)

	captured := dispatcher.captured()
	gt.Array(t, captured).Length(1)
	gt.Value(t, captured[0].Type).Equal(events.EventIncidentCreated)
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	svc, _ := newIncidentService(t, newFakeIncidentAPI())

	_, err := svc.Create(context.Background(), ana, service.CreateIncidentInput{
		Title:       "   ",
		Description: "algo",
	})
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("VALIDATION_FAILED")
}

func TestClaimTakesUnassignedIncident(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{ID: "inc-1", Status: domain.StatusOpen, Creator: &domain.CreatorRef{ID: ana.ID}})
	svc, dispatcher := newIncidentService(t, api)

	updated, err := svc.Claim(context.Background(), bruno, "inc-1")
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Status).Equal(domain.StatusInProgress)
	gt.Value(t, updated.Technician).NotNil().Required()
	gt.Value(t, updated.Technician.ID).Equal(bruno.ID)

	captured := dispatcher.captured()
	gt.Array(t, captured).Length(1)
	payload := captured[0].Payload.(events.IncidentAssignedPayload)
	gt.Bool(t, payload.SelfAssigned).True()
}

func TestClaimRejectedWhenAlreadyAssigned(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{
		ID:         "inc-1",
		Status:     domain.StatusInProgress,
		Creator:    &domain.CreatorRef{ID: ana.ID},
		Technician: &domain.TechnicianRef{ID: bruno.ID, Name: bruno.Name},
	})
	svc, _ := newIncidentService(t, api)

	_, err := svc.Claim(context.Background(), otherTech, "inc-1")
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("CONFLICT")
}

func TestAdminReassignsHeldIncident(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{
		ID:         "inc-1",
		Status:     domain.StatusInProgress,
		Creator:    &domain.CreatorRef{ID: ana.ID},
		Technician: &domain.TechnicianRef{ID: bruno.ID, Name: bruno.Name},
	})
	svc, _ := newIncidentService(t, api, *otherTech)

	updated, err := svc.Assign(context.Background(), admin, "inc-1", otherTech.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Technician.ID).Equal(otherTech.ID)
}

func TestAssignUnknownTechnician(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{ID: "inc-1", Status: domain.StatusOpen, Creator: &domain.CreatorRef{ID: ana.ID}})
	svc, _ := newIncidentService(t, api)

	_, err := svc.Assign(context.Background(), admin, "inc-1", "ghost")
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("NOT_FOUND")
}

func TestSolveByAssignedTechnician(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{
		ID:         "inc-1",
		Status:     domain.StatusInProgress,
		Creator:    &domain.CreatorRef{ID: ana.ID},
		Technician: &domain.TechnicianRef{ID: bruno.ID, Name: bruno.Name},
	})
	svc, dispatcher := newIncidentService(t, api)

	updated, err := svc.Solve(context.Background(), bruno, "inc-1")
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Status).Equal(domain.StatusResolved)

	captured := dispatcher.captured()
	gt.Array(t, captured).Length(1)
	gt.Value(t, captured[0].Type).Equal(events.EventIncidentResolved)
}

func TestSolveRejectedForUnassignedTechnician(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{
		ID:         "inc-1",
		Status:     domain.StatusInProgress,
		Creator:    &domain.CreatorRef{ID: ana.ID},
		Technician: &domain.TechnicianRef{ID: bruno.ID, Name: bruno.Name},
	})
	svc, _ := newIncidentService(t, api)

	_, err := svc.Solve(context.Background(), otherTech, "inc-1")
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("FORBIDDEN")
}

func TestDeleteOnlyByCreator(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{ID: "inc-1", Status: domain.StatusOpen, Creator: &domain.CreatorRef{ID: ana.ID}})
	svc, _ := newIncidentService(t, api)

	err := svc.Delete(context.Background(), bruno, "inc-1")
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("FORBIDDEN")

	gt.NoError(t, svc.Delete(context.Background(), ana, "inc-1")).Required()

	_, err = api.GetIncident(context.Background(), "inc-1")
	gt.Error(t, err)
}

func TestCommentClosedUntilAssignment(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{ID: "inc-1", Status: domain.StatusOpen, Creator: &domain.CreatorRef{ID: ana.ID}})
	svc, _ := newIncidentService(t, api)

	_, err := svc.Comment(context.Background(), ana, "inc-1", "alguém aí?")
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("FORBIDDEN")

	_, err = svc.Claim(context.Background(), bruno, "inc-1")
	gt.NoError(t, err).Required()

	updated, err := svc.Comment(context.Background(), ana, "inc-1", "alguém aí?")
	gt.NoError(t, err).Required()
	gt.Array(t, updated.Comments).Length(1)
	gt.Value(t, updated.Comments[0].Message).Equal("alguém aí?")
}

func TestGetReportsPermissions(t *testing.T) {
	api := newFakeIncidentAPI()
	api.seed(domain.Incident{
		ID:         "inc-1",
		Status:     domain.StatusInProgress,
		Creator:    &domain.CreatorRef{ID: ana.ID},
		Technician: &domain.TechnicianRef{ID: bruno.ID, Name: bruno.Name},
	})
	svc, _ := newIncidentService(t, api)

	_, perms, err := svc.Get(context.Background(), ana, "inc-1")
	gt.NoError(t, err).Required()
	gt.Bool(t, perms.CanComment).True()
	gt.Bool(t, perms.CanSolve).False()
	gt.Bool(t, perms.IsOwner).True()

	_, perms, err = svc.Get(context.Background(), bruno, "inc-1")
	gt.NoError(t, err).Required()
	gt.Bool(t, perms.CanSolve).True()
	gt.Bool(t, perms.CanAssign).False()
}

func domainCode(err error) string {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
