package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"go.uber.org/zap"

	"github.com/fixit-suporte/fixit-gateway/internal/auth"
	"github.com/fixit-suporte/fixit-gateway/internal/directory"
	"github.com/fixit-suporte/fixit-gateway/internal/domain"
	"github.com/fixit-suporte/fixit-gateway/internal/service"
	"github.com/fixit-suporte/fixit-gateway/internal/session"
)

func newAuthService(t *testing.T, backendUsers ...domain.User) (*service.AuthService, *auth.TokenManager, session.Store) {
	t.Helper()
	ctx := context.Background()
	api := &fakeUserAPI{users: backendUsers}
	dir := directory.New(directory.NewMemoryStore(), api, zap.NewNop(), 4)
	gt.NoError(t, dir.Seed(ctx)).Required()

	sessions := session.NewMemoryStore(time.Hour)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := service.NewAuthService(service.AuthDependencies{
		Directory: dir,
		Users:     api,
		Sessions:  sessions,
		Tokens:    tokens,
		Logger:    zap.NewNop(),
	})
	return svc, tokens, sessions
}

func TestLoginSeededAccount(t *testing.T) {
	svc, tokens, sessions := newAuthService(t)

	sess, err := svc.Login(context.Background(), "admin@fixit.com", "admin123")
	gt.NoError(t, err).Required()
	gt.Value(t, sess.Actor.Role).Equal(domain.RoleAdmin)
	gt.Value(t, sess.Actor.PasswordHash).Equal("")
	gt.Bool(t, sess.ExpiresAt.After(time.Now())).True()

	claims, err := tokens.ParseToken(sess.Token)
	gt.NoError(t, err).Required()

	actor, err := sessions.Get(context.Background(), claims.SessionID)
	gt.NoError(t, err).Required()
	gt.Value(t, actor).NotNil().Required()
	gt.Value(t, actor.ID).Equal("admin-1")
}

func TestLoginFallsThroughToBackend(t *testing.T) {
	remote := domain.User{ID: "remote-9", Name: "Paula", Email: "paula@empresa.com", Role: domain.RoleUser}
	svc, _, _ := newAuthService(t, remote)

	sess, err := svc.Login(context.Background(), "paula@empresa.com", "whatever")
	gt.NoError(t, err).Required()
	gt.Value(t, sess.Actor.ID).Equal("remote-9")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "admin@fixit.com", "nope")
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("UNAUTHORIZED")
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "admin@fixit.com", "")
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("VALIDATION_FAILED")
}

func TestRegisterOpensSession(t *testing.T) {
	svc, tokens, _ := newAuthService(t)

	sess, err := svc.Register(context.Background(), service.RegisterInput{
		Name:     "Novo Usuário",
		Email:    "novo@empresa.com",
		Password: "segredo123",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, sess.Actor.Role).Equal(domain.RoleUser)

	_, err = tokens.ParseToken(sess.Token)
	gt.NoError(t, err)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), service.RegisterInput{Email: "x@y.com"})
	gt.Error(t, err)
	gt.Value(t, domainCode(err)).Equal("VALIDATION_FAILED")
}

func TestLogoutDropsSession(t *testing.T) {
	svc, tokens, sessions := newAuthService(t)

	sess, err := svc.Login(context.Background(), "user@fixit.com", "user123")
	gt.NoError(t, err).Required()
	claims, err := tokens.ParseToken(sess.Token)
	gt.NoError(t, err).Required()

	gt.NoError(t, svc.Logout(context.Background(), claims.SessionID)).Required()

	actor, err := sessions.Get(context.Background(), claims.SessionID)
	gt.NoError(t, err)
	gt.Value(t, actor).Nil()
}

func TestUpdateProfilePersistsLocalAccount(t *testing.T) {
	svc, tokens, sessions := newAuthService(t)

	sess, err := svc.Login(context.Background(), "user@fixit.com", "user123")
	gt.NoError(t, err).Required()
	claims, err := tokens.ParseToken(sess.Token)
	gt.NoError(t, err).Required()

	actor, err := sessions.Get(context.Background(), claims.SessionID)
	gt.NoError(t, err).Required()

	updated, err := svc.UpdateProfile(context.Background(), claims.SessionID, actor, service.ProfileUpdate{
		Name:      "Usuário Renomeado",
		Telephone: "(11) 55555-5555",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Name).Equal("Usuário Renomeado")
	gt.Value(t, updated.Role).Equal(domain.RoleUser)

	// A fresh login sees the persisted change.
	again, err := svc.Login(context.Background(), "user@fixit.com", "user123")
	gt.NoError(t, err).Required()
	gt.Value(t, again.Actor.Name).Equal("Usuário Renomeado")
}

func TestUpdateProfileBackendAccountStaysInSession(t *testing.T) {
	remote := domain.User{ID: "remote-9", Name: "Paula", Email: "paula@empresa.com", Role: domain.RoleUser}
	svc, tokens, sessions := newAuthService(t, remote)

	sess, err := svc.Login(context.Background(), "paula@empresa.com", "whatever")
	gt.NoError(t, err).Required()
	claims, err := tokens.ParseToken(sess.Token)
	gt.NoError(t, err).Required()

	actor, err := sessions.Get(context.Background(), claims.SessionID)
	gt.NoError(t, err).Required()
	gt.Bool(t, actor.Local).False()

	updated, err := svc.UpdateProfile(context.Background(), claims.SessionID, actor, service.ProfileUpdate{Name: "Paula Silva"})
	gt.NoError(t, err).Required()
	gt.Value(t, updated.Name).Equal("Paula Silva")

	stored, err := sessions.Get(context.Background(), claims.SessionID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Name).Equal("Paula Silva")
}
