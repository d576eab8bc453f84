package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	return NewService(memory.NewUserRepository(store), jwtSvc), store
}

func registerReq(email string, role model.Role) *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
		FullName: "Test User",
		Role:     role,
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("patient gets a token and no profile", func(t *testing.T) {
		svc, store := newTestService(t)
		resp, err := svc.Register(ctx, registerReq("pat@example.com", model.RolePatient))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "bearer", resp.TokenType)

		user, err := memory.NewUserRepository(store).GetByEmail(ctx, "pat@example.com")
		require.NoError(t, err)
		assert.Equal(t, model.RolePatient, user.Role)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

		_, err = memory.NewDoctorRepository(store).GetByUserID(ctx, user.ID)
		assert.Error(t, err)
	})

	t.Run("doctor gets a profile with the given specialization", func(t *testing.T) {
		svc, store := newTestService(t)
		req := registerReq("doc@example.com", model.RoleDoctor)
		req.Specialization = "Cardiology"
		req.Bio = "20 years of practice"
		_, err := svc.Register(ctx, req)
		require.NoError(t, err)

		user, err := memory.NewUserRepository(store).GetByEmail(ctx, "doc@example.com")
		require.NoError(t, err)
		profile, err := memory.NewDoctorRepository(store).GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cardiology", profile.Specialization)
		require.NotNil(t, profile.Bio)
		assert.Equal(t, "20 years of practice", *profile.Bio)
	})

	t.Run("doctor without specialization defaults to General", func(t *testing.T) {
		svc, store := newTestService(t)
		_, err := svc.Register(ctx, registerReq("doc@example.com", model.RoleDoctor))
		require.NoError(t, err)

		user, err := memory.NewUserRepository(store).GetByEmail(ctx, "doc@example.com")
		require.NoError(t, err)
		profile, err := memory.NewDoctorRepository(store).GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "General", profile.Specialization)
		assert.Nil(t, profile.Bio)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.Register(ctx, registerReq("dup@example.com", model.RolePatient))
		require.NoError(t, err)

		_, err = svc.Register(ctx, registerReq("dup@example.com", model.RoleDoctor))
		assert.True(t, apperrors.IsCode(err, apperrors.ErrEmailTaken))
	})

	t.Run("password longer than 72 bytes is rejected", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := registerReq("long@example.com", model.RolePatient)
		req.Password = strings.Repeat("x", 73)
		_, err := svc.Register(ctx, req)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrPasswordTooLong))
	})

	t.Run("password of exactly 72 bytes is accepted", func(t *testing.T) {
		svc, _ := newTestService(t)
		req := registerReq("edge@example.com", model.RolePatient)
		req.Password = strings.Repeat("x", 72)
		_, err := svc.Register(ctx, req)
		assert.NoError(t, err)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_, err := svc.Register(ctx, registerReq("pat@example.com", model.RolePatient))
	require.NoError(t, err)

	t.Run("valid credentials yield a working token", func(t *testing.T) {
		resp, err := svc.Login(ctx, &model.LoginRequest{Email: "pat@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(ctx, resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "pat@example.com", claims.Email)
		assert.Equal(t, model.RolePatient, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "pat@example.com", Password: "wrong"})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidCredentials))
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &model.LoginRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidCredentials))
	})
}

func TestValidateToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.ValidateToken(ctx, "not-a-token")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnauthenticated))
}
