package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository"
	"github.com/jwalitptl/booking-api/pkg/auth"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

const (
	bcryptCost = 12

	// bcrypt silently truncates beyond 72 bytes, so longer passwords
	// are rejected outright instead of being hashed.
	maxPasswordBytes = 72

	defaultSpecialization = "General"
)

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
	}
}

// Register creates the user and, for doctors, the profile in the same
// transaction, then issues an access token.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if !req.Role.Valid() {
		return nil, apperrors.BadRequest("invalid role", nil)
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.EmailTaken()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	if len([]byte(req.Password)) > maxPasswordBytes {
		return nil, apperrors.PasswordTooLong()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &model.User{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	if req.Role == model.RoleDoctor {
		specialization := req.Specialization
		if specialization == "" {
			specialization = defaultSpecialization
		}
		profile := &model.DoctorProfile{Specialization: specialization}
		if req.Bio != "" {
			profile.Bio = &req.Bio
		}
		if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
			return nil, apperrors.Internal(err)
		}
	} else {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, apperrors.Internal(err)
		}
	}

	return s.issueToken(user)
}

// Login verifies credentials and issues an access token. Unknown email
// and bad password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.InvalidCredentials()
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.InvalidCredentials()
	}

	return s.issueToken(user)
}

// ValidateToken resolves a bearer token into the caller identity.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.TokenClaims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid token")
	}
	return claims, nil
}

func (s *Service) issueToken(user *model.User) (*model.TokenResponse, error) {
	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to generate token: %w", err))
	}
	return &model.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}
