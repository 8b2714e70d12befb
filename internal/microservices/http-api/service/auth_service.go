package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"bookhub/internal/apperr"
	"bookhub/internal/middleware/auth"
	"bookhub/internal/microservices/http-api/dto"
	"bookhub/internal/microservices/http-api/models"
	"bookhub/internal/microservices/http-api/repository"
	"bookhub/internal/session"
	"bookhub/internal/validation"
)

type AuthService interface {
	Register(ctx context.Context, in dto.RegisterRequest) (*models.User, error)
	// Login checks the credentials and returns the user with a signed bearer token.
	Login(ctx context.Context, in dto.LoginRequest) (*models.User, string, error)
	SessionFor(user *models.User) session.Record
	// SeedAdmin creates the bootstrap administrator unless a user with that email exists.
	SeedAdmin(ctx context.Context, login, email, password string) (*models.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	validate *validation.Validator
	log      *logrus.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	v *validation.Validator,
	log *logrus.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		validate: v,
		log:      log,
	}
}

// Register: registers a new reader. The role is never taken from the request.
func (s *authService) Register(ctx context.Context, in dto.RegisterRequest) (*models.User, error) {
	in.Login = strings.TrimSpace(in.Login)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByEmailOrLogin(ctx, in.Email, in.Login)
	if err != nil {
		return nil, logFault(s.log, err)
	}
	if taken {
		return nil, apperr.Conflict("user", "user with this email or login already exists")
	}

	return s.create(ctx, in, models.RoleReader)
}

func (s *authService) create(ctx context.Context, in dto.RegisterRequest, role string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Login:        in.Login,
		Email:        in.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Age:          in.Age,
		Gender:       in.Gender,
	}
	// a concurrent registration with the same keys surfaces here as Conflict
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, logFault(s.log, err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "login": user.Login, "role": role}).Info("user registered")
	return user, nil
}

func (s *authService) Login(ctx context.Context, in dto.LoginRequest) (*models.User, string, error) {
	if err := s.validate.Validate(in); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, "", logFault(s.log, err)
		}
		// User not found: dummy compare so both paths take the same time
		auth.BurnPasswordCheck(in.Password)
		return nil, "", apperr.InvalidCredentials()
	}

	if err := auth.VerifyPassword(user.PasswordHash, in.Password); err != nil {
		return nil, "", apperr.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}
	return user, token, nil
}

func (s *authService) SessionFor(user *models.User) session.Record {
	return session.Record{UserID: user.ID, Login: user.Login, Role: user.Role}
}

func (s *authService) SeedAdmin(ctx context.Context, login, email, password string) (*models.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			s.log.WithField("email", email).Warn("bootstrap admin email belongs to a non-admin user")
		}
		return existing, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, logFault(s.log, err)
	}

	in := dto.RegisterRequest{Login: login, Email: email, Password: password}
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}
	return s.create(ctx, in, models.RoleAdmin)
}
