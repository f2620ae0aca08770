package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/internal/apperr"
	"github.com/gardenhub/backend/internal/models"
	"github.com/gardenhub/backend/internal/store"
	"github.com/gardenhub/backend/pkg/utils"
)

const invalidCredentials = "invalid username/email or password"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

// RegisterInput is a validated registration request.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Location  string
}

// Session is an issued token with the user it was issued for.
type Session struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Service implements registration, login and identity lookup.
type Service struct {
	store         store.Store
	jwt           *JWTService
	bcryptCost    int
	logger        *zap.Logger
	checkPassword func(plain, hashed string) bool

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates an auth service.
func NewService(s store.Store, jwt *JWTService, bcryptCost int, logger *zap.Logger) *Service {
	return &Service{store: s, jwt: jwt, bcryptCost: bcryptCost, logger: logger, checkPassword: utils.CheckPassword}
}

// dummy returns a hash at the configured cost. Logins for unknown users are checked
// against it so they take as long as real ones.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := utils.HashPassword(uuid.NewString(), s.bcryptCost)
		if err != nil {
			s.logger.Warn("failed to prepare dummy password hash", zap.Error(err))
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Register creates a member account and signs a token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if !usernamePattern.MatchString(in.Username) {
		return nil, apperr.Validation("username must be 3-50 letters, digits or underscores")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "failed to hash password", err)
	}
	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Location:     in.Location,
		Role:         models.RoleMember,
	}
	if err := s.store.Users().Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, apperr.New(apperr.Conflict, "username or email already registered")
		}
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID.String()), zap.String("username", u.Username))
	return s.issue(u)
}

// Login verifies credentials. Unknown users, inactive accounts and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	u, err := s.store.Users().GetByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, store.ErrNotFound) {
		s.checkPassword(password, s.dummy())
		return nil, apperr.New(apperr.InvalidCredentials, invalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !s.checkPassword(password, u.PasswordHash) || !u.IsActive {
		return nil, apperr.New(apperr.InvalidCredentials, invalidCredentials)
	}
	if err := s.store.Users().TouchLogin(ctx, u.ID); err != nil {
		s.logger.Warn("failed to record login", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
	return s.issue(u)
}

// Me returns the current user.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.store.Users().GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Missing("user not found")
	}
	return u, err
}

func (s *Service) issue(u *models.User) (*Session, error) {
	token, err := s.jwt.Generate(u)
	if err != nil {
		return nil, apperr.Wrap(apperr.Unexpected, "failed to generate token", err)
	}
	return &Session{Token: token, User: u.ToPublic()}, nil
}
