package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/store"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned on a failed login. It deliberately
// does not distinguish an unknown email from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidSession is returned when a session token is missing,
// expired, or unknown
var ErrInvalidSession = errors.New("invalid session")

// userStore is the persistence surface auth needs
type userStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// sessionStore maps opaque tokens to user ids with a TTL
type sessionStore interface {
	SetSession(ctx context.Context, token string, userID int64, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (int64, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service implements registration, login, and session resolution. The
// resolved principal is passed explicitly into domain services; nothing
// downstream reads ambient request state.
type Service struct {
	store      userStore
	sessions   sessionStore
	sessionTTL time.Duration
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates a new auth service
func NewService(store userStore, sessions sessionStore, sessionTTL time.Duration, bcryptCost int) *Service {
	return &Service{
		store:      store,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		logger:     util.GetLogger(),
	}
}

// Register creates a user with the default role and returns it
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		Role:         models.RoleUser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and mints an opaque session token
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.New().String()
	if err := s.sessions.SetSession(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	util.SessionsIssuedTotal.Inc()
	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return token, user, nil
}

// Logout deletes the session for the token
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, token)
}

// Resolve maps a session token to its user
func (s *Service) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	userID, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return user, nil
}
