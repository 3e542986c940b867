package service

import (
	"context"
	"errors"
	"time"

	"github.com/AnthoniusHendriyanto/blog-auth-service/config"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/blog-auth-service/internal/errors"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/logging"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/metrics"
	"github.com/google/uuid"
)

const (
	opRegister     = "register"
	opLogin        = "login"
	opLogout       = "logout"
	opRefresh      = "refresh"
	opAuthenticate = "authenticate"
)

// UserService implements the session lifecycle: register, login, logout,
// refresh and the per-request access check.
type UserService struct {
	repo         domain.UserRepository
	sessions     domain.RefreshTokenRepository
	tokenService TokenGenerator
	hasher       *PasswordHasher
	publisher    domain.EventPublisher
	metrics      *metrics.AuthMetrics
	now          func() time.Time
}

type Option func(*UserService)

func WithEventPublisher(p domain.EventPublisher) Option {
	return func(s *UserService) { s.publisher = p }
}

func WithMetrics(m *metrics.AuthMetrics) Option {
	return func(s *UserService) { s.metrics = m }
}

func NewUserService(repo domain.UserRepository, sessions domain.RefreshTokenRepository, tokenService TokenGenerator, cfg *config.Config, opts ...Option) *UserService {
	s := &UserService{
		repo:         repo,
		sessions:     sessions,
		tokenService: tokenService,
		hasher:       NewPasswordHasher(cfg.BcryptCost),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (res *dto.AuthResult, err error) {
	defer s.observe(opRegister, time.Now(), &err)

	if input.Password != input.ConfirmPassword {
		return nil, autherror.ErrPasswordMismatch
	}
	if !CheckPasswordPolicy(input.Password) {
		return nil, autherror.ErrWeakPassword
	}

	// Fast path only; the unique constraints in Create are authoritative.
	emailTaken, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, autherror.Store("check email", err)
	}
	usernameTaken, err := s.repo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, autherror.Store("check username", err)
	}
	if emailTaken {
		return nil, autherror.ErrEmailAlreadyInUse
	}
	if usernameTaken {
		return nil, autherror.ErrUsernameTaken
	}

	hashedPassword, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, autherror.Store("hash password", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, autherror.ErrConflict) {
			return nil, err
		}
		return nil, autherror.Store("create user", err)
	}

	// The account stays even if the session cannot be stored; the caller sees the error.
	res, err = s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventUserRegistered, user)
	return res, nil
}

func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (res *dto.AuthResult, err error) {
	defer s.observe(opLogin, time.Now(), &err)

	user, err := s.repo.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, autherror.Store("get user", err)
	}

	if user == nil {
		// Spend the same bcrypt work as a real comparison so unknown usernames
		// cannot be told apart from wrong passwords by timing.
		s.hasher.CompareDummy(ctx, input.Password)
		return nil, autherror.ErrInvalidCredentials
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, input.Password)
	if err != nil {
		return nil, autherror.Store("compare password", err)
	}
	if !ok {
		return nil, autherror.ErrInvalidCredentials
	}

	res, err = s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventUserLoggedIn, user)
	return res, nil
}

// Logout revokes the refresh token. Unknown or empty tokens are not an error.
func (s *UserService) Logout(ctx context.Context, refreshToken string) (err error) {
	defer s.observe(opLogout, time.Now(), &err)

	if refreshToken == "" {
		return nil
	}

	if err := s.sessions.DeleteByToken(ctx, refreshToken); err != nil {
		return autherror.Store("delete refresh token", err)
	}

	event := domain.AuthEvent{Type: domain.EventUserLoggedOut, OccurredAt: s.now()}
	if userID, verr := s.tokenService.VerifyRefreshToken(refreshToken); verr == nil {
		event.UserID = userID
	}
	s.emit(ctx, event)
	return nil
}

// Refresh rotates the refresh token. Only the most recently issued token of a
// user is accepted, so a rotated-out token fails even before it expires.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (res *dto.AuthResult, err error) {
	defer s.observe(opRefresh, time.Now(), &err)

	if refreshToken == "" {
		return nil, autherror.Unauthorized(autherror.ErrMissingCredentials)
	}

	userID, err := s.tokenService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, autherror.Unauthorized(err)
	}

	match, err := s.sessions.FindExact(ctx, userID, refreshToken)
	if err != nil {
		return nil, autherror.Store("find refresh token", err)
	}
	if !match {
		logging.FromContext(ctx).Warn("refresh_rejected", "user_id", userID, "reason", "token not current")
		return nil, autherror.Unauthorized(autherror.ErrRefreshTokenRevoked)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, autherror.Store("get user", err)
	}
	if user == nil {
		return nil, autherror.ErrUnauthorized
	}

	res, err = s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.EventTokenRefreshed, user)
	return res, nil
}

// Authenticate is the access guard for protected operations. Both cookies must
// be present; only the access token is verified. It never falls back to refresh.
func (s *UserService) Authenticate(ctx context.Context, accessToken, refreshToken string) (user *dto.UserOutput, err error) {
	defer s.observe(opAuthenticate, time.Now(), &err)

	if accessToken == "" || refreshToken == "" {
		return nil, autherror.Unauthorized(autherror.ErrMissingCredentials)
	}

	userID, err := s.tokenService.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, autherror.Unauthorized(err)
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, autherror.Store("get user", err)
	}
	if u == nil {
		return nil, autherror.ErrUnauthorized
	}

	return dto.NewUserOutput(u), nil
}

// startSession issues a new pair and makes its refresh token the only live one for user.
func (s *UserService) startSession(ctx context.Context, user *domain.User) (*dto.AuthResult, error) {
	tokens, err := s.tokenService.GeneratePair(user.ID)
	if err != nil {
		return nil, autherror.Store("generate tokens", err)
	}

	if err := s.sessions.Upsert(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, autherror.Store("store refresh token", err)
	}

	return &dto.AuthResult{
		User:   dto.NewUserOutput(user),
		Tokens: tokens,
	}, nil
}

func (s *UserService) publish(ctx context.Context, eventType domain.AuthEventType, user *domain.User) {
	s.emit(ctx, domain.AuthEvent{
		Type:       eventType,
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: s.now(),
	})
}

func (s *UserService) emit(ctx context.Context, event domain.AuthEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", event.Type, "user_id", event.UserID, "error", err)
	}
}

func (s *UserService) observe(operation string, start time.Time, err *error) {
	s.metrics.Observe(operation, *err, time.Since(start))
}
