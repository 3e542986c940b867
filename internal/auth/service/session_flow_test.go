package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AnthoniusHendriyanto/blog-auth-service/config"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/dto"
	redisrepo "github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/repository/redis"
	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/service"
	autherror "github.com/AnthoniusHendriyanto/blog-auth-service/internal/errors"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryUserRepository enforces the same uniqueness rules as the users table.
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return autherror.ErrEmailAlreadyInUse
		}
		if u.Username == user.Username {
			return autherror.ErrUsernameTaken
		}
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			found := *u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	found := *u
	return &found, nil
}

func newFlowService(t *testing.T) (*service.UserService, *memoryUserRepository) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := newMemoryUserRepository()
	tokens := service.NewTokenService("flow-access-secret", "flow-refresh-secret", 30, 60)
	sessions := redisrepo.NewRefreshSessionRepository(rdb, tokens.GetRefreshTokenExpiry())
	cfg := &config.Config{BcryptCost: bcrypt.MinCost}

	return service.NewUserService(users, sessions, tokens, cfg), users
}

func TestSessionLifecycle(t *testing.T) {
	s, users := newFlowService(t)
	ctx := context.Background()

	registered, err := s.Register(ctx, dto.RegisterInput{
		Name:            "Ann",
		Username:        "ann01",
		Email:           "ann@x.com",
		Password:        "Abc12345!",
		ConfirmPassword: "Abc12345!",
	})
	require.NoError(t, err)
	assert.Equal(t, "ann01", registered.User.Username)

	stored, err := users.GetByUsername(ctx, "ann01")
	require.NoError(t, err)
	assert.NotEqual(t, "Abc12345!", stored.PasswordHash)

	// A second registration with the same email changes nothing.
	_, err = s.Register(ctx, dto.RegisterInput{
		Name:            "Bob",
		Username:        "bob01",
		Email:           "ann@x.com",
		Password:        "Abc12345!",
		ConfirmPassword: "Abc12345!",
	})
	assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
	bob, err := users.GetByUsername(ctx, "bob01")
	require.NoError(t, err)
	assert.Nil(t, bob)

	// Registration tokens pass the access guard.
	view, err := s.Authenticate(ctx, registered.Tokens.AccessToken, registered.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, view.ID)

	loggedIn, err := s.Login(ctx, dto.LoginInput{Username: "ann01", Password: "Abc12345!"})
	require.NoError(t, err)
	assert.NotEqual(t, registered.Tokens.RefreshToken, loggedIn.Tokens.RefreshToken)

	// Login replaced the registration session.
	_, err = s.Refresh(ctx, registered.Tokens.RefreshToken)
	assert.ErrorIs(t, err, autherror.ErrUnauthorized)

	refreshed, err := s.Refresh(ctx, loggedIn.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, loggedIn.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	// The rotated-out token is no longer accepted.
	_, err = s.Refresh(ctx, loggedIn.Tokens.RefreshToken)
	assert.ErrorIs(t, err, autherror.ErrUnauthorized)

	require.NoError(t, s.Logout(ctx, refreshed.Tokens.RefreshToken))
	require.NoError(t, s.Logout(ctx, refreshed.Tokens.RefreshToken))

	_, err = s.Refresh(ctx, refreshed.Tokens.RefreshToken)
	assert.ErrorIs(t, err, autherror.ErrUnauthorized)
}

func TestSessionLifecycle_LoginFailures(t *testing.T) {
	s, _ := newFlowService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, dto.RegisterInput{
		Name:            "Ann",
		Username:        "ann01",
		Email:           "ann@x.com",
		Password:        "Abc12345!",
		ConfirmPassword: "Abc12345!",
	})
	require.NoError(t, err)

	_, err = s.Login(ctx, dto.LoginInput{Username: "ann01", Password: "Abc12345?"})
	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)

	_, err = s.Login(ctx, dto.LoginInput{Username: "nobody01", Password: "Abc12345!"})
	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
}

func TestSessionLifecycle_ConcurrentLoginsKeepOneSession(t *testing.T) {
	s, _ := newFlowService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, dto.RegisterInput{
		Name:            "Ann",
		Username:        "ann01",
		Email:           "ann@x.com",
		Password:        "Abc12345!",
		ConfirmPassword: "Abc12345!",
	})
	require.NoError(t, err)

	const logins = 5
	results := make([]*dto.AuthResult, logins)
	var wg sync.WaitGroup
	for i := range logins {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Login(ctx, dto.LoginInput{Username: "ann01", Password: "Abc12345!"})
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	accepted := 0
	for _, res := range results {
		require.NotNil(t, res)
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		if _, err := s.Refresh(ctx, res.Tokens.RefreshToken); err == nil {
			accepted++
		}
		cancel()
	}
	assert.Equal(t, 1, accepted)
}
