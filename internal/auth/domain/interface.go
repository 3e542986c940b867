package domain

//go:generate mockgen -destination=../../mocks/mock_user_repository.go -package=mocks github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain UserRepository
//go:generate mockgen -destination=../../mocks/mock_refresh_token_repository.go -package=mocks github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain RefreshTokenRepository
//go:generate mockgen -destination=../../mocks/mock_event_publisher.go -package=mocks github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain EventPublisher

import "context"

// UserRepository owns user accounts. Username and email are unique at the store level.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// RefreshTokenRepository keeps at most one refresh token per user.
type RefreshTokenRepository interface {
	Upsert(ctx context.Context, userID, token string) error
	FindExact(ctx context.Context, userID, token string) (bool, error)
	DeleteByToken(ctx context.Context, token string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event AuthEvent) error
}
