package domain

import "time"

type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string `json:"-"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthEventType string

const (
	EventUserRegistered AuthEventType = "user_registered"
	EventUserLoggedIn   AuthEventType = "user_logged_in"
	EventUserLoggedOut  AuthEventType = "user_logged_out"
	EventTokenRefreshed AuthEventType = "token_refreshed"
)

type AuthEvent struct {
	Type       AuthEventType `json:"type"`
	UserID     string        `json:"user_id,omitempty"`
	Username   string        `json:"username,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
