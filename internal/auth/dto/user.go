package dto

import "github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain"

// UserOutput is the public view of a user. It never carries the password hash.
type UserOutput struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserOutput(u *domain.User) *UserOutput {
	return &UserOutput{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}
}

// AuthResult is what the session operations hand back to the transport layer.
type AuthResult struct {
	User   *UserOutput
	Tokens domain.TokenPair
}

type AuthResponse struct {
	User *UserOutput `json:"user"`
	Auth bool        `json:"auth"`
}
