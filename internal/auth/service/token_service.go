package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/service TokenGenerator

import (
	"fmt"
	"time"

	"github.com/AnthoniusHendriyanto/blog-auth-service/internal/auth/domain"
	autherror "github.com/AnthoniusHendriyanto/blog-auth-service/internal/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type TokenGenerator interface {
	GeneratePair(userID string) (domain.TokenPair, error)
	VerifyAccessToken(tokenString string) (string, error)
	VerifyRefreshToken(tokenString string) (string, error)
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	now func() time.Time
}

type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"_id"`
	TokenType string `json:"typ"`
}

func NewTokenService(accessSecret, refreshSecret string, accessMinutes, refreshMinutes int) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshMinutes) * time.Minute,
		now:                time.Now,
	}
}

func (ts *TokenService) SignAccessToken(userID string) (string, error) {
	return ts.sign(userID, TokenTypeAccess, ts.AccessTokenSecret, ts.AccessTokenExpiry)
}

func (ts *TokenService) SignRefreshToken(userID string) (string, error) {
	return ts.sign(userID, TokenTypeRefresh, ts.RefreshTokenSecret, ts.RefreshTokenExpiry)
}

// GeneratePair issues a fresh access/refresh pair for userID.
func (ts *TokenService) GeneratePair(userID string) (domain.TokenPair, error) {
	accessToken, err := ts.SignAccessToken(userID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	refreshToken, err := ts.SignRefreshToken(userID)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.RefreshTokenExpiry
}

// VerifyAccessToken parses and validates the given access token string and
// returns the user id it was issued for.
func (ts *TokenService) VerifyAccessToken(tokenString string) (string, error) {
	return ts.verify(tokenString, TokenTypeAccess, ts.AccessTokenSecret)
}

// VerifyRefreshToken is VerifyAccessToken for the refresh class.
func (ts *TokenService) VerifyRefreshToken(tokenString string) (string, error) {
	return ts.verify(tokenString, TokenTypeRefresh, ts.RefreshTokenSecret)
}

func (ts *TokenService) sign(userID, tokenType, secret string, ttl time.Duration) (string, error) {
	now := ts.clock()

	claims := JWTCustomClaims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

func (ts *TokenService) verify(tokenString, tokenType, secret string) (string, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.clock),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", autherror.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", autherror.ErrInvalidToken
	}

	if claims.TokenType != tokenType {
		return "", fmt.Errorf("%w: expected %s token, got %q", autherror.ErrInvalidToken, tokenType, claims.TokenType)
	}

	if claims.UserID == "" || claims.UserID != claims.Subject {
		return "", fmt.Errorf("%w: missing subject", autherror.ErrInvalidToken)
	}

	return claims.UserID, nil
}

func (ts *TokenService) clock() time.Time {
	if ts.now == nil {
		return time.Now()
	}
	return ts.now()
}
