package utils

import (
	"errors"
	"fmt"
	"time"

	"cybersite/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	Scopes    []string `json:"scopes"`
	TokenType string   `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and parses the admin access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *TokenIssuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// GenerateJWT issues an access token carrying the user's role scopes.
func (i *TokenIssuer) GenerateJWT(user models.User) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		Scopes:    models.ScopesForRole(user.Role),
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// GenerateRefreshToken generates a refresh token for a user
func (i *TokenIssuer) GenerateRefreshToken(user models.User) (string, error) {
	now := i.now()
	nonce, err := GenerateRandomString(16)
	if err != nil {
		return "", err
	}
	claims := Claims{
		UserID:    user.ID,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ParseJWT parses and validates an access token
func (i *TokenIssuer) ParseJWT(tokenString string) (*Claims, error) {
	return i.parse(tokenString, TokenTypeAccess)
}

// ParseRefreshToken parses and validates a refresh token
func (i *TokenIssuer) ParseRefreshToken(tokenString string) (*Claims, error) {
	return i.parse(tokenString, TokenTypeRefresh)
}

func (i *TokenIssuer) parse(tokenString, tokenType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	if claims.TokenType != tokenType {
		return nil, errors.New("wrong token type")
	}

	return claims, nil
}
