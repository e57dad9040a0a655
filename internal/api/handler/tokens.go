package handler

import (
	"errors"
	"fmt"
	"time"

	"estatehub/backend/internal/config"
	"estatehub/backend/internal/models"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	purposeAccess       = "access"
	purposeTelegramLink = "telegram-link"

	telegramLinkTTL = 15 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims issued by the API.
type Claims struct {
	Role    models.Role `json:"role,omitempty"`
	Purpose string      `json:"purpose"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens with a shared secret.
type Tokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{Secret: []byte(secret), TTL: config.TokenTTL, Now: time.Now}
}

// generateJWT генерує JWT для користувача
func (t *Tokens) generateJWT(userID string, role models.Role, purpose string, ttl time.Duration) (string, error) {
	now := t.Now()
	claims := Claims{
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    config.TokenIssuer, // Видавець
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

// Issue returns an access token for user.
func (t *Tokens) Issue(user *models.User) (string, error) {
	return t.generateJWT(user.ID, user.Role, purposeAccess, t.TTL)
}

// IssueTelegramLink returns a short-lived token for the bot's /start deep link.
func (t *Tokens) IssueTelegramLink(userID string) (string, error) {
	return t.generateJWT(userID, "", purposeTelegramLink, telegramLinkTTL)
}

func (t *Tokens) parse(raw, purpose string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(config.TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify checks an access token and returns its claims.
func (t *Tokens) Verify(raw string) (*Claims, error) {
	return t.parse(raw, purposeAccess)
}

// VerifyTelegramLink resolves a deep-link token to the user id. It satisfies
// telegram.LinkTokenVerifier.
func (t *Tokens) VerifyTelegramLink(raw string) (string, error) {
	claims, err := t.parse(raw, purposeTelegramLink)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}
