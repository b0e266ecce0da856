package utils

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/datahub/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "datahub"

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the user a session token was issued to.
type Claims struct {
	UserID   uint   `json:"userID"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) Issue(user *models.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", fmt.Errorf("%w: missing user", ErrInvalidToken)
	}
	issuedAt := i.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}

var (
	issuerMu      sync.RWMutex
	defaultIssuer = NewTokenIssuer("change-me-in-production", 24*time.Hour)
)

// ConfigureJWT replaces the process-wide issuer. Empty or non-positive
// values keep the current setting.
func ConfigureJWT(secret string, expirationHours int) {
	issuerMu.Lock()
	defer issuerMu.Unlock()

	next := *defaultIssuer
	if secret != "" {
		next.secret = []byte(secret)
	}
	if expirationHours > 0 {
		next.ttl = time.Duration(expirationHours) * time.Hour
	}
	defaultIssuer = &next
}

func currentIssuer() *TokenIssuer {
	issuerMu.RLock()
	defer issuerMu.RUnlock()
	return defaultIssuer
}

func GenerateToken(user *models.User) (string, error) {
	return currentIssuer().Issue(user)
}

func ValidateToken(tokenString string) (*Claims, error) {
	return currentIssuer().Parse(tokenString)
}
