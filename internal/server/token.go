package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Token verification failures. The auth middleware maps these onto the
// stable error bodies the CLI matches.
var (
	ErrTokenExpired = stderrors.New("token has expired")
	ErrTokenRevoked = stderrors.New("token has been revoked")
	ErrTokenInvalid = stderrors.New("invalid token")
)

const sessionTTL = 24 * time.Hour

// claims is the JWT payload. The jti doubles as the allow-list key so
// logout can revoke a single token.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues HS256 JWTs and keeps an allow-list of live
// session ids in redis. A token is only valid while its jti exists
// there, so logout takes effect immediately.
type TokenService struct {
	secret []byte
	rdb    *redis.Client
	ttl    time.Duration
}

// NewTokenService creates a TokenService backed by rdb.
func NewTokenService(secret string, rdb *redis.Client) *TokenService {
	return &TokenService{secret: []byte(secret), rdb: rdb, ttl: sessionTTL}
}

// Issue implements Sessions.
func (t *TokenService) Issue(ctx context.Context, user User) (string, error) {
	now := time.Now()
	jti := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	if err := t.rdb.Set(ctx, sessionKey(jti), user.ID, t.ttl).Err(); err != nil {
		return "", fmt.Errorf("register session: %w", err)
	}
	return signed, nil
}

// Verify implements Sessions.
func (t *TokenService) Verify(ctx context.Context, tokenString string) (User, error) {
	c, err := t.parse(tokenString)
	if err != nil {
		return User{}, err
	}
	if err := t.rdb.Get(ctx, sessionKey(c.ID)).Err(); err != nil {
		if stderrors.Is(err, redis.Nil) {
			return User{}, ErrTokenRevoked
		}
		return User{}, fmt.Errorf("check session: %w", err)
	}
	return User{ID: c.Subject, Email: c.Email}, nil
}

// Revoke implements Sessions. Expired tokens are accepted so logout on
// a stale session still clears the allow-list entry.
func (t *TokenService) Revoke(ctx context.Context, tokenString string) error {
	c, err := t.parse(tokenString)
	if err != nil && !stderrors.Is(err, ErrTokenExpired) {
		return err
	}
	return t.rdb.Del(ctx, sessionKey(c.ID)).Err()
}

func (t *TokenService) parse(tokenString string) (*claims, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return c, ErrTokenExpired
		}
		return c, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || c.Subject == "" || c.ID == "" {
		return c, ErrTokenInvalid
	}
	return c, nil
}

func sessionKey(jti string) string { return "session:" + jti }

var _ Sessions = (*TokenService)(nil)
