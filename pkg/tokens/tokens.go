// Package tokens issues and parses the signed JWTs used by the auth core:
// short-lived access tokens and longer-lived refresh tokens, both carrying
// the username and role as claims.
package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenInvalid covers structurally broken tokens: bad signature,
	// malformed payload, or the wrong token type for the operation.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is returned for tokens that parsed and verified but
	// whose lifetime has passed.
	ErrTokenExpired = errors.New("token expired")
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"

	// AccessTokenTTL is the fixed access-token lifetime.
	AccessTokenTTL = 60 * time.Minute

	// RefreshTokenTTL is the fixed refresh-token lifetime.
	RefreshTokenTTL = 7 * 24 * time.Hour
)

type Claims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies both token kinds with HS256. Access and refresh
// tokens use separate secrets so leaking one scope does not compromise the
// other.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
}

func NewCodec(accessSecret, refreshSecret string) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        "dataloft-auth",
	}
}

func (c *Codec) IssueAccessToken(userID, username, role string) (string, error) {
	return c.issue(userID, username, role, typeAccess, AccessTokenTTL, c.accessSecret)
}

func (c *Codec) IssueRefreshToken(userID, username, role string) (string, error) {
	return c.issue(userID, username, role, typeRefresh, RefreshTokenTTL, c.refreshSecret)
}

func (c *Codec) issue(userID, username, role, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	jti, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		Username:  username,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        jti.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    c.issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccessToken verifies an access token and returns its claims.
func (c *Codec) ParseAccessToken(tokenString string) (*Claims, error) {
	return c.parse(tokenString, typeAccess, c.accessSecret)
}

// ParseRefreshToken verifies a refresh token and returns its claims.
func (c *Codec) ParseRefreshToken(tokenString string) (*Claims, error) {
	return c.parse(tokenString, typeRefresh, c.refreshSecret)
}

func (c *Codec) parse(tokenString, wantType string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// Digest returns the SHA-256 hex digest of a raw token string. Revocation
// records key on this digest so a token can be checked against the
// revocation store before any of its contents are parsed or trusted.
func Digest(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(sum[:])
}
