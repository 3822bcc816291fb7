package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"factory_inventory/internal/apperr"
)

// Token kinds carried in the claims so a refresh token can never pass as an
// access token and vice versa.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Claims are the JWT claims issued by this service.
type Claims struct {
	UserID int64  `json:"uid"`
	Role   int    `json:"role"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a shared HMAC secret.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates an Issuer.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// RefreshTTL returns the configured refresh token lifetime.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) sign(userID int64, role int, kind string, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}
	return signed, nil
}

// IssueAccess creates a short-lived access token.
func (i *Issuer) IssueAccess(userID int64, role int) (string, error) {
	return i.sign(userID, role, TokenKindAccess, i.accessTTL, uuid.NewString())
}

// IssueRefresh creates a refresh token and returns it with its JTI. The JTI
// is what the server-side refresh store tracks for rotation and revocation.
func (i *Issuer) IssueRefresh(userID int64, role int) (token string, jti string, err error) {
	jti = uuid.NewString()
	token, err = i.sign(userID, role, TokenKindRefresh, i.refreshTTL, jti)
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

// Verify parses a token, checks the signature and expiry, and requires the
// given kind.
func (i *Issuer) Verify(tokenString, kind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}
	if !token.Valid {
		return nil, apperr.New(apperr.KindUnauthorized, "invalid token")
	}
	if claims.Kind != kind {
		return nil, apperr.Newf(apperr.KindUnauthorized, "expected %s token", kind)
	}
	return claims, nil
}
