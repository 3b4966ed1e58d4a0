package auth

import (
	"fmt"
	"strings"
	"time"

	"wealthdesk-backend/internal/domain"
	"wealthdesk-backend/internal/pkg/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "wealthdesk"

// Claims is the signed token payload. Subject carries the user id and ID the
// token id used for revocation.
type Claims struct {
	UserName string   `json:"name"`
	Role     string   `json:"role"`
	ClientID string   `json:"cid,omitempty"`
	Modules  []string `json:"modules,omitempty"`
	jwt.RegisteredClaims
}

// Session is the resolved identity attached to an authenticated request.
type Session struct {
	UserID       uuid.UUID      `json:"userId"`
	UserName     string         `json:"userName"`
	Role         constants.Role `json:"-"`
	RoleName     string         `json:"role"`
	ClientID     *uuid.UUID     `json:"clientId"`
	ModuleAccess []string       `json:"moduleAccess"`
	TokenID      string         `json:"-"`
	ExpiresAt    time.Time      `json:"expiresAt"`
}

// Actor returns the user id as an audit pointer.
func (s *Session) Actor() *uuid.UUID {
	if s == nil {
		return nil
	}
	id := s.UserID
	return &id
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{Secret: []byte(secret), TTL: ttl}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue signs a token for the user and role and returns it with the session it encodes.
func (i *Issuer) Issue(u domain.User, r domain.Role) (string, *Session, error) {
	now := i.now()
	claims := Claims{
		UserName: u.UserName,
		Role:     r.Name,
		Modules:  r.Modules(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID.String(),
			ID:        uuid.NewString(),
			Issuer:    issuerName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.TTL)),
		},
	}
	if u.ClientID != nil {
		claims.ClientID = u.ClientID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", nil, err
	}
	sess, err := sessionFromClaims(&claims)
	if err != nil {
		return "", nil, err
	}
	return signed, sess, nil
}

// Verify checks signature, issuer and expiry and decodes the session.
func (i *Issuer) Verify(tokenString string) (*Session, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return sessionFromClaims(claims)
}

func sessionFromClaims(c *Claims) (*Session, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	sess := &Session{
		UserID:       userID,
		UserName:     c.UserName,
		Role:         constants.ParseRole(c.Role),
		RoleName:     c.Role,
		ModuleAccess: c.Modules,
		TokenID:      c.ID,
	}
	if sess.ModuleAccess == nil {
		sess.ModuleAccess = []string{}
	}
	if c.ExpiresAt != nil {
		sess.ExpiresAt = c.ExpiresAt.Time
	}
	if c.ClientID != "" {
		cid, err := uuid.Parse(c.ClientID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		sess.ClientID = &cid
	}
	return sess, nil
}
