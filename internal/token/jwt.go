package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/taskhub-auth/internal/model"
)

// Claims represents JWT claims with the token purpose.
type Claims struct {
	jwt.RegisteredClaims
	Purpose model.Purpose `json:"purpose"`
}

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	now       func() time.Time
}

var _ model.TokenManager = (*JWT)(nil)

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) *JWT {
	return &JWT{secretKey: []byte(secretKey), now: time.Now}
}

// Issue signs a token for subject that is valid for ttl.
func (j *JWT) Issue(subject uuid.UUID, purpose model.Purpose, ttl time.Duration) (model.IssuedToken, error) {
	if !purpose.Valid() {
		return model.IssuedToken{}, fmt.Errorf("unknown token purpose %q", purpose)
	}

	now := j.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Purpose: purpose,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}

	// NumericDate has second precision; report what was signed.
	return model.IssuedToken{
		Token:     tokenString,
		ExpiresAt: expiresAt.Truncate(time.Second),
	}, nil
}

// Verify checks signature, expiry and payload shape.
// Every failure is reported as model.ErrInvalidToken.
func (j *JWT) Verify(tokenString string) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return model.TokenClaims{}, model.ErrInvalidToken
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil || subject == uuid.Nil {
		return model.TokenClaims{}, model.ErrInvalidToken
	}
	if !claims.Purpose.Valid() {
		return model.TokenClaims{}, model.ErrInvalidToken
	}

	out := model.TokenClaims{
		Subject:   subject,
		Purpose:   claims.Purpose,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}

	return out, nil
}
