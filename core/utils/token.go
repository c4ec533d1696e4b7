package utils

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = stderrors.New("token expired")
	ErrTokenInvalid = stderrors.New("token invalid")
)

// TokenClaims identifies the bearer within a single instance. ParticipantID is
// uuid.Nil for admin tokens.
type TokenClaims struct {
	InstanceID    uuid.UUID `json:"instance_id"`
	ParticipantID uuid.UUID `json:"participant_id,omitempty"`
	Scope         string    `json:"scope"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, instanceID, participantID uuid.UUID, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		InstanceID:    instanceID,
		ParticipantID: participantID,
		Scope:         scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   participantID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func ValidateAndParseToken(secret, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.InstanceID == uuid.Nil || claims.Scope == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// TTL returns the remaining lifetime of the token.
func (c *TokenClaims) TTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return time.Until(c.ExpiresAt.Time)
}

// GetTokenFromHeader strips the "Bearer " prefix of an Authorization header.
func GetTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
