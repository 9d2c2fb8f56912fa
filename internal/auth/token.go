package auth

import (
	"time"

	"github.com/flexprice/fiscal/internal/config"
	ierr "github.com/flexprice/fiscal/internal/errors"
	"github.com/golang-jwt/jwt/v4"
)

// Claims are the verified contents of a bearer token
type Claims struct {
	UserID    string
	ExpiresAt time.Time
}

// TokenVerifier checks HMAC signed bearer tokens. The subject is the user id.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(cfg *config.Configuration) *TokenVerifier {
	return &TokenVerifier{secret: []byte(cfg.Auth.Secret)}
}

func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewErrorf("unexpected signing method: %v", t.Header["alg"]).
				Mark(ierr.ErrPermissionDenied)
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid token").
			Mark(ierr.ErrPermissionDenied)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrPermissionDenied)
	}

	out := &Claims{UserID: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Sign creates a token for userID. Tokens are normally issued by the
// login service, this is used by tooling and tests.
func (v *TokenVerifier) Sign(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to sign token").
			Mark(ierr.ErrSystem)
	}
	return signed, nil
}
