package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Identity string `json:"identity"`
	jwt.RegisteredClaims
}

// AccountID returns the subject as a UUID.
func (c *Claims) AccountID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Issuer signs and verifies HS256 access tokens. A zero ttl issues tokens
// without an exp claim, so they stay valid until the secret changes.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue returns the signed token and its expiry; the expiry is the zero time
// when the issuer has no ttl.
func (i *Issuer) Issue(accountID uuid.UUID, identity string) (string, time.Time, error) {
	if len(i.secret) == 0 {
		return "", time.Time{}, errors.New("tokens: empty signing secret")
	}

	now := i.now()
	claims := Claims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  accountID.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}

	var exp time.Time
	if i.ttl > 0 {
		exp = now.Add(i.ttl)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("tokens: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify never returns anything but ErrInvalidToken (possibly wrapped) on
// failure: bad signature, wrong algorithm, expiry and a missing subject all
// collapse into it.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.AccountID(); err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &claims, nil
}
