package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrInvalidSignatureOrExpiry is returned for any token that fails verification
var ErrInvalidSignatureOrExpiry = errors.New("invalid signature or expiry")

const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"

	// MaxRefreshTTL is the lifetime used when no explicit refresh lifetime is requested
	MaxRefreshTTL = 30 * 24 * time.Hour
)

// Codec signs and verifies access and refresh tokens. Each class has its own key and audience,
// so a token of one class never verifies as the other.
type Codec struct {
	access    Signer
	refresh   Signer
	accessTTL time.Duration
	nowTime   func() time.Time
}

type CodecOption func(*Codec)

// WithNowTime sets the clock (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

func NewCodec(access, refresh Signer, accessTTL time.Duration, options ...CodecOption) (*Codec, error) {
	if access == nil || refresh == nil {
		return nil, errors.New("[NewCodec] access and refresh signers are required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("[NewCodec] access token lifetime must be positive")
	}
	c := &Codec{
		access:    access,
		refresh:   refresh,
		accessTTL: accessTTL,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *Codec) SignAccess(identity Identity) (string, error) {
	return c.sign(c.access, identity, audienceAccess, c.accessTTL)
}

// SignRefresh signs a refresh token with the maximum lifetime
func (c *Codec) SignRefresh(identity Identity) (string, error) {
	return c.SignRefreshWithTTL(identity, MaxRefreshTTL)
}

func (c *Codec) SignRefreshWithTTL(identity Identity, ttl time.Duration) (string, error) {
	return c.sign(c.refresh, identity, audienceRefresh, ttl)
}

func (c *Codec) VerifyAccess(tokenStr string) (*Claims, error) {
	return c.verify(c.access, tokenStr, audienceAccess)
}

func (c *Codec) VerifyRefresh(tokenStr string) (*Claims, error) {
	return c.verify(c.refresh, tokenStr, audienceRefresh)
}

func (c *Codec) sign(signer Signer, identity Identity, audience string, ttl time.Duration) (string, error) {
	now := c.nowTime()
	claims := &Claims{
		Identity: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if err := claims.Validate(); err != nil {
		return "", errors.Wrap(err, "[Codec.sign] refusing to sign incomplete claims")
	}
	return signer.Sign(claims)
}

func (c *Codec) verify(signer Signer, tokenStr string, audience string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.nowTime),
	)
	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(tokenStr, claims, signer.GetVerificationKey)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignatureOrExpiry, err.Error())
	}
	if !parsed.Valid {
		return nil, ErrInvalidSignatureOrExpiry
	}
	return claims, nil
}
