//go:generate mockgen -destination mock_jwtsigner/mock_jwtsigner.go github.com/anyproto/anytype-push-sender/jwtsigner Signer

package jwtsigner

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anyproto/any-sync/app"
	"github.com/golang-jwt/jwt/v5"

	"github.com/anyproto/anytype-push-sender/domain"
)

const CName = "push.jwtsigner"

const (
	DefaultScope    = "https://www.googleapis.com/auth/firebase.messaging"
	DefaultAudience = "https://oauth2.googleapis.com/token"

	// Lifetime is the fixed exp - iat distance of every assertion.
	Lifetime = time.Hour
)

type configSource interface {
	GetJWT() Config
}

type Config struct {
	Scope    string
	Audience string
}

func New() Signer {
	return &signer{now: time.Now}
}

type Signer interface {
	Sign(ctx context.Context, sa domain.ServiceAccount) (domain.Assertion, error)
	app.Component
}

type signer struct {
	scope    string
	audience string
	now      func() time.Time
}

func (s *signer) Init(a *app.App) (err error) {
	conf := a.MustComponent("config").(configSource).GetJWT()
	s.scope = conf.Scope
	if s.scope == "" {
		s.scope = DefaultScope
	}
	s.audience = conf.Audience
	if s.audience == "" {
		s.audience = DefaultAudience
	}
	return
}

func (s *signer) Name() (name string) {
	return CName
}

func (s *signer) Sign(ctx context.Context, sa domain.ServiceAccount) (domain.Assertion, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return domain.Assertion{}, fmt.Errorf("%w: %w", domain.ErrSigning, err)
	}
	iat := s.now().Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss":   sa.ClientEmail,
		"scope": s.scope,
		"aud":   s.audience,
		"iat":   iat,
		"exp":   iat + int64(Lifetime/time.Second),
	})
	signingString, err := token.SigningString()
	if err != nil {
		return domain.Assertion{}, fmt.Errorf("%w: %w", domain.ErrSigning, err)
	}
	sig, err := token.Method.Sign(signingString, key)
	if err != nil {
		return domain.Assertion{}, fmt.Errorf("%w: %w", domain.ErrSigning, err)
	}
	header, claims, _ := strings.Cut(signingString, ".")
	return domain.Assertion{
		Header:    header,
		Claims:    claims,
		Signature: EncodeSegment(sig),
	}, nil
}

// EncodeSegment is the JWT compact serialization encoding: URL-safe
// alphabet, no padding.
func EncodeSegment(seg []byte) string {
	return base64.RawURLEncoding.EncodeToString(seg)
}
