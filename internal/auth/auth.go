package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer = "zonegrid"
	defaultTTL    = 24 * time.Hour
)

// Claims is the token payload: identity, zone assignment and the permission
// set frozen at issuance time.
type Claims struct {
	UserID      string        `json:"userId"`
	Role        Role          `json:"role"`
	Zone        string        `json:"zone"`
	Permissions PermissionSet `json:"permissions"`
	jwt.RegisteredClaims
}

// Allows reports whether the claim grants action on resource.
func (c *Claims) Allows(resource, action string) bool {
	return c.Permissions.Allows(resource, action)
}

// Service issues and verifies access tokens signed with HS256.
type Service struct {
	secret        []byte
	issuer        string
	ttl           time.Duration
	now           func() time.Time
	allowedZones  map[string]struct{}
	elevationHash string
}

// Option configures Service behavior.
type Option func(*Service) error

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) Option {
	return func(s *Service) error {
		if strings.TrimSpace(issuer) != "" {
			s.issuer = strings.TrimSpace(issuer)
		}
		return nil
	}
}

// WithTTL configures token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) error {
		if ttl > 0 {
			s.ttl = ttl
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithZoneAllowlist restricts issuance to the given zone codes. Tokens for
// zones outside the list are refused; format validation applies either way.
func WithZoneAllowlist(zones ...string) Option {
	return func(s *Service) error {
		if s.allowedZones == nil {
			s.allowedZones = make(map[string]struct{}, len(zones))
		}
		for _, z := range zones {
			z = strings.TrimSpace(z)
			if z == "" {
				continue
			}
			s.allowedZones[z] = struct{}{}
		}
		return nil
	}
}

// WithElevationHash enables the dual-layer issuance check: callers must
// present a secret matching this bcrypt hash before a token is minted.
func WithElevationHash(hash string) Option {
	return func(s *Service) error {
		s.elevationHash = strings.TrimSpace(hash)
		return nil
	}
}

// NewService constructs a token service around a shared signing secret.
func NewService(secret string, opts ...Option) (*Service, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	svc := &Service{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    defaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration { return s.ttl }

// Issue mints a signed token for the given identity. The permission set is
// derived from the role here and nowhere else.
func (s *Service) Issue(userID string, role Role, zone string) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, errors.New("auth: userID is required")
	}
	if !ValidRole(role) {
		return "", time.Time{}, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	if err := s.validateZone(zone); err != nil {
		return "", time.Time{}, err
	}

	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := Claims{
		UserID:      userID,
		Role:        role,
		Zone:        zone,
		Permissions: PermissionsFor(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify validates the token signature and expiry and returns the claims.
// Any failure collapses to ErrInvalidToken; a token is atomically valid or
// invalid.
func (s *Service) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) validateZone(zone string) error {
	if !isZoneCode(zone) {
		return fmt.Errorf("%w: %q must be 4-6 uppercase letters", ErrInvalidZone, zone)
	}
	if len(s.allowedZones) > 0 {
		if _, ok := s.allowedZones[zone]; !ok {
			return fmt.Errorf("%w: %q is not a known zone", ErrInvalidZone, zone)
		}
	}
	return nil
}

func isZoneCode(zone string) bool {
	if len(zone) < 4 || len(zone) > 6 {
		return false
	}
	for _, r := range zone {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
