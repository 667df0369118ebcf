// Package auth is the identity provider: it owns credentials and sessions.
// Profiles are mirrored into the store by the caller.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
	"gorm.io/gorm"

	"library-api/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
	ErrUserNotFound       = errors.New("user not found")
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Session is what signin hands back to the client.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Provider struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	hasher PasswordHasher
	now    func() time.Time
}

type Option func(*Provider)

func WithHasher(h PasswordHasher) Option {
	return func(p *Provider) { p.hasher = h }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func NewProvider(db *gorm.DB, secret []byte, ttl time.Duration, opts ...Option) *Provider {
	p := &Provider{
		db:     db,
		secret: secret,
		ttl:    ttl,
		hasher: BcryptHasher{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp stores a new identity and returns its id.
func (p *Provider) SignUp(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	var existing models.Identity
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return "", ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("lookup identity: %w", err)
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	identity := models.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := p.db.WithContext(ctx).Create(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrEmailTaken
		}
		return "", fmt.Errorf("create identity: %w", err)
	}
	return identity.ID, nil
}

// SignIn checks credentials and issues a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var identity models.Identity
	err := p.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	if !p.hasher.Verify(identity.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p.issue(identity)
}

func (p *Provider) issue(identity models.Identity) (*Session, error) {
	issuedAt := p.now()
	expiresAt := issuedAt.Add(p.ttl)
	claims := Claims{
		UserID: identity.ID,
		Email:  identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        ksuid.New().String(),
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      identity.ID,
		ExpiresAt:   expiresAt,
	}, nil
}

func (p *Provider) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(p.now))
	if err != nil || !parsed.Valid {
		return nil, ErrNoSession
	}
	return claims, nil
}

// CurrentUser returns the user id behind token, or ErrNoSession when the
// token is missing, invalid, expired or signed out.
func (p *Provider) CurrentUser(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrNoSession
	}
	claims, err := p.parse(token)
	if err != nil {
		return "", err
	}

	var count int64
	err = p.db.WithContext(ctx).Model(&models.RevokedSession{}).Where("id = ?", claims.ID).Count(&count).Error
	if err != nil {
		return "", fmt.Errorf("check session: %w", err)
	}
	if count > 0 {
		return "", ErrNoSession
	}
	return claims.UserID, nil
}

// SignOut revokes the session behind token.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return err
	}
	revoked := models.RevokedSession{
		ID:        claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	err = p.db.WithContext(ctx).Create(&revoked).Error
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// DeleteUser removes an identity. Callers must hold the service key.
func (p *Provider) DeleteUser(ctx context.Context, userID string) error {
	result := p.db.WithContext(ctx).Where("id = ?", userID).Delete(&models.Identity{})
	if result.Error != nil {
		return fmt.Errorf("delete identity: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
