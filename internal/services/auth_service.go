package services

import (
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

type AuthStore interface {
	FindUserByEmail(email string) (*User, error)
	AddUser(u *User) error
	AddTenant(t *Tenant) error
}

type TokenSigner func(uid, tid, email string, ttl time.Duration) (string, error)

type AuthService struct {
	store     AuthStore
	now       func() time.Time
	idGen     func(prefix string) string
	signToken TokenSigner
	tokenTTL  time.Duration
}

type AuthResult struct {
	Token    string `json:"token"`
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
}

// NewAuthService issues tokens valid for ttl; a non-positive ttl means 30
// days.
func NewAuthService(store AuthStore, signer TokenSigner, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &AuthService{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string) string { return prefix + shortID(10) },
		signToken: signer,
		tokenTTL:  ttl,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", NewInvalidError("email/password required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", NewInvalidError("invalid email")
	}
	return email, nil
}

// Register creates a tenant and its first user. The tenant name defaults to
// the email address.
func (s *AuthService) Register(email, password, tenantName string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, NewInvalidError("password must have at least 8 characters")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	existing, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, NewConflictError("email exists")
	}
	if strings.TrimSpace(tenantName) == "" {
		tenantName = email
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	tenant := &Tenant{ID: s.idGen("t"), Name: strings.TrimSpace(tenantName)}
	if err := s.store.AddTenant(tenant); err != nil {
		return nil, err
	}
	user := &User{ID: s.idGen("u"), Email: email, PassHash: hash, TenantID: tenant.ID, CreatedAt: s.now()}
	if err := s.store.AddUser(user); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, NewInvalidError("email/password required")
	}
	u, err := s.store.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewUnauthorizedError("invalid credentials")
	}
	if s.signToken == nil {
		return nil, NewInvalidError("token signer not configured")
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *User) (*AuthResult, error) {
	token, err := s.signToken(u.ID, u.TenantID, u.Email, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, TenantID: u.TenantID, UserID: u.ID}, nil
}

func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}
