// Package service contains application services for auth, catalog, cart,
// checkout and profiles.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	pkgcrypto "github.com/andresfq/mercadito/internal/crypto"
	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/limiter"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/repository"
)

// RegisterInput carries the registration form. Role-specific fields are kept
// only for the matching role.
type RegisterInput struct {
	Email       string         `json:"email"`
	Password    string         `json:"password"`
	UserType    model.UserType `json:"user_type"`
	Nombre      string         `json:"nombre"`
	Negocio     string         `json:"negocio"`
	Descripcion string         `json:"descripcion"`
}

// AuthService defines registration and login.
type AuthService interface {
	// Register creates the account and its profile atomically.
	Register(ctx context.Context, in RegisterInput) (userID string, err error)
	// LoginWithIP applies rate limiting and authenticates the user, returning
	// tokens and the profile so the client can route by user type.
	LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.Profile, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	profiles  repository.ProfileRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	signKey []byte,
	accessTTL time.Duration,
	lim limiter.Limiter,
) *AuthServiceImpl {
	return &AuthServiceImpl{users: users, profiles: profiles, signKey: signKey, accessTTL: accessTTL, lim: lim}
}

// Register creates the user row and profile row with role-specific fields.
func (s *AuthServiceImpl) Register(ctx context.Context, in RegisterInput) (string, error) {
	if in.Email == "" || in.Password == "" {
		return "", errors.New("validation: empty email/password")
	}
	if !in.UserType.Valid() {
		return "", errors.New("validation: unknown user type")
	}
	uid, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	saltAuth, err := pkgcrypto.RandBytes(pkgcrypto.SaltLen)
	if err != nil {
		return "", err
	}

	u := &model.User{
		ID:       uid,
		Email:    in.Email,
		PwdHash:  pkgcrypto.HashPassword([]byte(in.Password), saltAuth),
		SaltAuth: saltAuth,
	}
	p := &model.Profile{
		ID:       uid,
		Email:    in.Email,
		UserType: in.UserType,
		Nombre:   in.Nombre,
	}
	switch in.UserType {
	case model.UserTypeVendedor:
		p.Negocio = in.Negocio
	case model.UserTypeComprador:
		p.Descripcion = in.Descripcion
	}

	if err := s.users.CreateWithProfile(ctx, u, p); err != nil {
		return "", err
	}
	return uid.String(), nil
}

// LoginWithIP authenticates with rate limiting by (email, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, email, password, ip string) (model.Tokens, model.Profile, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, email, ipHash)
	if err != nil {
		return model.Tokens{}, model.Profile{}, err
	}
	if !allowed {
		return model.Tokens{}, model.Profile{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, email, ipHash); ferr == nil && blocked {
			return model.Tokens{}, model.Profile{}, errs.ErrRateLimited
		}
		// hide account existence on wrong password or missing user
		return model.Tokens{}, model.Profile{}, errs.ErrUnauthorized
	}

	// Success: reset counters (best-effort).
	_ = s.lim.Success(ctx, email, ipHash)

	prof, err := s.profiles.GetByID(ctx, u.ID)
	if err != nil {
		return model.Tokens{}, model.Profile{}, err
	}

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.Profile{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, *prof, nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}
