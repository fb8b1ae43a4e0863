package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hrmspro/hrms/internal"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserNotFound is returned by repositories when no account matches.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned by repositories on a unique violation.
var ErrDuplicateEmail = errors.New("duplicate email")

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	now            func() time.Time
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		now:            time.Now,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		Issuer:             "hrms",
	}
}

// Signup creates the account and signs the user in.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return AuthResponse{}, err
	}

	email := normalizeEmail(dto.Email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return AuthResponse{}, internal.ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return AuthResponse{}, internal.NewInternalError("failed to look up user", err)
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return AuthResponse{}, internal.NewInternalError("failed to hash password", err)
	}

	now := s.now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(dto.FullName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return AuthResponse{}, internal.ErrEmailTaken
		}
		return AuthResponse{}, internal.NewInternalError("failed to create user", err)
	}

	return s.issue(*user)
}

// Login validates credentials and returns tokens
func (s *Service) Login(ctx context.Context, dto LoginDTO) (AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return AuthResponse{}, err
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(dto.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResponse{}, internal.ErrInvalidCredentials
		}
		return AuthResponse{}, internal.NewInternalError("failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthResponse{}, internal.ErrInvalidCredentials
	}

	return s.issue(*user)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthResponse, error) {
	if err := (RefreshTokenDTO{RefreshToken: refreshToken}).Validate(); err != nil {
		return AuthResponse{}, err
	}

	claims, err := s.tokenGenerator.Validate(refreshToken, RefreshToken)
	if err != nil {
		return AuthResponse{}, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResponse{}, internal.ErrInvalidToken
		}
		return AuthResponse{}, internal.NewInternalError("failed to look up user", err)
	}

	return s.issue(*user)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(token string) (*Claims, error) {
	return s.tokenGenerator.Validate(token, AccessToken)
}

func (s *Service) issue(user User) (AuthResponse, error) {
	access, expiresAt, err := s.tokenGenerator.Generate(user, AccessToken)
	if err != nil {
		return AuthResponse{}, internal.NewInternalError("failed to sign access token", err)
	}
	refresh, _, err := s.tokenGenerator.Generate(user, RefreshToken)
	if err != nil {
		return AuthResponse{}, internal.NewInternalError("failed to sign refresh token", err)
	}
	return AuthResponse{
		User: user.View(),
		Session: &Session{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    expiresAt.Unix(),
		},
	}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (j *JWTTokenGenerator) secret(typ TokenType) ([]byte, time.Duration, error) {
	switch typ {
	case AccessToken:
		return j.AccessTokenSecret, j.AccessTokenTTL, nil
	case RefreshToken:
		return j.RefreshTokenSecret, j.RefreshTokenTTL, nil
	default:
		return nil, 0, fmt.Errorf("unknown token type %q", typ)
	}
}

// Generate signs a token of the given type for the user.
func (j *JWTTokenGenerator) Generate(user User, typ TokenType) (string, time.Time, error) {
	secret, ttl, err := j.secret(typ)
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
			Issuer:    j.Issuer,
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Validate checks signature, expiry and token type.
func (j *JWTTokenGenerator) Validate(tokenString string, typ TokenType) (*Claims, error) {
	secret, _, err := j.secret(typ)
	if err != nil {
		return nil, internal.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != typ {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}
