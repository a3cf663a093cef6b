package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prohmpiriya/postboard-api/internal/domain"
	"github.com/prohmpiriya/postboard-api/internal/dto"
	"github.com/prohmpiriya/postboard-api/internal/metrics"
	"github.com/prohmpiriya/postboard-api/internal/repository"
	"github.com/prohmpiriya/postboard-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTokenTTL is the session lifetime when none is configured
const DefaultTokenTTL = 15 * 24 * time.Hour

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	Issuer     string
	BcryptCost int
}

// AuthService defines the interface for authentication operations
type AuthService interface {
	// Register creates a new account
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	// Login checks credentials and mints a session token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Logout ends the caller's session; tokens are stateless so this only records it
	Logout(ctx context.Context, identity *domain.Identity) error
	// Authenticate verifies a token and resolves it to a live user
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
	// TokenTTL is the lifetime of minted tokens, used for the cookie Max-Age
	TokenTTL() time.Duration
}

// authService implements AuthService
type authService struct {
	userRepo  repository.UserRepository
	publisher EventPublisher
	config    *AuthServiceConfig
	dummyHash []byte
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	publisher EventPublisher,
	config *AuthServiceConfig,
) (AuthService, error) {
	if config == nil || config.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.TokenTTL == 0 {
		config.TokenTTL = DefaultTokenTTL
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}

	// Compared against on unknown emails so both failure paths cost one bcrypt run
	dummyHash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	return &authService{
		userRepo:  userRepo,
		publisher: publisher,
		config:    config,
		dummyHash: dummyHash,
	}, nil
}

// Register registers a new user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	req.Normalize()
	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	role, _ := req.ParsedRole()

	span.SetAttributes(attribute.String("role", string(role)))

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "user already exists")
		return nil, domain.ErrUserAlreadyExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Name:         req.Name,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// A concurrent registration can still win the race; the unique index reports it
	if err := s.userRepo.Create(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordRegistration(ctx, string(role))
	publishBestEffort(ctx, s.publisher, domain.EventUserRegistered, user.ID, user.ID, user)

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	email := dto.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		metrics.RecordLogin(ctx, "failure")
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordLogin(ctx, "failure")
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	metrics.RecordLogin(ctx, "success")
	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.AuthResponse{User: user, Token: token}, nil
}

// Logout logs out a user
func (s *authService) Logout(ctx context.Context, identity *domain.Identity) error {
	_, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	if identity == nil {
		span.SetStatus(codes.Error, "unauthorized")
		return domain.ErrUnauthorized
	}

	span.SetAttributes(attribute.String("user_id", identity.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

// Authenticate validates a token and loads the user it names
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*domain.Identity, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.authenticate")
	defer span.End()

	userID, err := s.parseToken(tokenString)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !validID(userID) {
		span.SetStatus(codes.Error, "subject is not a user id")
		return nil, domain.ErrUnauthorized
	}

	identity, err := s.userRepo.GetIdentity(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if identity == nil {
		span.SetStatus(codes.Error, "user no longer exists")
		return nil, domain.ErrUnauthorized
	}

	span.SetAttributes(attribute.String("user_id", identity.ID))
	span.SetStatus(codes.Ok, "")
	return identity, nil
}

func (s *authService) TokenTTL() time.Duration {
	return s.config.TokenTTL
}

func (s *authService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(s.config.TokenTTL).Unix(),
	}
	if s.config.Issuer != "" {
		claims["iss"] = s.config.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// parseToken verifies signature and expiry and returns the subject
func (s *authService) parseToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired
		}
		return "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}
