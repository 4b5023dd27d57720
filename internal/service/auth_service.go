package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	"github.com/titanmarket/titanmarket-backend/pkg/jwt"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
	"github.com/titanmarket/titanmarket-backend/pkg/oauth"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength for local accounts
const MinPasswordLength = 8

// GoogleIdentityProvider verifies Google sign-ins
type GoogleIdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*oauth.GoogleIdentity, error)
	ExchangeCode(ctx context.Context, code string) (*oauth.GoogleIdentity, error)
	AuthCodeURL(state string) string
}

// AuthService authentication business logic
type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
	GoogleSignIn(ctx context.Context, idToken string) (*domain.TokenResponse, error)
	GoogleCallback(ctx context.Context, code string) (*domain.TokenResponse, error)
	GoogleAuthURL(state string) (string, error)
	Me(ctx context.Context, userID uint64) (*domain.UserResponse, error)
}

type authService struct {
	userRepo     repository.UserRepository
	jwtManager   *jwt.Manager
	google       GoogleIdentityProvider
	campusDomain string
}

// NewAuthService creates a new AuthService. google may be nil.
func NewAuthService(userRepo repository.UserRepository, jwtManager *jwt.Manager, google GoogleIdentityProvider, campusDomain string) AuthService {
	return &authService{
		userRepo:     userRepo,
		jwtManager:   jwtManager,
		google:       google,
		campusDomain: strings.TrimPrefix(strings.ToLower(campusDomain), "@"),
	}
}

// IsCampusEmail reports whether email belongs to domain (e.g. "csu.fullerton.edu")
func IsCampusEmail(email, domain string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return email[at+1:] == domain
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if !IsCampusEmail(email, s.campusDomain) {
		return nil, common.ErrInvalidCampusEmail
	}
	if len(req.Password) < MinPasswordLength {
		return nil, common.ErrWeakPassword
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, fmt.Errorf("%w: display name is required", common.ErrInvalidInput)
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().Uint64("user_id", user.ID).Msg("user registered")
	return s.issueTokens(user)
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if !IsCampusEmail(email, s.campusDomain) {
		return nil, common.ErrInvalidCampusEmail
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" {
		return nil, common.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	claims, err := s.jwtManager.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, common.ErrExpiredToken
		}
		return nil, common.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}

	return s.issueTokens(user)
}

func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (*domain.TokenResponse, error) {
	if s.google == nil {
		return nil, common.ErrGoogleSignInDisabled
	}
	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return s.signInWithGoogle(ctx, identity)
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*domain.TokenResponse, error) {
	if s.google == nil {
		return nil, common.ErrGoogleSignInDisabled
	}
	identity, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	return s.signInWithGoogle(ctx, identity)
}

func (s *authService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil {
		return "", common.ErrGoogleSignInDisabled
	}
	return s.google.AuthCodeURL(state), nil
}

// signInWithGoogle finds the user by Google subject, then by email (linking the
// account), and creates it on first sign-in.
func (s *authService) signInWithGoogle(ctx context.Context, identity *oauth.GoogleIdentity) (*domain.TokenResponse, error) {
	email := normalizeEmail(identity.Email)
	if !IsCampusEmail(email, s.campusDomain) {
		return nil, common.ErrInvalidCampusEmail
	}

	user, err := s.userRepo.FindByGoogleSub(ctx, identity.Subject)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return s.issueTokens(user)
	}

	user, err = s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	sub := identity.Subject
	if user != nil {
		user.GoogleSub = &sub
		if user.PhotoURL == "" {
			user.PhotoURL = identity.Picture
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return s.issueTokens(user)
	}

	displayName := strings.TrimSpace(identity.Name)
	if displayName == "" {
		displayName = email[:strings.LastIndex(email, "@")]
	}
	user = &domain.User{
		Email:       email,
		GoogleSub:   &sub,
		DisplayName: displayName,
		PhotoURL:    identity.Picture,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	pkglogger.GetLogger().Info().Uint64("user_id", user.ID).Msg("user created via google sign-in")
	return s.issueTokens(user)
}

func (s *authService) Me(ctx context.Context, userID uint64) (*domain.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.ErrUserNotFound
	}
	return user.ToResponse(), nil
}

func (s *authService) issueTokens(user *domain.User) (*domain.TokenResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &domain.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.AccessTTL().Seconds()),
		User:         user.ToResponse(),
	}, nil
}
