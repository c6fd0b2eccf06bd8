package service

import (
	"fmt"
	"time"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/repository"
	"matchsync-server/pkg/hash"
	"matchsync-server/pkg/jwt"

	"github.com/google/uuid"
)

// AuthService manages labeling operator accounts and their token pairs.
type AuthService struct {
	userRepo          repository.UserRepository
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExp, refreshExp time.Duration) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
	}
}

func (s *AuthService) Register(req *domain.RegisterRequest) error {
	taken, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return fmt.Errorf("failed to check email existence: %w", err)
	}
	if taken {
		return fmt.Errorf("email already registered")
	}

	taken, err = s.userRepo.UsernameExists(req.Username)
	if err != nil {
		return fmt.Errorf("failed to check username existence: %w", err)
	}
	if taken {
		return fmt.Errorf("username already taken")
	}

	hashed, err := hash.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	operator := &domain.User{
		ID:        uuid.New().String(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(operator); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Login verifies credentials and issues an access/refresh token pair. Lookup
// and comparison failures collapse into the same error so callers cannot
// probe for registered emails.
func (s *AuthService) Login(req *domain.LoginRequest) (*domain.LoginResponse, error) {
	operator, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}
	if err := hash.Compare(operator.Password, req.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	access, err := s.issueAccessToken(operator.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := jwt.GenerateRefreshToken(operator.ID, s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	operator.Password = ""
	return &domain.LoginResponse{
		User:         operator,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtExpiration.Seconds()),
	}, nil
}

func (s *AuthService) RefreshToken(req *domain.RefreshTokenRequest) (*domain.TokenResponse, error) {
	claims, err := jwt.ValidateToken(req.RefreshToken, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token")
	}

	access, err := s.issueAccessToken(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{
		AccessToken: access,
		ExpiresIn:   int64(s.jwtExpiration.Seconds()),
	}, nil
}

func (s *AuthService) ValidateToken(token string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

func (s *AuthService) issueAccessToken(userID string) (string, error) {
	token, err := jwt.GenerateToken(userID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, nil
}
