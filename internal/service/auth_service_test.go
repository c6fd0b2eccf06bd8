package service

import (
	"testing"
	"time"

	"matchsync-server/internal/domain"
)

func newAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, "test-secret", time.Hour, 24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepo()
	service := newAuthService(repo)

	err := service.Register(&domain.RegisterRequest{
		Username: "labeler1",
		Email:    "labeler1@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(repo.users) != 1 {
		t.Errorf("expected 1 user, got %d", len(repo.users))
	}

	err = service.Register(&domain.RegisterRequest{
		Username: "labeler2",
		Email:    "labeler1@example.com",
		Password: "password123",
	})
	if err == nil {
		t.Error("expected duplicate email to be rejected")
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	service := newAuthService(repo)

	service.Register(&domain.RegisterRequest{
		Username: "labeler1",
		Email:    "labeler1@example.com",
		Password: "password123",
	})

	resp, err := service.Login(&domain.LoginRequest{
		Email:    "labeler1@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected tokens to be issued")
	}
	if resp.User.Password != "" {
		t.Error("expected password to be stripped from response")
	}

	_, err = service.Login(&domain.LoginRequest{
		Email:    "labeler1@example.com",
		Password: "wrong",
	})
	if err == nil {
		t.Error("expected wrong password to be rejected")
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := newMockUserRepo()
	service := newAuthService(repo)

	service.Register(&domain.RegisterRequest{
		Username: "labeler1",
		Email:    "labeler1@example.com",
		Password: "password123",
	})
	resp, _ := service.Login(&domain.LoginRequest{
		Email:    "labeler1@example.com",
		Password: "password123",
	})

	refreshed, err := service.RefreshToken(&domain.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected new access token")
	}

	_, err = service.RefreshToken(&domain.RefreshTokenRequest{RefreshToken: "garbage"})
	if err == nil {
		t.Error("expected invalid refresh token to be rejected")
	}
}
