package jwt

import (
	"testing"
	"time"
)

const testSecret = "matchsync-test-secret-32-chars!!"

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		expiration time.Duration
	}{
		{name: "standard expiration", userID: "op-1", expiration: 15 * time.Minute},
		{name: "short expiration", userID: "op-2", expiration: time.Second},
		{name: "long expiration", userID: "op-3", expiration: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, tt.expiration, testSecret)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if len(token) < 100 {
				t.Errorf("token suspiciously short, len = %d", len(token))
			}
		})
	}
}

func TestValidateToken(t *testing.T) {
	valid, err := GenerateToken("op-valid", time.Hour, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	expired, err := GenerateToken("op-valid", -time.Hour, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr bool
	}{
		{name: "valid token", token: valid, secret: testSecret, wantErr: false},
		{name: "expired token", token: expired, secret: testSecret, wantErr: true},
		{name: "wrong secret", token: valid, secret: "other-secret", wantErr: true},
		{name: "garbage token", token: "not.a.jwt", secret: testSecret, wantErr: true},
		{name: "empty token", token: "", secret: testSecret, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)
			if tt.wantErr {
				if err == nil {
					t.Error("expected validation error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.UserID != "op-valid" {
				t.Errorf("UserID = %q, want op-valid", claims.UserID)
			}
		})
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken("op-refresh", 7*24*time.Hour, testSecret)
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.UserID != "op-refresh" {
		t.Errorf("UserID = %q, want op-refresh", claims.UserID)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("TokenType = %q, want refresh", claims.TokenType)
	}
}

func TestClaimsTimestamps(t *testing.T) {
	expiration := time.Hour

	before := time.Now().Add(-time.Second)
	token, err := GenerateToken("op-ts", expiration, testSecret)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	after := time.Now().Add(time.Second)

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if iat := claims.IssuedAt.Time; iat.Before(before) || iat.After(after) {
		t.Errorf("IssuedAt %v outside [%v, %v]", iat, before, after)
	}
	if nbf := claims.NotBefore.Time; nbf.Before(before) || nbf.After(after) {
		t.Errorf("NotBefore %v outside [%v, %v]", nbf, before, after)
	}
	exp := claims.ExpiresAt.Time
	if exp.Before(before.Add(expiration)) || exp.After(after.Add(expiration)) {
		t.Errorf("ExpiresAt %v outside expected window", exp)
	}
}

func BenchmarkValidateToken(b *testing.B) {
	token, _ := GenerateToken("op-bench", 15*time.Minute, testSecret)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ValidateToken(token, testSecret); err != nil {
			b.Fatalf("ValidateToken() error = %v", err)
		}
	}
}
