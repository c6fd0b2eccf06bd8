package hash

import (
	"strings"
	"testing"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "typical password", password: "labeler-pass-1", wantErr: false},
		{name: "exactly minimum length", password: "eight8!!", wantErr: false},
		{name: "below minimum length", password: "short1", wantErr: true},
		{name: "empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Hash(tt.password)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for short password")
				}
				return
			}
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}
			if got == tt.password || got == "" {
				t.Errorf("expected bcrypt output, got %q", got)
			}
			if !strings.HasPrefix(got, "$2a$12$") {
				t.Errorf("expected cost-12 bcrypt prefix, got %q", got[:7])
			}
		})
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	first, err := Hash("same-password-1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	second, err := Hash("same-password-1")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if first == second {
		t.Error("expected distinct hashes for repeated input")
	}
}

func TestCompare(t *testing.T) {
	stored, err := Hash("operator-secret-9")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := Compare(stored, "operator-secret-9"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := Compare(stored, "operator-secret-0"); err == nil {
		t.Error("expected mismatch for wrong password")
	}
	if err := Compare(stored, ""); err == nil {
		t.Error("expected mismatch for empty password")
	}
	if err := Compare(stored, strings.ToUpper("operator-secret-9")); err == nil {
		t.Error("expected case-sensitive comparison")
	}
}

func BenchmarkHash(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Hash("benchmark-password"); err != nil {
			b.Fatalf("Hash() error = %v", err)
		}
	}
}
