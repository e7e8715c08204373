package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_Hash(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "simple password",
			password: "password123",
		},
		{
			name:     "complex password",
			password: "P@ssw0rd!#$%^&*()",
		},
		{
			name:     "unicode password",
			password: "密码Str0ng!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := hasher.Hash(tt.password)
			if err != nil {
				t.Fatalf("Hash() error = %v", err)
			}

			if hash == "" {
				t.Error("Hash() returned empty string")
			}

			if hash == tt.password {
				t.Error("Hash() returned the original password")
			}

			if !hasher.Verify(tt.password, hash) {
				t.Error("Verify() returned false for correct password")
			}
		})
	}
}

func TestPasswordHasher_Verify(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)
	password := "Str0ng!Pw"

	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "correct password", password: password, want: true},
		{name: "wrong password", password: "wrong", want: false},
		{name: "empty password", password: "", want: false},
		{name: "different case", password: "str0ng!pw", want: false},
		{name: "similar password", password: password + "1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hasher.Verify(tt.password, hash)
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPasswordHasher_UniqueHashes(t *testing.T) {
	hasher := NewPasswordHasherWithCost(bcrypt.MinCost)
	password := "Str0ng!Pw"

	hash1, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Fresh salt per hash.
	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{name: "meets every rule", password: "Str0ng!Pw", want: true},
		{name: "exactly 8 characters", password: "Abcdef1!", want: true},
		{name: "7 characters", password: "Abcde1!", want: false},
		{name: "empty", password: "", want: false},
		{name: "no uppercase", password: "str0ng!pw", want: false},
		{name: "no lowercase", password: "STR0NG!PW", want: false},
		{name: "no digit", password: "Strong!Pw", want: false},
		{name: "no special", password: "Str0ngPw1", want: false},
		{name: "special outside the set", password: "Str0ng#Pw", want: false},
		{name: "every special character accepted", password: "Aa1@$!%*?&", want: true},
		{name: "extra characters allowed", password: "Str0ng!Pw with spaces", want: true},
		{name: "non-ascii letters do not count as upper", password: "Äbcdef1!", want: false},
		{name: "multibyte characters count once", password: "Aé1!éé", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePasswordStrength(tt.password); got != tt.want {
				t.Errorf("ValidatePasswordStrength(%q) = %v, want %v", tt.password, got, tt.want)
			}
		})
	}
}
