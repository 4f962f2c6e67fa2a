package service

import (
	"errors"
	"testing"

	"github.com/inkpost/internal/config"
)

func TestValidatePassword(t *testing.T) {
	strict := config.PasswordPolicyConfig{
		MinLength:      10,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}
	cases := []struct {
		name     string
		policy   config.PasswordPolicyConfig
		password string
		wantErr  bool
	}{
		{name: "empty policy", policy: config.PasswordPolicyConfig{}, password: "a", wantErr: false},
		{name: "too short", policy: config.PasswordPolicyConfig{MinLength: 8}, password: "short", wantErr: true},
		{name: "rune length", policy: config.PasswordPolicyConfig{MinLength: 4}, password: "密码密码", wantErr: false},
		{name: "missing upper", policy: strict, password: "lower-case-1", wantErr: true},
		{name: "missing special", policy: strict, password: "NoSpecial123", wantErr: true},
		{name: "strong", policy: strict, password: "Correct-Horse-9", wantErr: false},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.policy, tc.password)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			if !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("%s: error should match ErrWeakPassword, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
	}
}
