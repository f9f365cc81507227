package validation

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"alice1", true},
		{"abcdefghij0123", true},
		{"alice", false},
		{"Alice1", false},
		{"alice_1", false},
		{strings.Repeat("a", 33), false},
	}
	for _, tt := range tests {
		err := ValidateUsername(tt.in)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateUsername(%q) = %v, want valid=%v", tt.in, err, tt.valid)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if ValidatePassword("1234567") == nil {
		t.Error("7 characters should be rejected")
	}
	if err := ValidatePassword("12345678"); err != nil {
		t.Errorf("8 characters should pass: %v", err)
	}
	if ValidatePassword(strings.Repeat("x", 73)) == nil {
		t.Error("73 bytes should be rejected")
	}
}

func TestValidateImageName(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"beach.jpg", true},
		{"IMG_0001.HEIC", true},
		{"cat.webp", true},
		{"", false},
		{"  ", false},
		{"a,b.jpg", false},
		{"../etc/passwd.png", false},
		{"notes.txt", false},
		{"noext", false},
		{strings.Repeat("a", 200) + ".jpg", false},
	}
	for _, tt := range tests {
		err := ValidateImageName(tt.in)
		if (err == nil) != tt.valid {
			t.Errorf("ValidateImageName(%q) = %v, want valid=%v", tt.in, err, tt.valid)
		}
	}
}

func TestValidateMessage(t *testing.T) {
	if ValidateMessage("") == nil || ValidateMessage("   ") == nil {
		t.Error("blank message should be rejected")
	}
	if err := ValidateMessage(strings.Repeat("é", 500)); err != nil {
		t.Errorf("500 runes should pass: %v", err)
	}
	if ValidateMessage(strings.Repeat("a", 501)) == nil {
		t.Error("501 characters should be rejected")
	}
}

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("a@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	for _, in := range []string{"", "nope", strings.Repeat("a", 250) + "@x.io"} {
		if ValidateEmail(in) == nil {
			t.Errorf("ValidateEmail(%q) should fail", in)
		}
	}
}
