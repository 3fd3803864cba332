package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "N1", false},
		{"valid with dash", "net-42", false},
		{"valid with brackets", "data[3]", false},
		{"valid with slash", "core/alu/N7", false},
		{"valid unicode", "Δclk", false},
		{"max length", strings.Repeat("n", maxNameLength), false},

		{"empty", "", true},
		{"too long", strings.Repeat("n", maxNameLength+1), true},
		{"space", "net 1", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("net", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidName) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidName)
			}
		})
	}
}
