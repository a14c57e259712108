package domain

import "testing"

func TestMaskCardNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"sixteen digits", "4111111111111111", "************1111"},
		{"fifteen digits", "411111111111111", "***********1111"},
		{"exactly four", "1234", "1234"},
		{"shorter than four", "12", "12"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskCardNumber(tt.in); got != tt.want {
				t.Errorf("MaskCardNumber(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
