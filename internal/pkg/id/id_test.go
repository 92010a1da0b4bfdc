package id

import "testing"

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"generated", New(), true},
		{"empty", "", false},
		{"garbage", "not-a-uuid", false},
		{"nil uuid", "00000000-0000-0000-0000-000000000000", false},
		{"urn form", "urn:uuid:6f1c1c52-7a59-4f0e-9a8f-1d2b3c4d5e6f", false},
		{"braces", "{6f1c1c52-7a59-4f0e-9a8f-1d2b3c4d5e6f}", false},
		{"canonical", "6f1c1c52-7a59-4f0e-9a8f-1d2b3c4d5e6f", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.id); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
