package colex

import "testing"

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	if !IsValidRunID(id) {
		t.Errorf("NewRunID produced an invalid UUID: %q", id)
	}

	other := NewRunID()
	if id == other {
		t.Error("consecutive run IDs must differ")
	}
}

func TestIsValidRunID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"v7", NewRunID(), true},
		{"v4 literal", "f47ac10b-58cc-4372-a567-0e02b2c3d479", true},
		{"empty", "", false},
		{"garbage", "not-a-uuid", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsValidRunID(tt.id) != tt.valid {
				t.Errorf("IsValidRunID(%q) = %v, want %v", tt.id, !tt.valid, tt.valid)
			}
		})
	}
}
