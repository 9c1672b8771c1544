package errors

import (
	"strings"
	"testing"
)

func TestValidateVariableName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Fever", false},
		{"blood pressure", false},
		{"X_1", false},
		{"", true},
		{"tab\there", true},
		{strings.Repeat("a", 256), false},
		{strings.Repeat("a", 257), true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateVariableName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVariableName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidDataset) {
				t.Errorf("ValidateVariableName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidDataset)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "data/train.json", false},
		{"absolute", "/tmp/model.json", false},
		{"empty", "", true},
		{"null byte", "data\x00.json", true},
		{"too long", strings.Repeat("a", 4097), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateHyperparameterKey(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"maxK", false},
		{"scoreFunction", false},
		{"nx", false},
		{"", true},
		{"max-k", true},
		{"1st", true},
		{"max k", true},
	}
	for _, tt := range tests {
		if err := ValidateHyperparameterKey(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateHyperparameterKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}
