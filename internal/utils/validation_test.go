package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type scoredInput struct {
	Awareness *int   `validate:"omitempty,score"`
	Score     int    `validate:"score"`
	Type      string `validate:"stakeholder_type"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	if err := RegisterValidators(v); err != nil {
		t.Fatalf("RegisterValidators() error = %v", err)
	}
	return v
}

func TestScoreRule(t *testing.T) {
	v := newTestValidator(t)
	neg := -1

	tests := []struct {
		name    string
		input   scoredInput
		wantErr bool
	}{
		{"zero", scoredInput{Score: 0}, false},
		{"hundred", scoredInput{Score: 100}, false},
		{"above range", scoredInput{Score: 101}, true},
		{"below range", scoredInput{Score: -5}, true},
		{"nil pointer skipped", scoredInput{Score: 50, Awareness: nil}, false},
		{"negative pointer", scoredInput{Score: 50, Awareness: &neg}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Struct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStakeholderTypeRule(t *testing.T) {
	v := newTestValidator(t)

	for _, typ := range append([]string{""}, StakeholderTypes...) {
		if err := v.Struct(scoredInput{Type: typ}); err != nil {
			t.Errorf("type %q rejected: %v", typ, err)
		}
	}
	if err := v.Struct(scoredInput{Type: "hostile"}); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestRegisterBindingValidators(t *testing.T) {
	if err := RegisterBindingValidators(); err != nil {
		t.Fatalf("RegisterBindingValidators() error = %v", err)
	}
}
