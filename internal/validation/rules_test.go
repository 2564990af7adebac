package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/openaccel/beamauth/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, WrapValidationError(nil))
	})

	t.Run("non-nil error", func(t *testing.T) {
		err := WrapValidationError(assert.AnError)
		assert.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"hello", false},
		{"  hello  ", false},
		{"", true},
		{"   ", true},
		{"\t\n", true},
	}

	for _, tt := range tests {
		err := NotBlank.Validate(tt.value)
		if tt.wantErr {
			assert.Error(t, err, "value %q", tt.value)
		} else {
			assert.NoError(t, err, "value %q", tt.value)
		}
	}
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("smithj"))
	assert.Error(t, NoWhitespace.Validate(" smithj"))
	assert.Error(t, NoWhitespace.Validate("smithj "))
}

func TestNotPast(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	rule := NotPast{Now: func() time.Time { return now }}

	t.Run("future time passes", func(t *testing.T) {
		assert.NoError(t, rule.Validate(now.Add(time.Hour)))
	})

	t.Run("past time fails", func(t *testing.T) {
		assert.Error(t, rule.Validate(now.Add(-time.Hour)))
	})

	t.Run("nil pointer skipped", func(t *testing.T) {
		var ts *time.Time
		assert.NoError(t, rule.Validate(ts))
	})

	t.Run("pointer to past time fails", func(t *testing.T) {
		past := now.Add(-time.Minute)
		assert.Error(t, rule.Validate(&past))
	})

	t.Run("zero time skipped", func(t *testing.T) {
		assert.NoError(t, rule.Validate(time.Time{}))
	})

	t.Run("non-time value fails", func(t *testing.T) {
		assert.Error(t, rule.Validate("2026-02-10"))
	})
}

func TestVerificationStatus(t *testing.T) {
	rule := VerificationStatus{Allowed: []int{1, 50, 100}}

	assert.NoError(t, rule.Validate(1))
	assert.NoError(t, rule.Validate(50))
	assert.NoError(t, rule.Validate(100))
	assert.Error(t, rule.Validate(2))
	assert.Error(t, rule.Validate(0))
	assert.Error(t, rule.Validate("1"))
}
