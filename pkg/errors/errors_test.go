package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeInvalidShape, "unknown shape %q", "comet"),
			want: `INVALID_SHAPE: unknown shape "comet"`,
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeFileNotFound, errors.New("no such file"), "input %s", "tree.yaml"),
			want: "FILE_NOT_FOUND: input tree.yaml: no such file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "redis get %s", "growtree:layout:abc")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Message != "redis get growtree:layout:abc" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestCodeLookup(t *testing.T) {
	sector := New(ErrCodeInvalidSector, "sector spans 400 degrees")
	tests := []struct {
		name string
		err  error
		code Code
		is   bool
	}{
		{"direct", sector, ErrCodeInvalidSector, true},
		{"other code", sector, ErrCodeInvalidInput, false},
		{"fmt wrapped", fmt.Errorf("category %q: %w", "fire", sector), ErrCodeInvalidSector, true},
		{"outermost code wins", Wrap(ErrCodeInvalidInput, sector, "category %q", "fire"), ErrCodeInvalidInput, true},
		{"plain error", errors.New("plain"), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); tt.is && got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := Is(tt.err, tt.code); got != tt.is {
				t.Errorf("Is(%q) = %v, want %v", tt.code, got, tt.is)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidConfig, "max_tiers must be >= 2, got 1"), "max_tiers must be >= 2, got 1"},
		{"coded behind fmt", fmt.Errorf("load: %w", New(ErrCodeInvalidFormat, "decode yaml input")), "decode yaml input"},
		{"plain", errors.New("disk full"), "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
