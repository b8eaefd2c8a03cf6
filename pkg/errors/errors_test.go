package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/mrkline/modman/pkg/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "profile_exists_error",
			code:    errors.ErrProfileExists,
			message: "a profile already exists",
			wantStr: "[PROFILE_EXISTS] a profile already exists",
		},
		{
			name:    "mod_malformed_error",
			code:    errors.ErrModMalformed,
			message: "missing VERSION.txt",
			wantStr: "[MOD_MALFORMED] missing VERSION.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			if err.Code != tt.code {
				t.Errorf("New() code = %v, want %v", err.Code, tt.code)
			}
			if err.Message != tt.message {
				t.Errorf("New() message = %q, want %q", err.Message, tt.message)
			}
			if err.Details == nil {
				t.Error("New() details should be initialized")
			}
			if got := err.Error(); got != tt.wantStr {
				t.Errorf("Error() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := errors.Wrap(cause, errors.ErrIO, "couldn't open backup file")

	if err.Wrapped != cause {
		t.Error("Wrap() should preserve the wrapped error")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}

	wantStr := "[IO] couldn't open backup file: permission denied"
	if got := err.Error(); got != wantStr {
		t.Errorf("Error() = %q, want %q", got, wantStr)
	}

	if errors.Wrap(nil, errors.ErrIO, "shouldn't happen") != nil {
		t.Error("Wrap(nil, ...) should return nil")
	}
}

func TestIsCodeAndGetCode(t *testing.T) {
	err := errors.Newf(errors.ErrConflict, "%s from %s would overwrite the same file from %s", "A.txt", "mod-b", "mod-a")

	if !errors.IsCode(err, errors.ErrConflict) {
		t.Error("IsCode() should match the error's own code")
	}
	if errors.IsCode(err, errors.ErrIO) {
		t.Error("IsCode() should not match an unrelated code")
	}
	if errors.GetCode(stderrors.New("plain error")) != errors.ErrUnknown {
		t.Error("GetCode() on a non-modman error should return ErrUnknown")
	}
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrConflict, "path conflict").
		WithDetail("path", "A.txt").
		WithDetail("mod", "mod1.zip")

	if err.Details["path"] != "A.txt" || err.Details["mod"] != "mod1.zip" {
		t.Errorf("WithDetail() didn't record details: %+v", err.Details)
	}
}
