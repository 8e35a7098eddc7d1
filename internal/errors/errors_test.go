package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestVivariumError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *VivariumError
		wantMsg string
	}{
		{
			name:    "without cause",
			err:     New(ExitGeneralError, "something went wrong"),
			wantMsg: "something went wrong",
		},
		{
			name:    "with cause",
			err:     Wrap(ExitGeneralError, "operation failed", fmt.Errorf("underlying error")),
			wantMsg: "operation failed: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestVivariumError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ExitGeneralError, "wrapped", cause)

	if unwrapped := err.Unwrap(); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if unwrapped := New(ExitGeneralError, "no cause").Unwrap(); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestProjectNotFound(t *testing.T) {
	err := ProjectNotFound("shop")

	if err.Code != ExitProjectNotFound {
		t.Errorf("Code = %d, want %d", err.Code, ExitProjectNotFound)
	}

	want := "no claim found for project shop; run `vivarium setup` first"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestSlotsExhausted(t *testing.T) {
	err := SlotsExhausted("shop", 0, 99)

	if err.Code != ExitSlotsExhausted {
		t.Errorf("Code = %d, want %d", err.Code, ExitSlotsExhausted)
	}

	want := "no free slot in range 0-99 for project shop; tear down another project to free one"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestComposeFailed(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := ComposeFailed("up", cause)

	if err.Code != ExitComposeFailed {
		t.Errorf("Code = %d, want %d", err.Code, ExitComposeFailed)
	}
	if err.Message != "compose up failed" {
		t.Errorf("Message = %q, want %q", err.Message, "compose up failed")
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
}

func TestPrerequisiteMissing(t *testing.T) {
	err := PrerequisiteMissing([]string{"docker", "aws"})

	if err.Code != ExitPrerequisiteMissing {
		t.Errorf("Code = %d, want %d", err.Code, ExitPrerequisiteMissing)
	}
	if err.Message != "missing required tools: docker, aws" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"VivariumError", ProjectNotFound("x"), ExitProjectNotFound},
		{"wrapped VivariumError", fmt.Errorf("outer: %w", SlotsExhausted("x", 0, 99)), ExitSlotsExhausted},
		{"registry", RegistryError("write", fmt.Errorf("disk full")), ExitRegistryError},
		{"config", ConfigError("bad", nil), ExitConfigError},
		{"regular error", fmt.Errorf("some error"), ExitGeneralError},
		{"nil error", nil, ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.wantCode {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.wantCode)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("setup: %w", SlotsExhausted("x", 0, 99))

	if !HasCode(err, ExitSlotsExhausted) {
		t.Error("HasCode should find the wrapped exit code")
	}
	if HasCode(err, ExitProjectNotFound) {
		t.Error("HasCode should not match a different code")
	}
	if HasCode(fmt.Errorf("plain"), ExitGeneralError) {
		t.Error("HasCode should be false for non-vivarium errors")
	}
}

func TestErrorChaining(t *testing.T) {
	root := fmt.Errorf("root cause")
	middle := Wrap(ExitConfigError, "config error", root)
	outer := fmt.Errorf("operation failed: %w", middle)

	if !errors.Is(outer, root) {
		t.Error("errors.Is should find root cause")
	}

	var vErr *VivariumError
	if !As(outer, &vErr) {
		t.Fatal("As should find VivariumError")
	}
	if vErr.Code != ExitConfigError {
		t.Errorf("Code = %d, want %d", vErr.Code, ExitConfigError)
	}
	if !Is(outer, root) {
		t.Error("Is should find root cause")
	}
}
