package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/convpipe/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "John")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorCheck(t *testing.T) {
	v := New()
	v.Check(true, "a", "never").Check(false, "b", "must be set")
	if len(v.Errors()) != 1 || v.Errors()[0].Field != "b" {
		t.Fatalf("unexpected errors %v", v.Errors())
	}
	err := v.Validate()
	if !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
	if !strings.Contains(err.Error(), "b: must be set") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidatorNoErrors(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

type limits struct {
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxDepth int           `mapstructure:"max_call_depth" validate:"gte=0,lte=10000"`
}

type settings struct {
	Name   string `mapstructure:"name" validate:"required"`
	Format string `json:"format" validate:"oneof=json console"`
	Limits limits `mapstructure:"limits"`
}

func TestValidateStruct(t *testing.T) {
	ok := settings{Name: "x", Format: "json"}
	if err := Validate(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := settings{Format: "xml", Limits: limits{MaxDepth: 20000}}
	err := Validate(bad)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"name: is required", "format: must be one of: json console", "limits.max_call_depth: must be at most 10000"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
