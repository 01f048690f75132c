package domain

import (
	"errors"
	"testing"
)

func TestFieldErrors_AddAndMerge(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("amount", "must be positive")
	fe.AddErr("date", ErrInvalidDate)

	nested := FieldErrors{}
	nested.Add("amount", "exceeds maximum")
	nested.Add(BaseField, "accounts have different currencies")

	fe.Merge(nested)

	if fe.Empty() {
		t.Fatal("expected collected errors")
	}

	if got := fe.On("amount"); len(got) != 2 {
		t.Errorf("expected 2 amount messages, got %d", len(got))
	}

	if got := fe.On(BaseField); len(got) != 1 {
		t.Errorf("expected 1 base message, got %d", len(got))
	}
}

func TestFieldErrors_ErrorRendering(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("reference", "is required")
	fe.Add("amount", "must be positive")

	// Rendering sorts field names for stability.
	want := "amount: must be positive, reference: is required"
	if fe.Error() != want {
		t.Errorf("Error() = %q, want %q", fe.Error(), want)
	}
}

func TestAsFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("amount", "must be positive")

	var err error = fe
	got, ok := AsFieldErrors(err)
	if !ok {
		t.Fatal("expected FieldErrors to be extractable")
	}

	if len(got.On("amount")) != 1 {
		t.Error("expected amount message to survive extraction")
	}

	if _, ok := AsFieldErrors(errors.New("plain")); ok {
		t.Error("plain errors must not extract as FieldErrors")
	}
}
