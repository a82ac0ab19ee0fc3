package types

import (
	"encoding/json"
	"testing"
)

func TestNewErrorEnvelopeHonorsDetailsAllowed(t *testing.T) {
	details := map[string]string{"email": "is required"}

	env := NewErrorEnvelope("VALIDATION_ERROR", "validation failed", details, true)
	if env.Error.Details == nil {
		t.Fatal("expected details to be kept")
	}

	env = NewErrorEnvelope("INTERNAL_ERROR", "internal server error", details, false)
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(raw); got != `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestReceiptShape(t *testing.T) {
	raw, err := json.Marshal(Receipt{Received: true})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"received":true}` {
		t.Fatalf("unexpected body %s", raw)
	}
}
