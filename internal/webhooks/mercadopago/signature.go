package mercadopagowebhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// SignatureHeader carries "ts=<unix>,v1=<hex hmac>".
const (
	SignatureHeader = "X-Signature"
	RequestIDHeader = "X-Request-Id"
)

// Verifier checks the x-signature header against the shared webhook secret.
// A Verifier with an empty secret accepts every delivery.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(strings.TrimSpace(secret))}
}

// Enabled reports whether signatures are enforced.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify validates signature over the manifest id:<dataID>;request-id:<requestID>;ts:<ts>;
func (v *Verifier) Verify(signature, requestID, dataID string) error {
	if !v.Enabled() {
		return nil
	}
	ts, sig := splitSignature(signature)
	if ts == "" || sig == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing webhook signature")
	}
	expected, err := hex.DecodeString(sig)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed webhook signature")
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(Manifest(dataID, requestID, ts)))
	if !hmac.Equal(mac.Sum(nil), expected) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature")
	}
	return nil
}

// Manifest builds the signed template. Empty parts are omitted; ids are lowercased.
func Manifest(dataID, requestID, ts string) string {
	var b strings.Builder
	if dataID != "" {
		fmt.Fprintf(&b, "id:%s;", strings.ToLower(dataID))
	}
	if requestID != "" {
		fmt.Fprintf(&b, "request-id:%s;", requestID)
	}
	if ts != "" {
		fmt.Fprintf(&b, "ts:%s;", ts)
	}
	return b.String()
}

func splitSignature(header string) (ts, v1 string) {
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	return ts, v1
}
