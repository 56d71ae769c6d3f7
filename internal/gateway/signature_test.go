package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"payment_id":"gw-pay-1","status":"success"}`)
	secret := "webhook-secret"

	sig := Sign(payload, secret)
	assert.True(t, VerifySignature(payload, sig, secret))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	payload := []byte(`{"payment_id":"gw-pay-1","status":"success"}`)
	secret := "webhook-secret"
	sig := Sign(payload, secret)

	tampered := []byte(`{"payment_id":"gw-pay-1","status":"failed"}`)
	assert.False(t, VerifySignature(tampered, sig, secret))
	assert.False(t, VerifySignature(payload, sig, "other-secret"))
	assert.False(t, VerifySignature(payload, "deadbeef", secret))
}

func TestVerifySignatureRejectsEmpty(t *testing.T) {
	payload := []byte(`{}`)
	assert.False(t, VerifySignature(payload, "", "secret"))
	assert.False(t, VerifySignature(payload, Sign(payload, "secret"), ""))
}
