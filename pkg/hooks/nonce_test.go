package hooks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceRoundTrip(t *testing.T) {
	svc := NewNonceService("secret", time.Minute)

	token, err := svc.Create("save-attribute")
	require.NoError(t, err)

	assert.NoError(t, svc.Verify(token, "save-attribute"))
}

func TestNonceTokensAreUnique(t *testing.T) {
	svc := NewNonceService("secret", time.Minute)

	a, err := svc.Create("action")
	require.NoError(t, err)
	b, err := svc.Create("action")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNonceRejectsWrongAction(t *testing.T) {
	svc := NewNonceService("secret", time.Minute)

	token, err := svc.Create("save-attribute")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Verify(token, "delete-attribute"), ErrActionMismatch)
}

func TestNonceRejectsWrongSecret(t *testing.T) {
	minter := NewNonceService("secret-a", time.Minute)
	verifier := NewNonceService("secret-b", time.Minute)

	token, err := minter.Create("action")
	require.NoError(t, err)

	assert.ErrorIs(t, verifier.Verify(token, "action"), ErrInvalidNonce)
}

func TestNonceRejectsTampering(t *testing.T) {
	svc := NewNonceService("secret", time.Minute)

	token, err := svc.Create("action")
	require.NoError(t, err)

	tampered := "A" + token[1:]
	assert.ErrorIs(t, svc.Verify(tampered, "action"), ErrInvalidNonce)
}

func TestNonceRejectsEmptyAndMalformed(t *testing.T) {
	svc := NewNonceService("secret", time.Minute)

	assert.ErrorIs(t, svc.Verify("", "action"), ErrInvalidNonce)
	assert.ErrorIs(t, svc.Verify("no-signature-part", "action"), ErrInvalidNonce)
	assert.ErrorIs(t, svc.Verify("!!!.mac", "action"), ErrInvalidNonce)
}

func TestNonceExpiry(t *testing.T) {
	svc := NewNonceService("secret", time.Minute)

	now := time.Now()
	svc.now = func() time.Time { return now }

	token, err := svc.Create("action")
	require.NoError(t, err)

	require.NoError(t, svc.Verify(token, "action"))

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	assert.ErrorIs(t, svc.Verify(token, "action"), ErrExpiredNonce)
}

func TestNonceDefaultTTL(t *testing.T) {
	svc := NewNonceService("secret", 0)
	assert.Equal(t, 12*time.Hour, svc.ttl)
}

func TestNonceEmptyAction(t *testing.T) {
	svc := NewNonceService("secret", time.Minute)

	_, err := svc.Create("")
	assert.ErrorIs(t, err, ErrInvalidNonce)
}
