package hooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidNonce indicates a malformed or forged token.
var ErrInvalidNonce = errors.New("invalid nonce")

// ErrExpiredNonce indicates a token past its lifetime.
var ErrExpiredNonce = errors.New("nonce expired")

// ErrActionMismatch indicates a token minted for a different action.
var ErrActionMismatch = errors.New("nonce action mismatch")

// NonceService mints and verifies HMAC-signed one-time form tokens.
//
// A token is action:id:expiry signed with the service secret. Tokens
// are stateless: verification checks the signature and the expiry, not
// a server-side ledger, mirroring the host platform's nonce scheme.
type NonceService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewNonceService creates a service signing with secret. Tokens live
// for ttl; a non-positive ttl defaults to 12 hours.
func NewNonceService(secret string, ttl time.Duration) *NonceService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &NonceService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create mints a token bound to action.
func (n *NonceService) Create(action string) (string, error) {
	if action == "" {
		return "", fmt.Errorf("%w: empty action", ErrInvalidNonce)
	}

	payload := strings.Join([]string{
		action,
		uuid.NewString(),
		strconv.FormatInt(n.now().Add(n.ttl).Unix(), 10),
	}, ":")

	mac := n.sign(payload)
	token := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." + mac
	return token, nil
}

// Verify checks that token is well-formed, signed by this service,
// bound to action, and not expired.
func (n *NonceService) Verify(token, action string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidNonce)
	}

	encoded, mac, ok := strings.Cut(token, ".")
	if !ok {
		return fmt.Errorf("%w: missing signature", ErrInvalidNonce)
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("%w: bad encoding", ErrInvalidNonce)
	}
	payload := string(raw)

	if !hmac.Equal([]byte(n.sign(payload)), []byte(mac)) {
		return fmt.Errorf("%w: bad signature", ErrInvalidNonce)
	}

	parts := strings.Split(payload, ":")
	if len(parts) != 3 {
		return fmt.Errorf("%w: malformed payload", ErrInvalidNonce)
	}

	if parts[0] != action {
		return fmt.Errorf("%w: got %q, want %q", ErrActionMismatch, parts[0], action)
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: malformed expiry", ErrInvalidNonce)
	}
	if n.now().Unix() > expiry {
		return ErrExpiredNonce
	}

	return nil
}

func (n *NonceService) sign(payload string) string {
	h := hmac.New(sha256.New, n.secret)
	h.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
