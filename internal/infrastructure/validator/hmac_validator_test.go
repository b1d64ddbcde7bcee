package validator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipper.com/internal/infrastructure/logger"
)

const (
	testSecret = "test-secret-key"
	testBody   = `{"instructions":[{"kind":"verify","accounts":[],"balances":[]}]}`
)

func newTestValidator() *HMACValidator {
	return NewHMACValidator(testSecret, 5*time.Minute, logger.NewWriterLogger(io.Discard)).(*HMACValidator)
}

func signedRequest(timestamp int64, nonce, body, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/bundles", http.NoBody)
	if timestamp != 0 {
		req.Header.Set(HeaderTimestamp, strconv.FormatInt(timestamp, 10))
	}
	if nonce != "" {
		req.Header.Set(HeaderNonce, nonce)
	}
	if signature == "" && timestamp != 0 {
		signature = ComputeSignature(testSecret, strconv.FormatInt(timestamp, 10), nonce, []byte(body))
	}
	if signature != "-" {
		req.Header.Set(HeaderSignature, signature)
	}
	return req
}

func TestHMACValidator_ValidateRequest(t *testing.T) {
	validator := newTestValidator()
	now := time.Now()

	tests := []struct {
		name        string
		timestamp   int64
		nonce       string
		signature   string
		errContains string
	}{
		{
			name:      "valid request",
			timestamp: now.Unix(),
			nonce:     "unique-nonce-1",
		},
		{
			name:        "missing timestamp header",
			nonce:       "unique-nonce-2",
			signature:   "abc",
			errContains: "missing X-Timestamp",
		},
		{
			name:        "missing nonce header",
			timestamp:   now.Unix(),
			signature:   "abc",
			errContains: "missing X-Nonce",
		},
		{
			name:        "missing signature header",
			timestamp:   now.Unix(),
			nonce:       "unique-nonce-3",
			signature:   "-",
			errContains: "missing X-Signature",
		},
		{
			name:        "timestamp out of tolerance (future)",
			timestamp:   now.Add(10 * time.Minute).Unix(),
			nonce:       "unique-nonce-5",
			errContains: "timestamp out of tolerance",
		},
		{
			name:        "timestamp out of tolerance (past)",
			timestamp:   now.Add(-10 * time.Minute).Unix(),
			nonce:       "unique-nonce-6",
			errContains: "timestamp out of tolerance",
		},
		{
			name:        "invalid signature",
			timestamp:   now.Unix(),
			nonce:       "unique-nonce-7",
			signature:   "invalid-signature",
			errContains: "invalid signature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signedRequest(tt.timestamp, tt.nonce, testBody, tt.signature)

			err := validator.ValidateRequest(context.Background(), req, []byte(testBody))
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestHMACValidator_InvalidTimestampFormat(t *testing.T) {
	validator := newTestValidator()

	req := httptest.NewRequest(http.MethodPost, "/bundles", http.NoBody)
	req.Header.Set(HeaderTimestamp, "yesterday")
	req.Header.Set(HeaderNonce, "n")
	req.Header.Set(HeaderSignature, "s")

	err := validator.ValidateRequest(context.Background(), req, []byte(testBody))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid X-Timestamp format")
}

func TestHMACValidator_TamperedBody(t *testing.T) {
	validator := newTestValidator()
	req := signedRequest(time.Now().Unix(), "tamper-nonce", testBody, "")

	tampered := []byte(`{"instructions":[{"kind":"system_transfer"}]}`)
	err := validator.ValidateRequest(context.Background(), req, tampered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature")
}

func TestHMACValidator_ReplayAttack(t *testing.T) {
	validator := newTestValidator()
	req := signedRequest(time.Now().Unix(), "replay-nonce-1", testBody, "")

	require.NoError(t, validator.ValidateRequest(context.Background(), req, []byte(testBody)))

	err := validator.ValidateRequest(context.Background(), req, []byte(testBody))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate nonce")
}

func TestHMACValidator_ForgedRequestDoesNotBurnNonce(t *testing.T) {
	validator := newTestValidator()
	ts := time.Now().Unix()

	forged := signedRequest(ts, "shared-nonce", testBody, "forged")
	require.Error(t, validator.ValidateRequest(context.Background(), forged, []byte(testBody)))

	genuine := signedRequest(ts, "shared-nonce", testBody, "")
	assert.NoError(t, validator.ValidateRequest(context.Background(), genuine, []byte(testBody)))
}

func TestNonceStore_IsValid(t *testing.T) {
	store := NewNonceStore(time.Minute)
	now := time.Now()

	assert.True(t, store.IsValid("nonce-1", now), "first use of nonce should be valid")
	assert.False(t, store.IsValid("nonce-1", now), "reuse of nonce should be invalid")
	assert.True(t, store.IsValid("nonce-2", now), "different nonce should be valid")

	// outside the retention window the nonce is forgotten
	assert.True(t, store.IsValid("nonce-3", now.Add(-2*time.Minute)))
	assert.True(t, store.IsValid("nonce-3", now))
}

func TestNonceStore_Cleanup(t *testing.T) {
	store := NewNonceStore(time.Minute)
	old := time.Now().Add(-time.Hour)
	for i := 0; i < maxTrackedNonces; i++ {
		store.nonces["old-"+strconv.Itoa(i)] = old
	}

	assert.True(t, store.IsValid("fresh", time.Now()))
	assert.Len(t, store.nonces, 1)
}

func TestComputeSignature(t *testing.T) {
	signature := ComputeSignature(testSecret, "1234567890", "test-nonce", []byte(testBody))

	assert.Len(t, signature, 64)
	assert.Equal(t, signature, ComputeSignature(testSecret, "1234567890", "test-nonce", []byte(testBody)))
	assert.NotEqual(t, signature, ComputeSignature(testSecret, "1234567890", "other-nonce", []byte(testBody)))
	assert.NotEqual(t, signature, ComputeSignature("other-secret", "1234567890", "test-nonce", []byte(testBody)))
}
