package validator

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"zipper.com/internal/domain/port"
	"zipper.com/internal/infrastructure/logger"
)

// Submission headers
const (
	HeaderTimestamp = "X-Timestamp"
	HeaderNonce     = "X-Nonce"
	HeaderSignature = "X-Signature"
)

const maxTrackedNonces = 10000

// NonceStore tracks used nonces to prevent replayed bundle submissions
type NonceStore struct {
	mu        sync.Mutex
	retention time.Duration
	nonces    map[string]time.Time
}

// NewNonceStore creates a nonce store that forgets nonces after retention
func NewNonceStore(retention time.Duration) *NonceStore {
	return &NonceStore{
		retention: retention,
		nonces:    make(map[string]time.Time),
	}
}

// IsValid checks if a nonce is valid (not seen before) and records it
func (ns *NonceStore) IsValid(nonce string, timestamp time.Time) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if seen, exists := ns.nonces[nonce]; exists && time.Since(seen) <= ns.retention {
		return false
	}
	ns.nonces[nonce] = timestamp

	if len(ns.nonces) > maxTrackedNonces {
		ns.cleanup()
	}
	return true
}

// cleanup removes nonces older than the retention window
func (ns *NonceStore) cleanup() {
	now := time.Now()
	for nonce, timestamp := range ns.nonces {
		if now.Sub(timestamp) > ns.retention {
			delete(ns.nonces, nonce)
		}
	}
}

// HMACValidator implements the BundleValidator port. A submission is signed
// over timestamp, nonce and the raw bundle body, so an intermediary cannot
// alter the bundle without invalidating the signature.
type HMACValidator struct {
	secret             string
	nonceStore         *NonceStore
	timestampTolerance time.Duration
	logger             logger.Logger
}

// NewHMACValidator creates a new HMAC validator
func NewHMACValidator(
	secret string,
	timestampTolerance time.Duration,
	logger logger.Logger,
) port.BundleValidator {
	return &HMACValidator{
		secret: secret,
		// a nonce must outlive every timestamp that could still be accepted
		nonceStore:         NewNonceStore(2 * timestampTolerance),
		timestampTolerance: timestampTolerance,
		logger:             logger,
	}
}

// ValidateRequest validates the signature headers of a bundle submission
func (v *HMACValidator) ValidateRequest(ctx context.Context, r *http.Request, body []byte) error {
	timestampStr := r.Header.Get(HeaderTimestamp)
	nonce := r.Header.Get(HeaderNonce)
	signature := r.Header.Get(HeaderSignature)

	if timestampStr == "" {
		return fmt.Errorf("missing %s header", HeaderTimestamp)
	}
	if nonce == "" {
		return fmt.Errorf("missing %s header", HeaderNonce)
	}
	if signature == "" {
		return fmt.Errorf("missing %s header", HeaderSignature)
	}

	timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s format: %w", HeaderTimestamp, err)
	}
	requestTime := time.Unix(timestamp, 0)

	now := time.Now()
	timeDiff := now.Sub(requestTime)
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	if timeDiff > v.timestampTolerance {
		v.logger.LogWarning(ctx, "Request timestamp out of tolerance",
			"timestamp", timestamp,
			"current_time", now.Unix(),
			"difference_seconds", timeDiff.Seconds(),
			"tolerance_seconds", v.timestampTolerance.Seconds())
		return fmt.Errorf("timestamp out of tolerance: difference is %v, max allowed is %v", timeDiff, v.timestampTolerance)
	}

	expected := ComputeSignature(v.secret, timestampStr, nonce, body)

	// Constant-time comparison
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		v.logger.LogWarning(ctx, "Invalid bundle signature",
			"nonce", nonce,
			"timestamp", timestamp)
		return fmt.Errorf("invalid signature")
	}

	// Only authentic submissions consume a nonce
	if !v.nonceStore.IsValid(nonce, requestTime) {
		v.logger.LogWarning(ctx, "Duplicate nonce detected (replay attack)",
			"nonce", nonce,
			"timestamp", timestamp)
		return fmt.Errorf("duplicate nonce detected: possible replay attack")
	}

	return nil
}

// ComputeSignature returns the hex HMAC-SHA256 of
// timestamp + "\n" + nonce + "\n" + body
func ComputeSignature(secret, timestamp, nonce string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "\n" + nonce + "\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
