package port

import (
	"context"
	"net/http"
)

// BundleValidator is the port for authenticating bundle submissions
type BundleValidator interface {
	ValidateRequest(ctx context.Context, r *http.Request, body []byte) error
}
