// Error types surfaced by the catalog client. The client never swallows a
// failure: HTTP-level rejections from the provider are mapped to the typed
// errors below and returned to the caller unchanged. Fallback policy belongs
// to the orchestrator.
package catalog

import (
	"errors"
	"fmt"
	"net/http"

	libspotify "github.com/zmb3/spotify"
)

// ErrUnauthorized indicates the bearer credential was rejected by the
// provider (HTTP 401 or 403). Callers should re-trigger login; the client
// never refreshes or retries.
var ErrUnauthorized = errors.New("catalog: unauthorized")

// ErrNoValidSeeds indicates seed filtering left zero usable track seeds. The
// client does not silently substitute genre seeds in that case; falling back
// to another seed type is the orchestrator's decision.
var ErrNoValidSeeds = errors.New("catalog: no valid seed tracks")

// UpstreamError reports a non-success HTTP response from the provider other
// than a credential rejection.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("catalog: upstream status %d: %s", e.Status, e.Body)
}

// mapErr converts errors returned by the wrapped Spotify library into the
// package's error taxonomy. Transport errors pass through unchanged.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var se libspotify.Error
	if errors.As(err, &se) {
		if se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden {
			return fmt.Errorf("%w: %s", ErrUnauthorized, se.Message)
		}
		return &UpstreamError{Status: se.Status, Body: se.Message}
	}
	return err
}
