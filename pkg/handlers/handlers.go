// Package handlers contains the HTTP handlers for tunesage. The Application
// struct bundles the pipeline services the handlers depend on; the concrete
// orchestrator and materializer satisfy the narrow interfaces below so
// handler tests can substitute stubs.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	libspotify "github.com/zmb3/spotify"

	"tunesage/pkg/catalog"
	"tunesage/pkg/db"
	"tunesage/pkg/music"
)

var log = logrus.WithField("component", "handlers")

// RecommendationService is the subset of the orchestrator used by handlers.
type RecommendationService interface {
	Personal(ctx context.Context, cred string, rng music.TimeRange) (music.Result, error)
	Mood(ctx context.Context, cred, mood string) (music.Result, error)
	Seeded(ctx context.Context, cred string, seedIDs []string) (music.Result, error)
}

// PlaylistService materializes track lists as provider playlists.
type PlaylistService interface {
	Materialize(ctx context.Context, cred, userID, name, description string, tracks []music.Track) (music.Playlist, error)
}

// Application holds the dependencies shared by all HTTP handlers.
type Application struct {
	Recommendations RecommendationService
	Playlists       PlaylistService
	Catalog         music.Catalog
	Authenticator   libspotify.Authenticator
	DB              *db.DB
	SignKey         []byte
}

// timeRangeFromQuery parses the time_range query parameter, defaulting to the
// provider's medium term window.
func timeRangeFromQuery(r *http.Request) music.TimeRange {
	switch music.TimeRange(r.URL.Query().Get("time_range")) {
	case music.RangeShortTerm:
		return music.RangeShortTerm
	case music.RangeLongTerm:
		return music.RangeLongTerm
	default:
		return music.RangeMediumTerm
	}
}

// respondResultError maps pipeline errors to HTTP responses. Credential
// rejections become 401 so the frontend can re-trigger login; everything else
// is reported as an upstream failure without leaking raw error text.
func respondResultError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, catalog.ErrUnauthorized) {
		respondJSONError(w, http.StatusUnauthorized, "authentication expired")
		return
	}
	respondJSONError(w, http.StatusBadGateway, msg)
}

// recordRun logs the run outcome for insights. Failures here never affect the
// response.
func (app *Application) recordRun(ctx context.Context, userID string, res music.Result) {
	if app.DB == nil || userID == "" {
		return
	}
	if err := app.DB.AddRun(ctx, userID, res.Source, len(res.Tracks)); err != nil {
		log.WithError(err).Warn("record recommendation run")
	}
}
