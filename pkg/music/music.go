// Package music defines the data model and collaborator interfaces shared by
// the recommendation pipeline. Tracks and artists are decoded once at the
// client boundary into the explicit types below so the rest of the
// application never inspects provider payloads directly. Missing names fall
// back to "Unknown" at decode time rather than at every consumption site.
package music

import "context"

// TimeRange selects the listening-history window used by the catalog
// provider's top tracks and top artists endpoints.
type TimeRange string

const (
	RangeShortTerm  TimeRange = "short_term"
	RangeMediumTerm TimeRange = "medium_term"
	RangeLongTerm   TimeRange = "long_term"
)

// Source identifies which strategy ultimately produced a recommendation
// result. It is used purely for caller messaging and the run log.
type Source string

const (
	SourceMLRecommender   Source = "ml_recommender"
	SourceRecommendations Source = "recommendations"
	SourceRecentlyPlayed  Source = "recently_played"
	SourceTopTracks       Source = "top_tracks"
	SourceMood            Source = "mood"
)

// Track is a track as known to this application. ID is the provider-assigned
// identifier and is required for any further lookup; two tracks with the same
// ID are the same track regardless of other fields.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	AlbumArtURL string   `json:"album_art_url,omitempty"`
	OpenURL     string   `json:"open_url,omitempty"`
	Popularity  int      `json:"popularity,omitempty"`
}

// Artist mirrors Track's identity rule for artists.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Popularity int    `json:"popularity,omitempty"`
}

// SeedSet carries the seeds for one recommendation request. At most one of
// Tracks or Artists is used per request, never both; the catalog provider
// accepts at most five seed values.
type SeedSet struct {
	Tracks  []Track
	Artists []Artist
}

// Result is the output of one orchestration run. Tracks may be empty, in
// which case Source still names the last attempted strategy. Advisory is a
// non-fatal message for the caller, set when the run degraded to showing the
// user's own top tracks.
type Result struct {
	Tracks   []Track `json:"tracks"`
	Source   Source  `json:"source"`
	Advisory string  `json:"advisory,omitempty"`
}

// Playlist is a playlist created on the catalog provider. The ID is assigned
// by the provider.
type Playlist struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// User identifies the authenticated account on the catalog provider.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Catalog exposes the catalog provider operations used by the pipeline. Every
// method takes an opaque bearer credential obtained from the identity
// collaborator; the credential is never stored or refreshed here and a
// rejected credential surfaces as an error. Implementations perform no
// retries.
type Catalog interface {
	// TopTracks returns the user's most listened tracks for the given time
	// range, most listened first, as ranked by the provider.
	TopTracks(ctx context.Context, cred string, rng TimeRange, limit int) ([]Track, error)

	// TopArtists returns the user's most listened artists for the time range.
	TopArtists(ctx context.Context, cred string, rng TimeRange, limit int) ([]Artist, error)

	// RecentlyPlayed returns the user's recently played tracks, most recent
	// first.
	RecentlyPlayed(ctx context.Context, cred string, limit int) ([]Track, error)

	// RecommendationsBySeed returns tracks related to the supplied seeds.
	// Track seeds are filtered and capped before use; see the catalog
	// package for the seed selection policy.
	RecommendationsBySeed(ctx context.Context, cred string, seeds SeedSet, limit int) ([]Track, error)

	// TracksByID resolves track IDs to full tracks in provider order.
	// Unknown IDs are dropped from the result rather than reported.
	TracksByID(ctx context.Context, cred string, ids []string) ([]Track, error)

	// CurrentUser returns the account that owns the credential.
	CurrentUser(ctx context.Context, cred string) (User, error)

	// CreatePlaylist creates an empty playlist owned by userID.
	CreatePlaylist(ctx context.Context, cred, userID, name, description string, public bool) (Playlist, error)

	// AddTracksToPlaylist appends the given tracks to a playlist in order.
	// The provider accepts or rejects the whole batch; the call is never
	// split or retried.
	AddTracksToPlaylist(ctx context.Context, cred, playlistID string, trackIDs []string) error
}

// Recommender exposes the external machine-learning recommendation service.
// Both methods return ranked track IDs, most recommended first. The service
// has no uptime guarantee; failures are surfaced to the caller unchanged and
// any fallback policy lives in the orchestrator, not here.
type Recommender interface {
	RecommendPersonal(ctx context.Context, topTrackIDs, recentTrackIDs []string) ([]string, error)
	RecommendByMood(ctx context.Context, mood string) ([]string, error)
}
