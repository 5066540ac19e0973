// Package catalog wraps the official Spotify client library with the
// operations the recommendation pipeline needs: listening history, seeded
// recommendations, track resolution and playlist writes. Each operation is
// stateless request/response and authenticates with the bearer credential
// handed in per call; a fresh wrapped client is built from the credential on
// every operation so nothing token-shaped is retained between calls.
//
// The wrapped library does not accept a context, so cancellation is checked
// explicitly before each call.
package catalog

import (
	"context"
	"strings"

	libspotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"tunesage/pkg/music"
)

const (
	// seedLimit is the provider's cap on seed values per request.
	seedLimit = 5
	// seedPopularityFloor filters weakly known tracks out of seed sets.
	seedPopularityFloor = 50

	maxPageLimit  = 50
	maxRecLimit   = 100
	maxBatchIDs   = 50
	unknownName   = "Unknown"
	unknownArtist = "Unknown Artist"
)

// defaultGenreSeeds is used when a request supplies neither track nor artist
// seeds.
var defaultGenreSeeds = []string{"pop", "rock", "hip-hop"}

// api is the subset of the spotify.Client used by this package. It allows the
// concrete client to be replaced in tests.
type api interface {
	CurrentUsersTopTracksOpt(opt *libspotify.Options) (*libspotify.FullTrackPage, error)
	CurrentUsersTopArtistsOpt(opt *libspotify.Options) (*libspotify.FullArtistPage, error)
	PlayerRecentlyPlayedOpt(opt *libspotify.RecentlyPlayedOptions) ([]libspotify.RecentlyPlayedItem, error)
	GetRecommendations(seeds libspotify.Seeds, attrs *libspotify.TrackAttributes, opt *libspotify.Options) (*libspotify.Recommendations, error)
	GetTracks(ids ...libspotify.ID) ([]*libspotify.FullTrack, error)
	CurrentUser() (*libspotify.PrivateUser, error)
	CreatePlaylistForUser(userID, playlistName, description string, public bool) (*libspotify.FullPlaylist, error)
	AddTracksToPlaylist(playlistID libspotify.ID, trackIDs ...libspotify.ID) (string, error)
}

// Client implements music.Catalog against the Spotify Web API.
type Client struct {
	// newAPI builds the wrapped client for one bearer credential. Tests
	// substitute this to avoid network access.
	newAPI func(cred string) api
}

var _ music.Catalog = (*Client)(nil)

// New returns a Client ready for API calls. No credentials are required at
// construction time; every operation authenticates with the bearer credential
// it receives.
func New() *Client {
	return &Client{newAPI: func(cred string) api {
		c := libspotify.Authenticator{}.NewClient(&oauth2.Token{AccessToken: cred})
		return &c
	}}
}

// TopTracks implements music.Catalog. Results are ordered most listened first
// as ranked by the provider.
func (c *Client) TopTracks(ctx context.Context, cred string, rng music.TimeRange, limit int) ([]music.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, maxPageLimit)
	tr := libTimerange(rng)
	page, err := c.newAPI(cred).CurrentUsersTopTracksOpt(&libspotify.Options{Limit: &limit, Timerange: &tr})
	if err != nil {
		return nil, mapErr(err)
	}
	tracks := make([]music.Track, len(page.Tracks))
	for i, t := range page.Tracks {
		tracks[i] = fullTrack(t)
	}
	return tracks, nil
}

// TopArtists implements music.Catalog.
func (c *Client) TopArtists(ctx context.Context, cred string, rng music.TimeRange, limit int) ([]music.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit = clampLimit(limit, maxPageLimit)
	tr := libTimerange(rng)
	page, err := c.newAPI(cred).CurrentUsersTopArtistsOpt(&libspotify.Options{Limit: &limit, Timerange: &tr})
	if err != nil {
		return nil, mapErr(err)
	}
	artists := make([]music.Artist, len(page.Artists))
	for i, a := range page.Artists {
		name := a.Name
		if name == "" {
			name = unknownName
		}
		artists[i] = music.Artist{ID: string(a.ID), Name: name, Popularity: a.Popularity}
	}
	return artists, nil
}

// RecentlyPlayed implements music.Catalog. Results are ordered most recent
// first.
func (c *Client) RecentlyPlayed(ctx context.Context, cred string, limit int) ([]music.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := c.newAPI(cred).PlayerRecentlyPlayedOpt(&libspotify.RecentlyPlayedOptions{Limit: clampLimit(limit, maxPageLimit)})
	if err != nil {
		return nil, mapErr(err)
	}
	tracks := make([]music.Track, len(items))
	for i, it := range items {
		tracks[i] = simpleTrack(it.Track)
	}
	return tracks, nil
}

// RecommendationsBySeed implements music.Catalog. Seed selection policy:
// track seeds are filtered to a non-empty ID and popularity above the floor,
// then capped at five; zero survivors fail with ErrNoValidSeeds. Without
// track seeds up to five artist IDs are used unfiltered, and with neither the
// fixed default genre seeds apply.
func (c *Client) RecommendationsBySeed(ctx context.Context, cred string, seeds music.SeedSet, limit int) ([]music.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	libSeeds, err := buildSeeds(seeds)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, maxRecLimit)
	recs, err := c.newAPI(cred).GetRecommendations(libSeeds, nil, &libspotify.Options{Limit: &limit})
	if err != nil {
		return nil, mapErr(err)
	}
	tracks := make([]music.Track, len(recs.Tracks))
	for i, t := range recs.Tracks {
		tracks[i] = simpleTrack(t)
	}
	return tracks, nil
}

// buildSeeds applies the seed selection policy to one SeedSet.
func buildSeeds(seeds music.SeedSet) (libspotify.Seeds, error) {
	if len(seeds.Tracks) > 0 {
		var ids []libspotify.ID
		for _, t := range seeds.Tracks {
			if t.ID == "" || t.Popularity <= seedPopularityFloor {
				continue
			}
			ids = append(ids, libspotify.ID(t.ID))
			if len(ids) == seedLimit {
				break
			}
		}
		if len(ids) == 0 {
			return libspotify.Seeds{}, ErrNoValidSeeds
		}
		return libspotify.Seeds{Tracks: ids}, nil
	}
	if len(seeds.Artists) > 0 {
		var ids []libspotify.ID
		for _, a := range seeds.Artists {
			ids = append(ids, libspotify.ID(a.ID))
			if len(ids) == seedLimit {
				break
			}
		}
		return libspotify.Seeds{Artists: ids}, nil
	}
	return libspotify.Seeds{Genres: defaultGenreSeeds}, nil
}

// TracksByID implements music.Catalog. At most 50 IDs are accepted per call;
// the provider returns nulls for unknown IDs which are dropped here.
func (c *Client) TracksByID(ctx context.Context, cred string, ids []string) ([]music.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > maxBatchIDs {
		ids = ids[:maxBatchIDs]
	}
	libIDs := make([]libspotify.ID, len(ids))
	for i, id := range ids {
		libIDs[i] = libspotify.ID(id)
	}
	full, err := c.newAPI(cred).GetTracks(libIDs...)
	if err != nil {
		return nil, mapErr(err)
	}
	tracks := make([]music.Track, 0, len(full))
	for _, t := range full {
		if t == nil || t.ID == "" {
			continue
		}
		tracks = append(tracks, fullTrack(*t))
	}
	return tracks, nil
}

// CurrentUser implements music.Catalog.
func (c *Client) CurrentUser(ctx context.Context, cred string) (music.User, error) {
	if err := ctx.Err(); err != nil {
		return music.User{}, err
	}
	u, err := c.newAPI(cred).CurrentUser()
	if err != nil {
		return music.User{}, mapErr(err)
	}
	return music.User{ID: u.ID, DisplayName: u.DisplayName}, nil
}

// CreatePlaylist implements music.Catalog.
func (c *Client) CreatePlaylist(ctx context.Context, cred, userID, name, description string, public bool) (music.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return music.Playlist{}, err
	}
	pl, err := c.newAPI(cred).CreatePlaylistForUser(userID, name, description, public)
	if err != nil {
		return music.Playlist{}, mapErr(err)
	}
	return music.Playlist{
		ID:          string(pl.ID),
		OwnerID:     pl.Owner.ID,
		Name:        pl.Name,
		Description: pl.Description,
	}, nil
}

// AddTracksToPlaylist implements music.Catalog. The whole batch is submitted
// in one request which the provider accepts or rejects atomically.
func (c *Client) AddTracksToPlaylist(ctx context.Context, cred, playlistID string, trackIDs []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	libIDs := make([]libspotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		libIDs[i] = libspotify.ID(id)
	}
	if _, err := c.newAPI(cred).AddTracksToPlaylist(libspotify.ID(playlistID), libIDs...); err != nil {
		return mapErr(err)
	}
	return nil
}

// libTimerange converts the public time_range value to the short form the
// wrapped library expects; it re-appends the "_term" suffix on the wire.
func libTimerange(rng music.TimeRange) string {
	s := strings.TrimSuffix(string(rng), "_term")
	switch s {
	case "short", "medium", "long":
		return s
	default:
		return "medium"
	}
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}

// fullTrack decodes a provider track into the application model, applying
// defaults for missing names and album art.
func fullTrack(t libspotify.FullTrack) music.Track {
	tr := simpleTrack(t.SimpleTrack)
	tr.Popularity = t.Popularity
	if len(t.Album.Images) > 0 {
		tr.AlbumArtURL = t.Album.Images[0].URL
	}
	return tr
}

func simpleTrack(t libspotify.SimpleTrack) music.Track {
	name := t.Name
	if name == "" {
		name = unknownName
	}
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			artists = append(artists, a.Name)
		}
	}
	if len(artists) == 0 {
		artists = []string{unknownArtist}
	}
	return music.Track{
		ID:      string(t.ID),
		Name:    name,
		Artists: artists,
		OpenURL: t.ExternalURLs["spotify"],
	}
}
