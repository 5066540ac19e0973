package catalog

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"

	libspotify "github.com/zmb3/spotify"

	"tunesage/pkg/music"
)

// fakeAPI implements the api subset with canned results and records the
// arguments it was called with.
type fakeAPI struct {
	topTracksPage  *libspotify.FullTrackPage
	topArtistsPage *libspotify.FullArtistPage
	recentItems    []libspotify.RecentlyPlayedItem
	recs           *libspotify.Recommendations
	tracks         []*libspotify.FullTrack
	user           *libspotify.PrivateUser
	playlist       *libspotify.FullPlaylist
	err            error

	gotOptions  *libspotify.Options
	gotSeeds    libspotify.Seeds
	gotIDs      []libspotify.ID
	gotPlaylist libspotify.ID
	gotPublic   bool
}

func (f *fakeAPI) CurrentUsersTopTracksOpt(opt *libspotify.Options) (*libspotify.FullTrackPage, error) {
	f.gotOptions = opt
	return f.topTracksPage, f.err
}

func (f *fakeAPI) CurrentUsersTopArtistsOpt(opt *libspotify.Options) (*libspotify.FullArtistPage, error) {
	f.gotOptions = opt
	return f.topArtistsPage, f.err
}

func (f *fakeAPI) PlayerRecentlyPlayedOpt(opt *libspotify.RecentlyPlayedOptions) ([]libspotify.RecentlyPlayedItem, error) {
	return f.recentItems, f.err
}

func (f *fakeAPI) GetRecommendations(seeds libspotify.Seeds, attrs *libspotify.TrackAttributes, opt *libspotify.Options) (*libspotify.Recommendations, error) {
	f.gotSeeds = seeds
	f.gotOptions = opt
	return f.recs, f.err
}

func (f *fakeAPI) GetTracks(ids ...libspotify.ID) ([]*libspotify.FullTrack, error) {
	f.gotIDs = ids
	return f.tracks, f.err
}

func (f *fakeAPI) CurrentUser() (*libspotify.PrivateUser, error) {
	return f.user, f.err
}

func (f *fakeAPI) CreatePlaylistForUser(userID, playlistName, description string, public bool) (*libspotify.FullPlaylist, error) {
	f.gotPublic = public
	return f.playlist, f.err
}

func (f *fakeAPI) AddTracksToPlaylist(playlistID libspotify.ID, trackIDs ...libspotify.ID) (string, error) {
	f.gotPlaylist = playlistID
	f.gotIDs = trackIDs
	return "snapshot", f.err
}

func newTestClient(f *fakeAPI) *Client {
	return &Client{newAPI: func(cred string) api { return f }}
}

func TestTopTracksTimerange(t *testing.T) {
	fa := &fakeAPI{topTracksPage: &libspotify.FullTrackPage{}}
	c := newTestClient(fa)

	cases := map[music.TimeRange]string{
		music.RangeShortTerm:  "short",
		music.RangeMediumTerm: "medium",
		music.RangeLongTerm:   "long",
		music.TimeRange("bogus"): "medium",
	}
	for rng, want := range cases {
		if _, err := c.TopTracks(context.Background(), "tok", rng, 20); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fa.gotOptions == nil || fa.gotOptions.Timerange == nil || *fa.gotOptions.Timerange != want {
			t.Errorf("time range for %s not forwarded as %q", rng, want)
		}
	}
}

func TestTopTracksDecodesDefaults(t *testing.T) {
	fa := &fakeAPI{topTracksPage: &libspotify.FullTrackPage{Tracks: []libspotify.FullTrack{
		{SimpleTrack: libspotify.SimpleTrack{ID: "t1"}, Popularity: 80},
	}}}
	c := newTestClient(fa)

	got, err := c.TopTracks(context.Background(), "tok", music.RangeMediumTerm, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Name != "Unknown" {
		t.Errorf("missing name not defaulted: %q", got[0].Name)
	}
	if !reflect.DeepEqual(got[0].Artists, []string{"Unknown Artist"}) {
		t.Errorf("missing artists not defaulted: %v", got[0].Artists)
	}
	if got[0].Popularity != 80 {
		t.Errorf("popularity not carried: %d", got[0].Popularity)
	}
}

func TestSeedFilterPopularity(t *testing.T) {
	fa := &fakeAPI{recs: &libspotify.Recommendations{}}
	c := newTestClient(fa)

	seeds := music.SeedSet{Tracks: []music.Track{
		{ID: "low", Popularity: 50},  // at the floor, excluded
		{ID: "", Popularity: 90},     // no ID, excluded
		{ID: "a", Popularity: 51},
		{ID: "b", Popularity: 80},
		{ID: "c", Popularity: 99},
		{ID: "d", Popularity: 70},
		{ID: "e", Popularity: 60},
		{ID: "f", Popularity: 88}, // over the 5-seed cap
	}}
	if _, err := c.RecommendationsBySeed(context.Background(), "tok", seeds, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []libspotify.ID{"a", "b", "c", "d", "e"}
	if !reflect.DeepEqual(fa.gotSeeds.Tracks, want) {
		t.Errorf("seed tracks = %v, want %v", fa.gotSeeds.Tracks, want)
	}
}

func TestSeedFilterNoValidSeeds(t *testing.T) {
	c := newTestClient(&fakeAPI{recs: &libspotify.Recommendations{}})

	seeds := music.SeedSet{Tracks: []music.Track{{ID: "x", Popularity: 10}}}
	_, err := c.RecommendationsBySeed(context.Background(), "tok", seeds, 20)
	if !errors.Is(err, ErrNoValidSeeds) {
		t.Fatalf("expected ErrNoValidSeeds, got %v", err)
	}
}

func TestSeedArtistsUnfiltered(t *testing.T) {
	fa := &fakeAPI{recs: &libspotify.Recommendations{}}
	c := newTestClient(fa)

	seeds := music.SeedSet{Artists: []music.Artist{
		{ID: "a1", Popularity: 1}, {ID: "a2"}, {ID: "a3"}, {ID: "a4"}, {ID: "a5"}, {ID: "a6"},
	}}
	if _, err := c.RecommendationsBySeed(context.Background(), "tok", seeds, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fa.gotSeeds.Artists) != 5 || fa.gotSeeds.Artists[0] != "a1" {
		t.Errorf("artist seeds = %v, want first five unfiltered", fa.gotSeeds.Artists)
	}
	if len(fa.gotSeeds.Tracks) != 0 {
		t.Errorf("track seeds unexpectedly set: %v", fa.gotSeeds.Tracks)
	}
}

func TestSeedDefaultGenres(t *testing.T) {
	fa := &fakeAPI{recs: &libspotify.Recommendations{}}
	c := newTestClient(fa)

	if _, err := c.RecommendationsBySeed(context.Background(), "tok", music.SeedSet{}, 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fa.gotSeeds.Genres, []string{"pop", "rock", "hip-hop"}) {
		t.Errorf("genre seeds = %v", fa.gotSeeds.Genres)
	}
}

func TestUnauthorizedMapping(t *testing.T) {
	fa := &fakeAPI{err: libspotify.Error{Status: http.StatusUnauthorized, Message: "token expired"}}
	c := newTestClient(fa)

	_, err := c.TopTracks(context.Background(), "tok", music.RangeMediumTerm, 20)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	fa := &fakeAPI{err: libspotify.Error{Status: http.StatusTooManyRequests, Message: "rate limited"}}
	c := newTestClient(fa)

	_, err := c.RecentlyPlayed(context.Background(), "tok", 20)
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if ue.Status != http.StatusTooManyRequests || ue.Body != "rate limited" {
		t.Errorf("unexpected mapping: %+v", ue)
	}
}

func TestTracksByIDDropsNulls(t *testing.T) {
	fa := &fakeAPI{tracks: []*libspotify.FullTrack{
		{SimpleTrack: libspotify.SimpleTrack{ID: "t1", Name: "One"}},
		nil, // unknown ID comes back null from the provider
		{SimpleTrack: libspotify.SimpleTrack{ID: "t2", Name: "Two"}},
	}}
	c := newTestClient(fa)

	got, err := c.TracksByID(context.Background(), "tok", []string{"t1", "gone", "t2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t1" || got[1].ID != "t2" {
		t.Errorf("unexpected tracks: %+v", got)
	}
}

func TestTracksByIDEmpty(t *testing.T) {
	fa := &fakeAPI{}
	c := newTestClient(fa)
	got, err := c.TracksByID(context.Background(), "tok", nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil result for no ids, got %v, %v", got, err)
	}
	if fa.gotIDs != nil {
		t.Error("provider called for empty id list")
	}
}

func TestCreatePlaylistPrivateByDefault(t *testing.T) {
	fa := &fakeAPI{playlist: &libspotify.FullPlaylist{
		SimplePlaylist: libspotify.SimplePlaylist{ID: "pl1", Name: "Mix", Owner: libspotify.User{ID: "u1"}},
	}}
	c := newTestClient(fa)

	pl, err := c.CreatePlaylist(context.Background(), "tok", "u1", "Mix", "desc", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fa.gotPublic {
		t.Error("playlist created public")
	}
	if pl.ID != "pl1" || pl.OwnerID != "u1" {
		t.Errorf("unexpected playlist: %+v", pl)
	}
}

func TestAddTracksForwardsBatch(t *testing.T) {
	fa := &fakeAPI{}
	c := newTestClient(fa)

	if err := c.AddTracksToPlaylist(context.Background(), "tok", "pl1", []string{"t1", "t2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fa.gotPlaylist != "pl1" {
		t.Errorf("playlist id = %s", fa.gotPlaylist)
	}
	if !reflect.DeepEqual(fa.gotIDs, []libspotify.ID{"t1", "t2"}) {
		t.Errorf("track ids = %v", fa.gotIDs)
	}
}

func TestContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestClient(&fakeAPI{})
	if _, err := c.TopTracks(ctx, "tok", music.RangeMediumTerm, 20); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
