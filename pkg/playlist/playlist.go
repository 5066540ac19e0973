// Package playlist materializes a recommendation result as a real playlist
// on the catalog provider. Materialization is a two-step transaction with no
// rollback: create the playlist, then append the tracks. The two partial
// outcomes callers can observe are kept distinct so the user can be told
// exactly what happened.
package playlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"tunesage/pkg/music"
)

var log = logrus.WithField("component", "playlist")

var (
	createdTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playlists_created_total",
		Help: "Playlists successfully created and populated.",
	})
	createdEmptyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "playlists_created_empty_total",
		Help: "Playlists created whose track append failed.",
	})
)

// ErrEmptySelection is returned when materialization is attempted with no
// tracks. No playlist is created in that case.
var ErrEmptySelection = errors.New("playlist: no tracks selected")

// CreatedButEmptyError reports that the playlist was created but appending
// its tracks failed. It carries the real playlist ID so the caller can tell
// the user the playlist exists and needs manual population.
type CreatedButEmptyError struct {
	PlaylistID string
	cause      error
}

func (e *CreatedButEmptyError) Error() string {
	return fmt.Sprintf("playlist %s created but adding tracks failed: %v", e.PlaylistID, e.cause)
}

func (e *CreatedButEmptyError) Unwrap() error { return e.cause }

// writer is the subset of the catalog client used for materialization. It
// allows the concrete client to be replaced in tests.
type writer interface {
	CreatePlaylist(ctx context.Context, cred, userID, name, description string, public bool) (music.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, cred, playlistID string, trackIDs []string) error
}

// Materializer persists track lists as playlists through the catalog client.
type Materializer struct {
	catalog writer
}

// New constructs a Materializer.
func New(catalog writer) *Materializer {
	return &Materializer{catalog: catalog}
}

// Materialize creates a playlist owned by userID and appends tracks to it in
// order. An empty track list fails fast with ErrEmptySelection before
// anything is created. A create failure aborts with no side effect; an append
// failure after a successful create returns the created playlist together
// with a CreatedButEmptyError.
func (m *Materializer) Materialize(ctx context.Context, cred, userID, name, description string, tracks []music.Track) (music.Playlist, error) {
	if len(tracks) == 0 {
		return music.Playlist{}, ErrEmptySelection
	}
	pl, err := m.catalog.CreatePlaylist(ctx, cred, userID, name, description, false)
	if err != nil {
		return music.Playlist{}, fmt.Errorf("create playlist: %w", err)
	}
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	if err := m.catalog.AddTracksToPlaylist(ctx, cred, pl.ID, ids); err != nil {
		createdEmptyTotal.Inc()
		log.WithError(err).WithField("playlist_id", pl.ID).Error("created playlist left empty")
		return pl, &CreatedButEmptyError{PlaylistID: pl.ID, cause: err}
	}
	createdTotal.Inc()
	return pl, nil
}
