// Playlist materialization endpoint. The two partial outcomes are reported
// distinctly: an empty selection is rejected before anything is created, and
// a playlist whose track append failed is returned with its real ID so the
// frontend can tell the user the playlist exists but needs manual
// population.
package handlers

import (
	"errors"
	"net/http"

	"tunesage/pkg/music"
	"tunesage/pkg/playlist"
)

// CreatePlaylistJSON creates a playlist from the posted track IDs on the
// authenticated user's account.
func (app *Application) CreatePlaylistJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	_, cred, ok := app.requireCredential(w, r)
	if !ok {
		return
	}
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		TrackIDs    []string `json:"track_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		respondJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	tracks := make([]music.Track, len(req.TrackIDs))
	for i, id := range req.TrackIDs {
		tracks[i] = music.Track{ID: id}
	}
	pl, err := app.Playlists.Materialize(r.Context(), cred, userID, req.Name, req.Description, tracks)
	if err != nil {
		var cbe *playlist.CreatedButEmptyError
		switch {
		case errors.Is(err, playlist.ErrEmptySelection):
			respondJSONError(w, http.StatusBadRequest, "no tracks selected")
		case errors.As(err, &cbe):
			log.WithError(err).Warn("playlist created but empty")
			respondJSON(w, http.StatusBadGateway, map[string]string{
				"error":       "playlist created but adding tracks failed",
				"playlist_id": cbe.PlaylistID,
			})
		default:
			log.WithError(err).Warn("playlist creation failed")
			respondResultError(w, err, "could not create playlist")
		}
		return
	}
	respondJSON(w, http.StatusCreated, pl)
}
