package playlist

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"tunesage/pkg/music"
)

// fakeWriter records the catalog calls materialization makes.
type fakeWriter struct {
	created   bool
	createErr error
	addErr    error
	gotName   string
	gotDesc   string
	gotPublic bool
	gotPlID   string
	gotIDs    []string
}

func (f *fakeWriter) CreatePlaylist(ctx context.Context, cred, userID, name, description string, public bool) (music.Playlist, error) {
	if f.createErr != nil {
		return music.Playlist{}, f.createErr
	}
	f.created = true
	f.gotName = name
	f.gotDesc = description
	f.gotPublic = public
	return music.Playlist{ID: "pl1", OwnerID: userID, Name: name, Description: description}, nil
}

func (f *fakeWriter) AddTracksToPlaylist(ctx context.Context, cred, playlistID string, trackIDs []string) error {
	f.gotPlID = playlistID
	f.gotIDs = trackIDs
	return f.addErr
}

func TestMaterializeEmptySelection(t *testing.T) {
	fw := &fakeWriter{}
	m := New(fw)

	_, err := m.Materialize(context.Background(), "tok", "u1", "Mix", "", nil)
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
	if fw.created {
		t.Error("playlist created for empty selection")
	}
}

func TestMaterializeSuccess(t *testing.T) {
	fw := &fakeWriter{}
	m := New(fw)

	tracks := []music.Track{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	pl, err := m.Materialize(context.Background(), "tok", "u1", "My Picks", "generated", tracks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pl.ID != "pl1" || pl.OwnerID != "u1" {
		t.Errorf("unexpected playlist: %+v", pl)
	}
	if fw.gotPublic {
		t.Error("playlist created public")
	}
	if fw.gotPlID != "pl1" {
		t.Errorf("tracks added to %s, want pl1", fw.gotPlID)
	}
	if !reflect.DeepEqual(fw.gotIDs, []string{"t1", "t2", "t3"}) {
		t.Errorf("track ids = %v, order must be preserved", fw.gotIDs)
	}
}

func TestMaterializeCreateFails(t *testing.T) {
	boom := errors.New("boom")
	fw := &fakeWriter{createErr: boom}
	m := New(fw)

	_, err := m.Materialize(context.Background(), "tok", "u1", "Mix", "", []music.Track{{ID: "t1"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected create error, got %v", err)
	}
	if fw.gotIDs != nil {
		t.Error("tracks added despite create failure")
	}
}

// An append failure after a successful create is reported distinctly, with
// the real playlist ID, so the user can be told the playlist exists.
func TestMaterializeCreatedButEmpty(t *testing.T) {
	boom := errors.New("boom")
	fw := &fakeWriter{addErr: boom}
	m := New(fw)

	pl, err := m.Materialize(context.Background(), "tok", "u1", "Mix", "", []music.Track{{ID: "t1"}})
	var cbe *CreatedButEmptyError
	if !errors.As(err, &cbe) {
		t.Fatalf("expected CreatedButEmptyError, got %v", err)
	}
	if cbe.PlaylistID != "pl1" {
		t.Errorf("error carries playlist id %s, want pl1", cbe.PlaylistID)
	}
	if pl.ID != "pl1" {
		t.Errorf("created playlist not returned: %+v", pl)
	}
	if !errors.Is(err, boom) {
		t.Errorf("cause not wrapped: %v", err)
	}
}

func TestMaterializeSkipsBlankIDs(t *testing.T) {
	fw := &fakeWriter{}
	m := New(fw)

	tracks := []music.Track{{ID: "t1"}, {Name: "no id"}, {ID: "t2"}}
	if _, err := m.Materialize(context.Background(), "tok", "u1", "Mix", "", tracks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(fw.gotIDs, []string{"t1", "t2"}) {
		t.Errorf("track ids = %v", fw.gotIDs)
	}
}
