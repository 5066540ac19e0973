// Package recommend implements the recommendation orchestrator, the decision
// engine that turns an authenticated user into a list of tracks plus a
// provenance tag naming the strategy that produced it.
//
// Personal mode runs a cascade of strategies ordered from most personalized
// to most reliable: the external ML service first, then provider-side seeded
// recommendations, then the recently played and top tracks already fetched at
// the start of the run. The cascade is expressed as data (an ordered slice of
// stage descriptors) rather than nested error handling, so each stage can be
// exercised on its own. Stages run strictly sequentially, are never retried
// and their outputs are never mixed; the first stage to yield tracks ends the
// run.
package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"tunesage/pkg/music"
)

var log = logrus.WithField("component", "recommend")

var stageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "recommendation_stage_total",
	Help: "Cascade stage attempts by outcome (hit, miss, error).",
}, []string{"stage", "outcome"})

const (
	// topTracksLimit and recentLimit bound the prefetch that feeds every
	// personal-mode stage.
	topTracksLimit = 20
	recentLimit    = 50

	resolveBatchSize = 50

	// AdvisoryTopTracks is surfaced when the run degrades to the user's own
	// top tracks.
	AdvisoryTopTracks = "showing your top tracks instead of recommendations"
)

// Orchestrator coordinates the catalog and ML recommender collaborators. It
// holds no per-run state; every invocation is independent and nothing is
// cached between calls.
type Orchestrator struct {
	catalog     music.Catalog
	recommender music.Recommender
}

// New constructs an Orchestrator from its two collaborators.
func New(catalog music.Catalog, recommender music.Recommender) *Orchestrator {
	return &Orchestrator{catalog: catalog, recommender: recommender}
}

// prefetch carries the listening history fetched once at the start of a
// personal-mode run and shared by every stage.
type prefetch struct {
	cred      string
	topTracks []music.Track
	recent    []music.Track
}

// stage is one cascade entry: a provenance tag plus the strategy that tries
// to produce tracks for it. Returning an error or no tracks passes control to
// the next stage.
type stage struct {
	source music.Source
	run    func(ctx context.Context, pf *prefetch) ([]music.Track, error)
}

// Personal runs the personal-mode cascade. Top tracks and recently played are
// both fetched up front; if either fetch fails the whole run fails with that
// error, since every stage depends on them. After a successful prefetch the
// run always produces a Result: exhausting the cascade yields the top tracks
// (possibly empty) with an advisory message rather than an error.
func (o *Orchestrator) Personal(ctx context.Context, cred string, rng music.TimeRange) (music.Result, error) {
	top, err := o.catalog.TopTracks(ctx, cred, rng, topTracksLimit)
	if err != nil {
		return music.Result{}, fmt.Errorf("fetch top tracks: %w", err)
	}
	recent, err := o.catalog.RecentlyPlayed(ctx, cred, recentLimit)
	if err != nil {
		return music.Result{}, fmt.Errorf("fetch recently played: %w", err)
	}
	pf := &prefetch{cred: cred, topTracks: top, recent: recent}

	stages := []stage{
		{music.SourceMLRecommender, o.mlStage},
		{music.SourceRecommendations, o.seededStage},
		{music.SourceRecentlyPlayed, recentStage},
	}
	for _, s := range stages {
		tracks, err := s.run(ctx, pf)
		if err != nil {
			stageTotal.WithLabelValues(string(s.source), "error").Inc()
			log.WithError(err).WithField("stage", s.source).Warn("stage failed, falling back")
			continue
		}
		if len(tracks) == 0 {
			stageTotal.WithLabelValues(string(s.source), "miss").Inc()
			log.WithField("stage", s.source).Info("stage empty, falling back")
			continue
		}
		stageTotal.WithLabelValues(string(s.source), "hit").Inc()
		return music.Result{Tracks: ensureTracks(tracks), Source: s.source}, nil
	}

	// Terminal stage: the user's own top tracks stand in for
	// recommendations. An empty list is still a result, not a failure.
	stageTotal.WithLabelValues(string(music.SourceTopTracks), "hit").Inc()
	log.WithField("stage", music.SourceTopTracks).Info("cascade exhausted, using top tracks")
	return music.Result{
		Tracks:   ensureTracks(pf.topTracks),
		Source:   music.SourceTopTracks,
		Advisory: AdvisoryTopTracks,
	}, nil
}

// mlStage asks the external recommender for personalized picks and resolves
// the returned IDs to full tracks.
func (o *Orchestrator) mlStage(ctx context.Context, pf *prefetch) ([]music.Track, error) {
	ids, err := o.recommender.RecommendPersonal(ctx, trackIDs(pf.topTracks), trackIDs(pf.recent))
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return o.resolveTracks(ctx, pf.cred, ids), nil
}

// seededStage asks the provider for recommendations seeded with the
// prefetched top tracks. Seed filtering happens inside the catalog client; a
// run out of valid seeds surfaces as an error here and moves the cascade on.
func (o *Orchestrator) seededStage(ctx context.Context, pf *prefetch) ([]music.Track, error) {
	return o.catalog.RecommendationsBySeed(ctx, pf.cred, music.SeedSet{Tracks: pf.topTracks}, topTracksLimit)
}

// recentStage reuses the prefetched recently played list; it costs no extra
// round trip and cannot fail.
func recentStage(_ context.Context, pf *prefetch) ([]music.Track, error) {
	return pf.recent, nil
}

// Mood asks the external recommender for tracks matching a mood label and
// resolves them. There is no fallback chain for mood mode; a service failure
// propagates to the caller unchanged.
func (o *Orchestrator) Mood(ctx context.Context, cred, mood string) (music.Result, error) {
	ids, err := o.recommender.RecommendByMood(ctx, mood)
	if err != nil {
		stageTotal.WithLabelValues(string(music.SourceMood), "error").Inc()
		return music.Result{}, fmt.Errorf("mood recommendations: %w", err)
	}
	stageTotal.WithLabelValues(string(music.SourceMood), "hit").Inc()
	return music.Result{
		Tracks: ensureTracks(o.resolveTracks(ctx, cred, ids)),
		Source: music.SourceMood,
	}, nil
}

// Seeded requests provider recommendations from explicit track-ID seeds with
// no cascade. It is kept for callers that pre-select their own seeds.
func (o *Orchestrator) Seeded(ctx context.Context, cred string, seedIDs []string) (music.Result, error) {
	seeds := make([]music.Track, len(seedIDs))
	for i, id := range seedIDs {
		// Explicit seeds are taken as-is, so mark them popular enough to
		// survive the catalog's seed filter.
		seeds[i] = music.Track{ID: id, Popularity: 100}
	}
	tracks, err := o.catalog.RecommendationsBySeed(ctx, cred, music.SeedSet{Tracks: seeds}, topTracksLimit)
	if err != nil {
		stageTotal.WithLabelValues(string(music.SourceRecommendations), "error").Inc()
		return music.Result{}, err
	}
	stageTotal.WithLabelValues(string(music.SourceRecommendations), "hit").Inc()
	return music.Result{Tracks: ensureTracks(tracks), Source: music.SourceRecommendations}, nil
}

// resolveTracks fetches full track details for ids, batching into chunks and
// issuing the chunks concurrently. The chunks are independent reads, so the
// call joins on all of them and drops the items of any failed chunk instead
// of failing the whole resolution. Order of ids is preserved in the output.
func (o *Orchestrator) resolveTracks(ctx context.Context, cred string, ids []string) []music.Track {
	if len(ids) == 0 {
		return nil
	}
	var chunks [][]string
	for len(ids) > 0 {
		n := min(len(ids), resolveBatchSize)
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	results := make([][]music.Track, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []string) {
			defer wg.Done()
			tracks, err := o.catalog.TracksByID(ctx, cred, chunk)
			if err != nil {
				log.WithError(err).Warn("track detail batch failed, dropping items")
				return
			}
			results[i] = tracks
		}(i, chunk)
	}
	wg.Wait()
	var out []music.Track
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// ensureTracks normalizes a nil track list to an empty one. Results always
// carry an empty array, never null, so a caller iterating a degraded result
// does not have to nil-check first.
func ensureTracks(tracks []music.Track) []music.Track {
	if tracks == nil {
		return []music.Track{}
	}
	return tracks
}

func trackIDs(tracks []music.Track) []string {
	ids := make([]string, 0, len(tracks))
	for _, t := range tracks {
		if t.ID != "" {
			ids = append(ids, t.ID)
		}
	}
	return ids
}
