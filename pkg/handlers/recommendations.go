// Recommendation endpoints. Each handler resolves the caller's bearer
// credential from the signed session cookie, invokes the orchestrator in the
// requested mode and returns the result as JSON: the track list, the
// provenance source tag and an advisory message when the cascade degraded.
// A terminal cascade failure is still a JSON result, never a raw error page.
package handlers

import (
	"net/http"
	"strings"
)

// RecommendationsJSON runs the personal-mode cascade for the authenticated
// user. The optional time_range query parameter selects the listening
// history window.
func (app *Application) RecommendationsJSON(w http.ResponseWriter, r *http.Request) {
	userID, cred, ok := app.requireCredential(w, r)
	if !ok {
		return
	}
	res, err := app.Recommendations.Personal(r.Context(), cred, timeRangeFromQuery(r))
	if err != nil {
		log.WithError(err).Warn("personal recommendations failed")
		respondResultError(w, err, "could not load recommendations")
		return
	}
	app.recordRun(r.Context(), userID, res)
	respondJSON(w, http.StatusOK, res)
}

// RecommendationsMoodJSON returns tracks matching the mood query parameter.
// Mood mode has no fallback chain: when the recommendation service is down
// the error is reported to the caller rather than silently substituted.
func (app *Application) RecommendationsMoodJSON(w http.ResponseWriter, r *http.Request) {
	userID, cred, ok := app.requireCredential(w, r)
	if !ok {
		return
	}
	mood := r.URL.Query().Get("mood")
	if mood == "" {
		respondJSONError(w, http.StatusBadRequest, "mood is required")
		return
	}
	res, err := app.Recommendations.Mood(r.Context(), cred, mood)
	if err != nil {
		log.WithError(err).WithField("mood", mood).Warn("mood recommendations failed")
		respondResultError(w, err, "mood recommendations unavailable")
		return
	}
	app.recordRun(r.Context(), userID, res)
	respondJSON(w, http.StatusOK, res)
}

// RecommendationsSeededJSON requests provider recommendations from explicit
// comma-separated seed track IDs, with no cascade.
func (app *Application) RecommendationsSeededJSON(w http.ResponseWriter, r *http.Request) {
	userID, cred, ok := app.requireCredential(w, r)
	if !ok {
		return
	}
	raw := strings.Trim(r.URL.Query().Get("seeds"), ",")
	if raw == "" {
		respondJSONError(w, http.StatusBadRequest, "seeds is required")
		return
	}
	res, err := app.Recommendations.Seeded(r.Context(), cred, strings.Split(raw, ","))
	if err != nil {
		log.WithError(err).Warn("seeded recommendations failed")
		respondResultError(w, err, "could not load recommendations")
		return
	}
	app.recordRun(r.Context(), userID, res)
	respondJSON(w, http.StatusOK, res)
}

// ProfileJSON returns the authenticated user's catalog profile.
func (app *Application) ProfileJSON(w http.ResponseWriter, r *http.Request) {
	_, cred, ok := app.requireCredential(w, r)
	if !ok {
		return
	}
	user, err := app.Catalog.CurrentUser(r.Context(), cred)
	if err != nil {
		respondResultError(w, err, "could not load profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}
