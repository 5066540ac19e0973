// Insights endpoint over the recommendation run log. It reports how often
// each cascade source satisfied the user's requests, which makes silent
// degradation (the ML service being down for days) visible.
package handlers

import (
	"net/http"
	"strconv"
	"time"
)

// InsightsSourcesJSON returns per-source run counts for the authenticated
// user. The lookback window is controlled by the 'days' query parameter and
// defaults to a week.
func (app *Application) InsightsSourcesJSON(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.requireUser(w, r)
	if !ok {
		return
	}
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days)
	res, err := app.DB.SourceCountsSince(r.Context(), userID, since)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "failed to load insights")
		return
	}
	respondJSON(w, http.StatusOK, res)
}
