// Command web initializes the tunesage application and starts the HTTP
// server. Configuration is provided via environment variables (a local .env
// file is honoured in development) for the Spotify API credentials, the ML
// recommendation service address and the database location. The server
// serves a JSON API plus Prometheus metrics.
package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	libspotify "github.com/zmb3/spotify"

	"tunesage/pkg/catalog"
	"tunesage/pkg/db"
	"tunesage/pkg/handlers"
	"tunesage/pkg/mlrec"
	"tunesage/pkg/playlist"
	"tunesage/pkg/recommend"
)

// main configures application dependencies and starts the HTTP server.
func main() {
	// A missing .env is fine; in deployment the environment is already set.
	_ = godotenv.Load()

	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logrus.SetLevel(lvl)
	}
	log := logrus.WithField("component", "web")

	// Spotify credentials are required for the OAuth login flow. Without
	// them the application cannot obtain bearer credentials for any user.
	clientID := os.Getenv("SPOTIFY_CLIENT_ID")
	clientSecret := os.Getenv("SPOTIFY_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		log.Fatal("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET must be set")
	}
	// SPOTIFY_REDIRECT_URL must match the callback configured in the
	// Spotify developer dashboard. When unset we fall back to the local
	// development address.
	redirectURL := os.Getenv("SPOTIFY_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = "http://localhost:4000/callback"
	}
	signingKey := os.Getenv("SIGNING_KEY")
	if signingKey == "" {
		log.Fatal("SIGNING_KEY must be set")
	}

	// The ML recommendation service runs as its own deployment; its address
	// is configuration, never a compiled-in literal.
	mlURL := os.Getenv("ML_SERVICE_URL")
	if mlURL == "" {
		mlURL = "http://localhost:5000"
	}

	// The authenticator handles the OAuth flow. The scopes cover listening
	// history reads and private playlist writes, which is everything the
	// pipeline touches.
	auth := libspotify.NewAuthenticator(redirectURL,
		libspotify.ScopeUserReadPrivate,
		libspotify.ScopeUserTopRead,
		libspotify.ScopeUserReadRecentlyPlayed,
		libspotify.ScopePlaylistModifyPrivate,
	)
	auth.SetAuthInfo(clientID, clientSecret)

	// DATABASE_PATH allows the SQLite file to be customised. It defaults to
	// a file named tunesage.db in the working directory.
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "tunesage.db"
	}
	database, err := db.New(dbPath)
	if err != nil {
		log.WithError(err).Fatal("db init")
	}
	defer database.Close()

	cat := catalog.New()
	orch := recommend.New(cat, mlrec.New(mlURL))
	mat := playlist.New(cat)

	app := &handlers.Application{
		Recommendations: orch,
		Playlists:       mat,
		Catalog:         cat,
		Authenticator:   auth,
		DB:              database,
		SignKey:         []byte(signingKey),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", app.Login)
	mux.HandleFunc("/callback", app.OAuthCallback)
	mux.HandleFunc("/logout", app.Logout)
	mux.HandleFunc("/api/profile", app.ProfileJSON)
	mux.HandleFunc("/api/recommendations", app.RecommendationsJSON)
	mux.HandleFunc("/api/recommendations/mood", app.RecommendationsMoodJSON)
	mux.HandleFunc("/api/recommendations/seeded", app.RecommendationsSeededJSON)
	mux.HandleFunc("/api/playlists", app.CreatePlaylistJSON)
	mux.HandleFunc("/api/insights/sources", app.InsightsSourcesJSON)
	mux.Handle("/metrics", promhttp.Handler())

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":4000"
	}
	log.WithField("addr", addr).Info("starting server")
	if err := http.ListenAndServe(addr, handlers.SecurityHeaders(mux)); err != nil {
		log.WithError(err).Fatal("http server error")
	}
}
