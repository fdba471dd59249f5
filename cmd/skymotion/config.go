package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/SLASHOO/SkyMotion-Library/internal/apiclient"
	"github.com/SLASHOO/SkyMotion-Library/internal/catalog"
	"github.com/SLASHOO/SkyMotion-Library/internal/session"
)

const (
	defaultLocation = "https://skymotion.app/library"
	// catalogFromAPI selects the API server's /v1/catalog as the source.
	catalogFromAPI = "api"
)

type config struct {
	APIBase     string
	CatalogURL  string
	Location    string
	SessionID   string
	MemberID    string
	MemberToken string
	TokenSecret string
	LogLevel    string
}

type flagValues struct {
	session  string
	location string
	api      string
	catalog  string
}

// loadConfig reads the environment, after loading envFile when it exists,
// and applies flag overrides.
func loadConfig(envFile string, flags flagValues) (config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config{}, err
		}
	}

	cfg := config{
		APIBase:     getEnv("SKYMOTION_API_BASE", apiclient.DefaultBaseURL),
		CatalogURL:  getEnv("SKYMOTION_CATALOG_URL", catalog.DefaultIndexURL),
		Location:    getEnv("SKYMOTION_LOCATION", defaultLocation),
		MemberID:    os.Getenv("SKYMOTION_MEMBER_ID"),
		MemberToken: os.Getenv("SKYMOTION_MEMBER_TOKEN"),
		TokenSecret: os.Getenv("SKYMOTION_TOKEN_SECRET"),
		LogLevel:    getEnv("SKYMOTION_LOG_LEVEL", "warn"),
	}
	if flags.api != "" {
		cfg.APIBase = flags.api
	}
	if flags.catalog != "" {
		cfg.CatalogURL = flags.catalog
	}
	if flags.location != "" {
		cfg.Location = flags.location
	}
	cfg.SessionID = strings.TrimSpace(flags.session)
	return cfg, nil
}

// location is the page URL the widget starts from. A --session id is
// folded in as mode=session&sess=<id>.
func (c config) location() (string, error) {
	if c.SessionID == "" {
		return c.Location, nil
	}
	u, err := url.Parse(c.Location)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(session.ParamMode, "session")
	q.Set(session.ParamSession, c.SessionID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c config) catalogSource() catalog.Source {
	if c.CatalogURL == catalogFromAPI {
		return catalog.NewHTTPSource(strings.TrimRight(c.APIBase, "/") + "/v1/catalog")
	}
	return catalog.NewHTTPSource(c.CatalogURL)
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
