package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("ANIMEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("ANIMEHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "animehub"
	}

	dur := 24 * time.Hour
	if ttl := os.Getenv("ANIMEHUB_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			dur = time.Duration(h) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: dur,
	}
}

// AniDBConfig holds the HTTP API client identity. AniDB rejects requests
// without a registered client name and version.
type AniDBConfig struct {
	ClientID      string
	ClientVersion string
	BaseURL       string
	TitleDumpURL  string
}

func LoadAniDBConfig() AniDBConfig {
	cfg := AniDBConfig{
		ClientID:      os.Getenv("ANIDB_CLIENT_ID"),
		ClientVersion: os.Getenv("ANIDB_CLIENT_VERSION"),
		BaseURL:       os.Getenv("ANIDB_API_BASE"),
		TitleDumpURL:  os.Getenv("ANIDB_TITLE_DUMP_URL"),
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://api.anidb.net:9001/httpapi"
	}
	if cfg.TitleDumpURL == "" {
		cfg.TitleDumpURL = "https://anidb.net/api/anime-titles.dat.gz"
	}
	return cfg
}

// MatchConfig mirrors the fuzzy matcher defaults; env overrides are for
// operators tuning precision without a rebuild.
type MatchConfig struct {
	Threshold      float64
	TopN           int
	PreferOfficial bool
}

func LoadMatchConfig() MatchConfig {
	cfg := MatchConfig{
		Threshold:      0.75,
		TopN:           5,
		PreferOfficial: true,
	}
	if s := os.Getenv("ANIMEHUB_MATCH_THRESHOLD"); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f <= 1 {
			cfg.Threshold = f
		}
	}
	if s := os.Getenv("ANIMEHUB_MATCH_TOP_N"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.TopN = n
		}
	}
	if s := os.Getenv("ANIMEHUB_MATCH_PREFER_OFFICIAL"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			cfg.PreferOfficial = b
		}
	}
	return cfg
}
