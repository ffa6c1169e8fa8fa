package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type (
	Container struct {
		App    *App
		Token  *Token
		DB     *DB
		HTTP   *HTTP
		Redis  *Redis
		Strava *Strava
		Gemini *Gemini
		Sync   *Sync
	}

	App struct {
		Name string
		Env  string
		// OwnerID is the fixed synthetic owner of every entity in this
		// single-tenant deployment.
		OwnerID uuid.UUID
	}

	Token struct {
		Secret string
	}

	// DB is the remote store. All fields empty is a supported
	// configuration: the gateway then runs cache-only.
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	HTTP struct {
		Env            string
		Port           string
		AllowedOrigins string
		URL            string
	}

	Redis struct {
		Address  string
		Password string
	}

	Strava struct {
		ClientID     string
		ClientSecret string
		RedirectURI  string
	}

	Gemini struct {
		APIKey string
	}

	Sync struct {
		OnStart         bool
		IntervalMinutes int
	}
)

// defaultOwnerID is used when OWNER_ID is unset, so the service works
// with zero configuration.
const defaultOwnerID = "5b1ce0de-7a6e-4e1f-9a70-3f0c57a1b100"

func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "production" {
		// Missing .env is fine, env vars may come from the shell.
		_ = godotenv.Load()
	}

	ownerID := uuid.MustParse(defaultOwnerID)
	if raw := os.Getenv("OWNER_ID"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid OWNER_ID: %w", err)
		}
		ownerID = parsed
	}

	app := &App{
		Name:    os.Getenv("APP_NAME"),
		Env:     os.Getenv("APP_ENV"),
		OwnerID: ownerID,
	}

	token := &Token{
		Secret: os.Getenv("TOKEN_SECRET"),
	}

	db := &DB{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
	}

	http := &HTTP{
		Port:           os.Getenv("HTTP_PORT"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		URL:            os.Getenv("HTTP_URL"),
		Env:            os.Getenv("APP_ENV"),
	}

	redis := &Redis{
		Address:  os.Getenv("REDIS_ADDRESS"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	strava := &Strava{
		ClientID:     os.Getenv("STRAVA_CLIENT_ID"),
		ClientSecret: os.Getenv("STRAVA_CLIENT_SECRET"),
		RedirectURI:  os.Getenv("STRAVA_REDIRECT_URI"),
	}

	gemini := &Gemini{
		APIKey: os.Getenv("GEMINI_API_KEY"),
	}

	sync := &Sync{
		OnStart:         os.Getenv("SYNC_ON_START") != "false",
		IntervalMinutes: envInt("SYNC_INTERVAL_MINUTES", 0),
	}

	return &Container{
		App:    app,
		Token:  token,
		DB:     db,
		HTTP:   http,
		Redis:  redis,
		Strava: strava,
		Gemini: gemini,
		Sync:   sync,
	}, nil
}

// Configured reports whether the remote-store connection parameters are
// present and well-formed enough to attempt a connection.
func (d *DB) Configured() bool {
	return d.Host != "" && d.User != "" && d.Name != ""
}

func (d *DB) DSN() string {
	port := d.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, port, d.User, d.Password, d.Name)
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
