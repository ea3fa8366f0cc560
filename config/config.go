// Package config declares the settings of both commands. Values come from
// flags, then LOVENEST_* environment variables (optionally loaded from a
// .env file), then the defaults below.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Server configures `lovenest serve`.
type Server struct {
	Addr string `help:"Listen address." env:"LOVENEST_ADDR" default:":8080"`

	Passcode     string        `help:"Shared passcode." env:"LOVENEST_PASSCODE"`
	PasscodeHash string        `help:"Bcrypt hash of the passcode, used instead of --passcode." env:"LOVENEST_PASSCODE_HASH"`
	JWTSecret    string        `help:"HMAC secret for session tokens." env:"LOVENEST_JWT_SECRET"`
	SessionTTL   time.Duration `help:"Session lifetime." env:"LOVENEST_SESSION_TTL" default:"720h"`

	Store         string `help:"Record store backend." enum:"mongo,sqlite,memory" env:"LOVENEST_STORE" default:"sqlite"`
	MongoURI      string `help:"MongoDB connection string." env:"LOVENEST_MONGO_URI"`
	MongoDatabase string `help:"MongoDB database name." env:"LOVENEST_MONGO_DATABASE" default:"lovenest"`
	SQLitePath    string `help:"SQLite database file." env:"LOVENEST_SQLITE_PATH" default:"lovenest.db"`
	RedisURL      string `help:"Redis URL for cross-instance live updates and logout revocation." env:"LOVENEST_REDIS_URL"`

	Media          string `help:"Where uploaded photos are stored." enum:"local,s3" env:"LOVENEST_MEDIA" default:"local"`
	MediaDir       string `help:"Directory for local media." env:"LOVENEST_MEDIA_DIR" default:"media"`
	PublicURL      string `help:"Public base URL of this server." env:"LOVENEST_PUBLIC_URL" default:"http://localhost:8080"`
	S3Bucket       string `help:"S3 bucket." env:"LOVENEST_S3_BUCKET"`
	S3Region       string `help:"S3 region." env:"LOVENEST_S3_REGION" default:"us-east-1"`
	S3Endpoint     string `help:"S3-compatible endpoint (MinIO); empty for AWS." env:"LOVENEST_S3_ENDPOINT"`
	S3AccessKey    string `help:"S3 access key; empty uses the default AWS chain." env:"LOVENEST_S3_ACCESS_KEY"`
	S3SecretKey    string `help:"S3 secret key." env:"LOVENEST_S3_SECRET_KEY"`
	S3PublicURL    string `help:"Public base URL of the bucket." env:"LOVENEST_S3_PUBLIC_URL"`
	UploadPreset   string `help:"Required upload_preset value; empty accepts any." env:"LOVENEST_UPLOAD_PRESET" default:"lovenest"`
	MaxUploadBytes int64  `help:"Per-file upload limit." env:"LOVENEST_MAX_UPLOAD_BYTES" default:"5242880"`

	PosterURL        string `help:"Movie poster lookup endpoint." env:"LOVENEST_POSTER_URL" default:"https://www.omdbapi.com/"`
	PosterAPIKey     string `help:"API key for the poster lookup." env:"LOVENEST_POSTER_API_KEY"`
	PosterTitleParam string `help:"Query parameter carrying the title." env:"LOVENEST_POSTER_TITLE_PARAM" default:"t"`

	RateLimit   float64  `help:"Requests per second per client IP." env:"LOVENEST_RATE_LIMIT" default:"10"`
	RateBurst   int      `help:"Burst size per client IP." env:"LOVENEST_RATE_BURST" default:"30"`
	CORSOrigins []string `help:"Allowed CORS origins." env:"LOVENEST_CORS_ORIGINS" default:"*"`

	LogFormat string `help:"Log format." enum:"json,text" env:"LOVENEST_LOG_FORMAT" default:"json"`
	LogLevel  string `help:"Log level." enum:"debug,info,warn,error" env:"LOVENEST_LOG_LEVEL" default:"info"`
}

// Validate is called by kong after parsing.
func (s *Server) Validate() error {
	var errs []error
	if s.Passcode == "" && s.PasscodeHash == "" {
		errs = append(errs, errors.New("one of --passcode or --passcode-hash is required"))
	}
	if len(s.JWTSecret) < 16 {
		errs = append(errs, errors.New("--jwt-secret must be at least 16 characters"))
	}
	if s.SessionTTL <= 0 {
		errs = append(errs, errors.New("--session-ttl must be positive"))
	}
	if s.Store == "mongo" && s.MongoURI == "" {
		errs = append(errs, errors.New("--mongo-uri is required with --store=mongo"))
	}
	if s.Media == "s3" && s.S3Bucket == "" {
		errs = append(errs, errors.New("--s3-bucket is required with --media=s3"))
	}
	if s.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("--max-upload-bytes must be positive"))
	}
	if s.RateLimit <= 0 || s.RateBurst <= 0 {
		errs = append(errs, errors.New("--rate-limit and --rate-burst must be positive"))
	}
	return errors.Join(errs...)
}

// Client configures `lovenest tui`.
type Client struct {
	ServerURL      string `help:"lovenest server address." env:"LOVENEST_SERVER_URL" default:"http://localhost:8080"`
	UploadEndpoint string `help:"Upload endpoint; defaults to the server's /api/uploads." env:"LOVENEST_UPLOAD_ENDPOINT"`
	UploadPreset   string `help:"upload_preset sent with photos." env:"LOVENEST_UPLOAD_PRESET" default:"lovenest"`
	MaxUploadBytes int64  `help:"Per-file upload limit checked before sending." env:"LOVENEST_MAX_UPLOAD_BYTES" default:"5242880"`
	SessionFile    string `help:"Session storage file; defaults to the user cache dir." env:"LOVENEST_SESSION_FILE"`
	SettingsFile   string `help:"Local settings file; defaults to the user config dir." env:"LOVENEST_SETTINGS_FILE"`
	LogFile        string `help:"Log file; the terminal belongs to the UI." env:"LOVENEST_LOG_FILE" default:"lovenest-tui.log"`
	LogLevel       string `help:"Log level." enum:"debug,info,warn,error" env:"LOVENEST_LOG_LEVEL" default:"info"`
}

func (c *Client) Validate() error {
	if c.ServerURL == "" {
		return errors.New("--server-url is required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("--max-upload-bytes must be positive")
	}
	return nil
}

// UploadURL is the endpoint photos are posted to.
func (c *Client) UploadURL() string {
	if c.UploadEndpoint != "" {
		return c.UploadEndpoint
	}
	return c.ServerURL + "/api/uploads"
}

// LoadDotEnv loads the given files (default .env) into the environment
// without overriding variables that are already set. Missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
