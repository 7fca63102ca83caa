// Package config resolves server settings from flags, the environment and a .env file.
//
// Precedence, highest first: command-line flag, process environment, .env file, default.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds every runtime setting of the server.
type Config struct {
	Addr      string `validate:"required"`
	Env       string `validate:"oneof=development production"`
	Store     string `validate:"oneof=sqlite mongo memory"`
	DBPath    string `validate:"required_if=Store sqlite"`
	MongoURI  string `validate:"required_if=Store mongo"`
	MongoDB   string `validate:"required_if=Store mongo"`
	StaticDir string
	LogLevel  string `validate:"oneof=debug info warn error"`

	ResendKey  string
	ResendFrom string   `validate:"required"`
	ReplyTo    string   `validate:"omitempty,email"`
	NotifyTo   []string `validate:"dive,email"`

	CSRFKey        []byte `validate:"len=32"`
	TrustedOrigins []string

	// CSRFKeyGenerated is set when no key was configured and a random one was drawn.
	CSRFKeyGenerated bool

	SlowQueryMs   int `validate:"gte=0"`
	SlowRequestMs int `validate:"gte=0"`
	RateLimit     int `validate:"gte=0"`

	SeedFile string
	NoSeed   bool
}

// Production reports whether the server runs with production settings.
func (c Config) Production() bool {
	return c.Env == "production"
}

// SlogLevel maps LogLevel to a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// flagEnv pairs each flag with its environment variable.
var flagEnv = map[string]string{
	"addr":            "FUTO_ADDR",
	"env":             "FUTO_ENV",
	"store":           "FUTO_STORE",
	"db":              "FUTO_DB_PATH",
	"mongo-uri":       "MONGOURI",
	"mongo-db":        "FUTO_MONGO_DB",
	"static":          "FUTO_STATIC_DIR",
	"log-level":       "FUTO_LOG_LEVEL",
	"resend-key":      "FUTO_RESEND_KEY",
	"resend-from":     "FUTO_RESEND_FROM",
	"reply-to":        "FUTO_REPLY_TO",
	"notify-to":       "FUTO_NOTIFY_TO",
	"csrf-key":        "FUTO_CSRF_KEY",
	"trusted-origins": "FUTO_TRUSTED_ORIGINS",
	"slow-query-ms":   "FUTO_SLOW_QUERY_MS",
	"slow-request-ms": "FUTO_SLOW_REQUEST_MS",
	"rate-limit":      "FUTO_RATE_LIMIT",
	"seed-file":       "FUTO_SEED_FILE",
	"no-seed":         "FUTO_NO_SEED",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// newFlagSet declares every flag with its default.
func newFlagSet() *pflag.FlagSet {
	f := pflag.NewFlagSet("futoconnect", pflag.ContinueOnError)
	f.String("env-file", ".env", "dotenv file to read (missing file is ignored unless set explicitly)")
	f.String("addr", ":3000", "listen address")
	f.String("env", "development", "development or production")
	f.String("store", StoreSQLite, "storage backend: sqlite, mongo or memory")
	f.String("db", "futo_connect.db", "SQLite database path")
	f.String("mongo-uri", "", "MongoDB connection string")
	f.String("mongo-db", "futoconnect", "MongoDB database name")
	f.String("static", "dist", "directory of the built client bundle; empty disables static serving")
	f.String("log-level", "info", "debug, info, warn or error")
	f.String("resend-key", "", "Resend API key; empty disables email delivery")
	f.String("resend-from", "FUTO Connect <noreply@futo.edu.ng>", "sender address for notifications")
	f.String("reply-to", "", "reply-to address on notifications, e.g. the registry desk; empty replies go to the sender")
	f.String("notify-to", "", "comma-separated recipients of urgent announcements")
	f.String("csrf-key", "", "64 hex characters; random per start outside production")
	f.String("trusted-origins", "", "comma-separated host[:port] values allowed for cross-origin form posts")
	f.Int("slow-query-ms", 100, "log queries at or above this duration as slow")
	f.Int("slow-request-ms", 500, "log requests at or above this duration as slow")
	f.Int("rate-limit", 10, "requests per second per client IP; 0 disables")
	f.String("seed-file", "", "YAML seed file used when the store is empty; empty uses the built-in set")
	f.Bool("no-seed", false, "never seed an empty store")
	return f
}

// Load parses args (without the program name) and resolves the configuration.
// PRE: none
// POST: Returns a validated Config, or pflag.ErrHelp when --help was given
func Load(args []string) (Config, error) {
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	envFile, _ := flags.GetString("env-file")
	dotenv, err := godotenv.Read(envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || flags.Changed("env-file") {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
		dotenv = map[string]string{}
	}

	r := resolver{flags: flags, dotenv: dotenv}
	cfg := Config{
		Addr:           r.str("addr"),
		Env:            r.str("env"),
		Store:          r.str("store"),
		DBPath:         r.str("db"),
		MongoURI:       r.str("mongo-uri"),
		MongoDB:        r.str("mongo-db"),
		StaticDir:      r.str("static"),
		LogLevel:       strings.ToLower(r.str("log-level")),
		ResendKey:      r.str("resend-key"),
		ResendFrom:     r.str("resend-from"),
		ReplyTo:        r.str("reply-to"),
		NotifyTo:       splitList(r.str("notify-to")),
		TrustedOrigins: splitList(r.str("trusted-origins")),
		SeedFile:       r.str("seed-file"),
		SlowQueryMs:    r.intVal("slow-query-ms"),
		SlowRequestMs:  r.intVal("slow-request-ms"),
		RateLimit:      r.intVal("rate-limit"),
		NoSeed:         r.boolVal("no-seed"),
	}
	if r.err != nil {
		return Config{}, r.err
	}

	cfg.CSRFKey, cfg.CSRFKeyGenerated, err = csrfKey(r.str("csrf-key"), cfg.Production())
	if err != nil {
		return Config{}, err
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolver looks a setting up by flag name, applying the precedence rules.
type resolver struct {
	flags  *pflag.FlagSet
	dotenv map[string]string
	err    error
}

// lookup returns the raw value from the environment or .env file.
// ok is false when the flag was set explicitly or neither source has the key.
func (r *resolver) lookup(name string) (string, bool) {
	if r.flags.Changed(name) {
		return "", false
	}
	key := flagEnv[name]
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, true
	}
	if v, ok := r.dotenv[key]; ok && v != "" {
		return v, true
	}
	return "", false
}

func (r *resolver) str(name string) string {
	if v, ok := r.lookup(name); ok {
		return strings.TrimSpace(v)
	}
	v, _ := r.flags.GetString(name)
	return v
}

func (r *resolver) intVal(name string) int {
	if v, ok := r.lookup(name); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil && r.err == nil {
			r.err = fmt.Errorf("%s: %q is not an integer", flagEnv[name], v)
		}
		return n
	}
	n, _ := r.flags.GetInt(name)
	return n
}

func (r *resolver) boolVal(name string) bool {
	if v, ok := r.lookup(name); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil && r.err == nil {
			r.err = fmt.Errorf("%s: %q is not a boolean", flagEnv[name], v)
		}
		return b
	}
	b, _ := r.flags.GetBool(name)
	return b
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// csrfKey decodes a hex-encoded 32-byte key. Production requires one; other
// environments get a random key per start (generated is true), so CSRF cookies
// do not survive restarts.
func csrfKey(keyHex string, production bool) (key []byte, generated bool, err error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, false, errors.New("FUTO_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key, false, nil
	}
	if production {
		return nil, false, errors.New("FUTO_CSRF_KEY is required in production")
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate CSRF key: %w", err)
	}
	return key, true, nil
}
