// Package config reads the server configuration from the environment and an
// optional .env file.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/konveksi/internal/cache"
	"github.com/Skotchmaster/konveksi/internal/search"
	"github.com/Skotchmaster/konveksi/internal/storage"
	pkgcfg "github.com/Skotchmaster/konveksi/pkg/config"
	pkgdb "github.com/Skotchmaster/konveksi/pkg/db"
)

type Config struct {
	Port     string
	LogLevel string

	DB pkgdb.Options

	JWTSecret []byte
	TokenTTL  time.Duration

	ClientURLs    []string
	BodyLimit     string
	SecureCookies bool
	CSRF          bool

	KafkaBrokers []string
	Search       search.Options
	Cache        cache.Options

	StorageDriver  string
	LocalRoot      string
	S3             storage.S3Options
	UploadMaxBytes int64

	AdminName     string
	AdminEmail    string
	AdminPassword string
	SeedDemo      bool
}

// Load reads .env when present; real environment variables take precedence.
func Load() Config {
	if err := godotenv.Load(pkgcfg.EnvDefault("ENV_FILE", ".env")); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	logLevel := pkgcfg.EnvDefault("LOG_LEVEL", "info")

	return Config{
		Port:     pkgcfg.EnvDefault("PORT", "5000"),
		LogLevel: logLevel,

		DB: pkgdb.Options{
			Driver:   pkgcfg.EnvDefault("DB_DRIVER", pkgdb.DriverPostgres),
			DSN:      os.Getenv("DATABASE_URL"),
			LogLevel: pkgcfg.EnvDefault("DB_LOG_LEVEL", "warn"),
		},

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:  pkgcfg.EnvDurationDefault("JWT_EXPIRE", 24*time.Hour),

		ClientURLs:    pkgcfg.CSV(pkgcfg.EnvDefault("CLIENT_URL", "http://localhost:5173")),
		BodyLimit:     pkgcfg.EnvDefault("BODY_LIMIT", "25M"),
		SecureCookies: pkgcfg.EnvBoolDefault("COOKIE_SECURE", false),
		CSRF:          pkgcfg.EnvBoolDefault("CSRF_ENABLED", true),

		KafkaBrokers: pkgcfg.CSV(os.Getenv("KAFKA_BROKERS")),
		Search: search.Options{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    pkgcfg.EnvDefault("ES_INDEX", "products"),
		},
		Cache: cache.Options{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       pkgcfg.EnvIntDefault("REDIS_DB", 0),
			TTL:      pkgcfg.EnvDurationDefault("CACHE_TTL", 5*time.Minute),
			Prefix:   pkgcfg.EnvDefault("CACHE_PREFIX", "konveksi:"),
		},

		StorageDriver: pkgcfg.EnvDefault("STORAGE_DRIVER", storage.DriverLocal),
		LocalRoot:     pkgcfg.EnvDefault("STORAGE_LOCAL_ROOT", "uploads"),
		S3: storage.S3Options{
			Bucket:   os.Getenv("S3_BUCKET"),
			Region:   pkgcfg.EnvDefault("S3_REGION", "us-east-1"),
			Key:      os.Getenv("S3_ACCESS_KEY"),
			Secret:   os.Getenv("S3_SECRET_KEY"),
			Endpoint: os.Getenv("S3_ENDPOINT"),
			BaseURL:  os.Getenv("S3_BASE_URL"),
		},
		UploadMaxBytes: pkgcfg.EnvInt64Default("UPLOAD_MAX_BYTES", storage.DefaultMaxUploadBytes),

		AdminName:     pkgcfg.EnvDefault("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SeedDemo:      pkgcfg.EnvBoolDefault("SEED_DEMO", false),
	}
}

// RequireDB reports settings the store cannot be reached without.
func (c Config) RequireDB() error {
	req := pkgcfg.Required{}
	if c.DB.Driver == pkgdb.DriverPostgres {
		req["DATABASE_URL"] = c.DB.DSN
	}
	return req.Check()
}

// RequireServe reports every setting the API server is missing.
func (c Config) RequireServe() error {
	req := pkgcfg.Required{"JWT_SECRET": string(c.JWTSecret)}
	if c.DB.Driver == pkgdb.DriverPostgres {
		req["DATABASE_URL"] = c.DB.DSN
	}
	if c.StorageDriver == storage.DriverS3 {
		req["S3_BUCKET"] = c.S3.Bucket
	}
	return req.Check()
}
